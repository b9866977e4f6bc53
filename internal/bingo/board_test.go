package bingo

import (
	"errors"
	"testing"
)

// classic boards from the well-known 5x5 example.
var (
	classic1 = []int{
		22, 13, 17, 11, 0,
		8, 2, 23, 4, 24,
		21, 9, 14, 16, 7,
		6, 10, 3, 18, 5,
		1, 12, 20, 15, 19,
	}
	classic2 = []int{
		3, 15, 0, 2, 22,
		9, 18, 13, 17, 5,
		19, 8, 7, 25, 23,
		20, 11, 10, 24, 4,
		14, 21, 16, 12, 6,
	}
	classic3 = []int{
		14, 21, 17, 24, 4,
		10, 16, 15, 9, 19,
		18, 8, 23, 26, 20,
		22, 11, 13, 6, 5,
		2, 0, 12, 3, 7,
	}
	classicDraws = []int{7, 4, 9, 5, 11, 17, 23, 2, 0, 14, 21, 24, 10, 16, 13, 6, 15, 25, 12, 22, 18, 20, 8, 19, 3, 26, 1}
)

func mustBoard(t *testing.T, cells []int) *Board {
	t.Helper()
	b, err := NewBoard(cells)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return b
}

func seq(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from + i
	}
	return out
}

func TestNewBoardRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		cells []int
	}{
		{"empty", nil},
		{"not square", seq(0, 24)},
		{"too many", seq(0, 26)},
		{"duplicate", append(seq(0, 24), 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBoard(tt.cells)
			if !errors.Is(err, ErrInvalidBoard) {
				t.Fatalf("NewBoard() err = %v, want ErrInvalidBoard", err)
			}
		})
	}
}

func TestNewBoardSizes(t *testing.T) {
	for _, n := range []int{1, 3, 5, 7} {
		b := mustBoard(t, seq(100, n*n))
		if b.Size() != n {
			t.Fatalf("Size() = %d, want %d", b.Size(), n)
		}
	}
}

func TestNewBoardCopiesInput(t *testing.T) {
	cells := seq(0, 25)
	b := mustBoard(t, cells)
	cells[0] = 99
	if got := b.Cells()[0]; got != 0 {
		t.Fatalf("board cell changed with caller slice: %d", got)
	}
}

func TestApplyDrawAbsentValue(t *testing.T) {
	b := mustBoard(t, classic1)
	if b.ApplyDraw(99) {
		t.Fatal("ApplyDraw(99) = true for absent value")
	}
	for i := range classic1 {
		if b.Marked(i) {
			t.Fatalf("cell %d marked after absent draw", i)
		}
	}
}

func TestApplyDrawIsIdempotent(t *testing.T) {
	b := mustBoard(t, seq(0, 25))
	for i := 0; i < 4; i++ {
		b.ApplyDraw(i) // row 0, columns 0..3
	}
	// Drawing the same value again must not complete row 0.
	for i := 0; i < 10; i++ {
		if !b.ApplyDraw(3) {
			t.Fatal("ApplyDraw(3) = false for present value")
		}
	}
	if b.HasWon() {
		t.Fatal("repeated draw double counted row 0")
	}
	if b.rowCounts[0] != 4 || b.colCounts[3] != 1 {
		t.Fatalf("counters = row0 %d col3 %d, want 4 and 1", b.rowCounts[0], b.colCounts[3])
	}
	b.ApplyDraw(4)
	if !b.HasWon() {
		t.Fatal("row 0 complete but HasWon() = false")
	}
}

func TestHasWonWithoutFullLine(t *testing.T) {
	// Mark everything except the main diagonal: 20 cells, no full line.
	b := mustBoard(t, seq(0, 25))
	for i := 0; i < 25; i++ {
		if i/5 == i%5 {
			continue
		}
		b.ApplyDraw(i)
	}
	if b.HasWon() {
		t.Fatal("HasWon() = true with only a diagonal left unmarked")
	}
}

func TestHasWonRowAndColumn(t *testing.T) {
	tests := []struct {
		name  string
		draws []int
	}{
		{"row 2", []int{10, 11, 12, 13, 14}},
		{"column 4", []int{4, 9, 14, 19, 24}},
		{"row and column together", []int{0, 1, 2, 3, 9, 14, 19, 24, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, seq(0, 25))
			for i, d := range tt.draws {
				if b.HasWon() {
					t.Fatalf("won early after %d draws", i)
				}
				b.ApplyDraw(d)
			}
			if !b.HasWon() {
				t.Fatal("HasWon() = false")
			}
		})
	}
}

func TestScoreExcludesMarkedCells(t *testing.T) {
	b := mustBoard(t, seq(1, 9)) // 1..9, total 45
	b.ApplyDraw(5)
	b.ApplyDraw(5)
	b.ApplyDraw(9)
	if got := b.UnmarkedSum(); got != 31 {
		t.Fatalf("UnmarkedSum() = %d, want 31", got)
	}
	if got := b.Score(9); got != 279 {
		t.Fatalf("Score(9) = %d, want 279", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := mustBoard(t, classic1)
	b.ApplyDraw(22)
	c := b.Clone()
	c.ApplyDraw(13)
	if b.Marked(1) {
		t.Fatal("marking the clone changed the original")
	}
	if !c.Marked(0) {
		t.Fatal("clone lost existing mark")
	}
}
