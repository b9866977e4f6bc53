// internal/bingo/board.go
//
// Board state for a single bingo card.
// Responsibilities:
//   - Validate the flat cell list (square, non-empty, distinct values).
//   - Mark drawn values and keep per-row/per-column marked counts.
//   - Answer win checks from the counters alone (O(N), no grid rescan).
//   - Score a board as sum(unmarked) * triggering draw.
//
// Cells are stored row-major: index i lives at row i/N, column i%N.
package bingo

import (
	"errors"
	"fmt"
)

// ErrInvalidBoard is returned for malformed boards (empty, non-square,
// duplicate values) and for runs mixing boards of different sizes.
var ErrInvalidBoard = errors.New("invalid board")

// Board is an N×N grid of distinct numbers with mark state.
type Board struct {
	size      int
	cells     []int
	marked    []bool
	rowCounts []int
	colCounts []int
	index     map[int]int // value -> cell index
}

// NewBoard builds a board from N² row-major cells.
func NewBoard(cells []int) (*Board, error) {
	n := isqrt(len(cells))
	if n == 0 || n*n != len(cells) {
		return nil, fmt.Errorf("%w: %d cells is not a square grid", ErrInvalidBoard, len(cells))
	}
	index := make(map[int]int, len(cells))
	for i, v := range cells {
		if j, dup := index[v]; dup {
			return nil, fmt.Errorf("%w: value %d appears at cells %d and %d", ErrInvalidBoard, v, j, i)
		}
		index[v] = i
	}
	return &Board{
		size:      n,
		cells:     append([]int(nil), cells...),
		marked:    make([]bool, len(cells)),
		rowCounts: make([]int, n),
		colCounts: make([]int, n),
		index:     index,
	}, nil
}

// Size returns N, the side length of the grid.
func (b *Board) Size() int { return b.size }

// Cells returns a copy of the row-major cell values.
func (b *Board) Cells() []int { return append([]int(nil), b.cells...) }

// Marked reports whether cell i has been marked.
func (b *Board) Marked(i int) bool { return b.marked[i] }

// ApplyDraw marks value if the board holds it and reports whether it did.
// Re-drawing an already marked value is a no-op for the counters.
func (b *Board) ApplyDraw(value int) bool {
	i, ok := b.index[value]
	if !ok {
		return false
	}
	if b.marked[i] {
		return true
	}
	b.marked[i] = true
	b.rowCounts[i/b.size]++
	b.colCounts[i%b.size]++
	return true
}

// HasWon reports whether some row or column is fully marked.
func (b *Board) HasWon() bool {
	for i := 0; i < b.size; i++ {
		if b.rowCounts[i] == b.size || b.colCounts[i] == b.size {
			return true
		}
	}
	return false
}

// UnmarkedSum is the sum of every cell not yet marked.
func (b *Board) UnmarkedSum() int {
	sum := 0
	for i, v := range b.cells {
		if !b.marked[i] {
			sum += v
		}
	}
	return sum
}

// Score returns UnmarkedSum multiplied by the draw that triggered the win.
func (b *Board) Score(draw int) int { return b.UnmarkedSum() * draw }

// Clone returns an independent copy including mark state.
// The value index is shared since cells never change.
func (b *Board) Clone() *Board {
	return &Board{
		size:      b.size,
		cells:     b.cells,
		marked:    append([]bool(nil), b.marked...),
		rowCounts: append([]int(nil), b.rowCounts...),
		colCounts: append([]int(nil), b.colCounts...),
		index:     b.index,
	}
}

// isqrt returns floor(sqrt(n)) for small non-negative n.
func isqrt(n int) int {
	r := 0
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
