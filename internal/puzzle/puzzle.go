// internal/puzzle/puzzle.go
//
// Text format for bingo puzzles.
//
//	7,4,9,5,11,17,23,2,0,14,21,24
//
//	22 13 17 11  0
//	 8  2 23  4 24
//	...
//
// The first blank-line separated block holds the comma-separated draws
// (possibly wrapped over several lines);
// each following block is one board of whitespace-separated numbers.
// Board shape is checked later by bingo.NewBoard.
package puzzle

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/robalobadob/bingo/internal/bingo"
)

var (
	ErrEmptyInput = errors.New("puzzle: empty input")
	ErrNoBoards   = errors.New("puzzle: no boards")
)

// Puzzle is parsed input: the draw order and each board's row-major cells.
type Puzzle struct {
	Draws  []int   `json:"draws"`
	Boards [][]int `json:"boards"`
}

// Parse reads a whole puzzle from r.
func Parse(r io.Reader) (Puzzle, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Puzzle{}, fmt.Errorf("puzzle: read: %w", err)
	}
	return ParseString(string(b))
}

// ParseString parses puzzle text.
func ParseString(s string) (Puzzle, error) {
	blocks := splitBlocks(s)
	if len(blocks) == 0 {
		return Puzzle{}, ErrEmptyInput
	}
	var p Puzzle
	for _, f := range strings.FieldsFunc(blocks[0], isDrawSep) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Puzzle{}, fmt.Errorf("puzzle: draws: %w", err)
		}
		p.Draws = append(p.Draws, n)
	}
	if len(blocks) == 1 {
		return Puzzle{}, ErrNoBoards
	}
	for i, blk := range blocks[1:] {
		fields := strings.Fields(blk)
		cells := make([]int, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return Puzzle{}, fmt.Errorf("puzzle: board %d: %w", i, err)
			}
			cells = append(cells, n)
		}
		p.Boards = append(p.Boards, cells)
	}
	return p, nil
}

// isDrawSep splits the draws block, which may wrap across lines.
func isDrawSep(r rune) bool { return r == ',' || unicode.IsSpace(r) }

// splitBlocks breaks text on blank lines, dropping empty blocks.
func splitBlocks(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var (
		out []string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur = cur[:0]
		}
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}

// NewBoards validates every board and returns fresh, unmarked boards.
func (p Puzzle) NewBoards() ([]*bingo.Board, error) {
	out := make([]*bingo.Board, 0, len(p.Boards))
	for i, cells := range p.Boards {
		b, err := bingo.NewBoard(cells)
		if err != nil {
			return nil, fmt.Errorf("board %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Format renders p in the text layout Parse accepts.
// Rows are inferred from the square root of each board's cell count.
func Format(p Puzzle) string {
	var sb strings.Builder
	for i, d := range p.Draws {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(d))
	}
	sb.WriteByte('\n')
	for _, cells := range p.Boards {
		sb.WriteByte('\n')
		n := side(len(cells))
		w := 1
		for _, c := range cells {
			if l := len(strconv.Itoa(c)); l > w {
				w = l
			}
		}
		for j, c := range cells {
			fmt.Fprintf(&sb, "%*d", w, c)
			if (j+1)%n == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		if len(cells)%n != 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// side is the row length used when printing n cells.
func side(n int) int {
	r := 1
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
