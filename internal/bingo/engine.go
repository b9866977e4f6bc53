// internal/bingo/engine.go
//
// Draw loop over a set of boards.
//
// Simulation applies one draw at a time to every board, then checks the
// boards that have not won yet and reports the new winners in input order.
// FindFirstWinner and FindLastWinner are thin loops over it.
//
// The boards handed to NewSimulation (and so to the Find* functions) are
// cloned; callers keep their own boards untouched.
package bingo

import (
	"errors"
	"fmt"
)

// ErrNoWinner is returned when the draws run out before any board wins.
var ErrNoWinner = errors.New("no board won")

// WinResult describes a board at the moment it won.
type WinResult struct {
	BoardIndex  int    `json:"boardIndex"`
	Board       *Board `json:"-"`
	Draw        int    `json:"draw"`
	Turn        int    `json:"turn"` // 1-based position of Draw in the sequence
	UnmarkedSum int    `json:"unmarkedSum"`
	Score       int    `json:"score"`
}

// Step is the outcome of applying a single draw.
type Step struct {
	Draw    int   // value drawn
	Turn    int   // 1-based
	Winners []int // boards that won on this draw, ascending
}

// Simulation owns cloned boards and a cursor into the draw sequence.
type Simulation struct {
	boards    []*Board
	draws     []int
	turn      int
	won       []bool
	remaining int
}

// NewSimulation prepares a run. All boards must share one size.
func NewSimulation(boards []*Board, draws []int) (*Simulation, error) {
	s := &Simulation{
		boards:    make([]*Board, len(boards)),
		draws:     append([]int(nil), draws...),
		won:       make([]bool, len(boards)),
		remaining: len(boards),
	}
	for i, b := range boards {
		if b == nil {
			return nil, fmt.Errorf("%w: board %d is nil", ErrInvalidBoard, i)
		}
		if b.size != boards[0].size {
			return nil, fmt.Errorf("%w: board %d is %dx%d, board 0 is %dx%d",
				ErrInvalidBoard, i, b.size, b.size, boards[0].size, boards[0].size)
		}
		s.boards[i] = b.Clone()
	}
	return s, nil
}

// Step applies the next draw. ok is false once the draws are exhausted.
func (s *Simulation) Step() (st Step, ok bool) {
	if s.Done() {
		return Step{}, false
	}
	d := s.draws[s.turn]
	s.turn++
	for _, b := range s.boards {
		b.ApplyDraw(d)
	}
	st = Step{Draw: d, Turn: s.turn}
	for i, b := range s.boards {
		if s.won[i] || !b.HasWon() {
			continue
		}
		s.won[i] = true
		s.remaining--
		st.Winners = append(st.Winners, i)
	}
	return st, true
}

// Result snapshots board i as a win triggered by the last applied draw.
func (s *Simulation) Result(i int) WinResult {
	b := s.boards[i].Clone()
	d := s.draws[s.turn-1]
	sum := b.UnmarkedSum()
	return WinResult{
		BoardIndex:  i,
		Board:       b,
		Draw:        d,
		Turn:        s.turn,
		UnmarkedSum: sum,
		Score:       sum * d,
	}
}

// Done reports whether every draw has been applied.
func (s *Simulation) Done() bool { return s.turn >= len(s.draws) }

// Turn is the number of draws applied so far.
func (s *Simulation) Turn() int { return s.turn }

// Remaining is the number of boards that have not won yet.
func (s *Simulation) Remaining() int { return s.remaining }

// Boards returns how many boards take part.
func (s *Simulation) Boards() int { return len(s.boards) }

// FindFirstWinner returns the first board to complete a row or column.
// Boards winning on the same draw are tie-broken by lowest index.
func FindFirstWinner(boards []*Board, draws []int) (WinResult, error) {
	s, err := NewSimulation(boards, draws)
	if err != nil {
		return WinResult{}, err
	}
	for {
		st, ok := s.Step()
		if !ok {
			return WinResult{}, ErrNoWinner
		}
		if len(st.Winners) > 0 {
			return s.Result(st.Winners[0]), nil
		}
	}
}

// FindLastWinner keeps drawing until every board has won (or the draws run
// out) and returns the board that won last. Boards that already won are not
// reconsidered. Ties on the final winning draw go to the lowest index.
func FindLastWinner(boards []*Board, draws []int) (WinResult, error) {
	s, err := NewSimulation(boards, draws)
	if err != nil {
		return WinResult{}, err
	}
	var (
		last  WinResult
		found bool
	)
	for s.Remaining() > 0 {
		st, ok := s.Step()
		if !ok {
			break
		}
		if len(st.Winners) > 0 {
			last, found = s.Result(st.Winners[0]), true
		}
	}
	if !found {
		return WinResult{}, ErrNoWinner
	}
	return last, nil
}
