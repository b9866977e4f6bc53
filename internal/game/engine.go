// internal/game/engine.go
//
// Step-through bingo sessions.
// Responsibilities:
//   - Create sessions from parsed boards and draws (boards validated up front).
//   - Apply one draw per call and report boards that won on it.
//   - Track state transitions: playing → won | exhausted.
//
// Resolution follows bingo.FindFirstWinner / bingo.FindLastWinner: a session
// in first mode ends with the lowest-index board of the first winning draw;
// one in last mode ends when every board has won, or when the draws run out
// (the latest winner, if any, is the result).
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/bingo/internal/bingo"
)

var (
	ErrGameFinished = errors.New("game finished")
	ErrInvalidMode  = errors.New("invalid mode")
)

// ParseMode maps "first"/"last" (case-insensitive) to a Mode; empty means first.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFirst:
		return ModeFirst, nil
	case ModeLast:
		return ModeLast, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// New constructs a session. Cells are validated by bingo.NewBoard.
func New(mode Mode, boards [][]int, draws []int) (*Game, error) {
	if mode != ModeFirst && mode != ModeLast {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	bs := make([]*bingo.Board, 0, len(boards))
	for i, cells := range boards {
		b, err := bingo.NewBoard(cells)
		if err != nil {
			return nil, fmt.Errorf("board %d: %w", i, err)
		}
		bs = append(bs, b)
	}
	sim, err := bingo.NewSimulation(bs, draws)
	if err != nil {
		return nil, err
	}
	g := &Game{
		ID:     randomID(),
		Mode:   mode,
		Draws:  append([]int(nil), draws...),
		Boards: len(bs),
		state:  StatePlaying,
		sim:    sim,
	}
	if len(bs) == 0 || sim.Done() {
		g.state = StateExhausted
	}
	return g, nil
}

// ApplyNext draws the next number and advances the session.
func (g *Game) ApplyNext() (Step, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StatePlaying {
		return Step{State: g.state}, ErrGameFinished
	}
	st, ok := g.sim.Step()
	if !ok {
		g.state = StateExhausted
		return Step{State: g.state}, ErrGameFinished
	}
	for _, i := range st.Winners {
		g.Winners = append(g.Winners, g.sim.Result(i))
	}

	switch {
	case g.Mode == ModeFirst && len(st.Winners) > 0:
		g.state = StateWon
	case g.Mode == ModeLast && g.sim.Remaining() == 0:
		g.state = StateWon
	case g.sim.Done():
		g.state = StateExhausted
	}

	out := Step{Draw: st.Draw, Turn: st.Turn, Winners: st.Winners, State: g.state}
	if out.Winners == nil {
		out.Winners = []int{}
	}
	if res, ok := g.result(); ok && g.state != StatePlaying {
		out.Result = &res
	}
	return out, nil
}

// Run applies draws until the session finishes and returns its result.
func (g *Game) Run() (bingo.WinResult, error) {
	for {
		if _, err := g.ApplyNext(); errors.Is(err, ErrGameFinished) {
			break
		}
	}
	if res, ok := g.Result(); ok {
		return res, nil
	}
	return bingo.WinResult{}, bingo.ErrNoWinner
}

// State reports the session state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Turn reports how many draws have been applied.
func (g *Game) Turn() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.Turn()
}

// Result returns the winner the session resolved to. ok is false while
// playing, and for finished sessions in which no board won.
func (g *Game) Result() (bingo.WinResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StatePlaying {
		return bingo.WinResult{}, false
	}
	return g.result()
}

// result picks the resolved winner; caller holds mu.
// Simultaneous winners are appended in index order, so the first entry of
// the final draw group is the lowest index.
func (g *Game) result() (bingo.WinResult, bool) {
	if len(g.Winners) == 0 {
		return bingo.WinResult{}, false
	}
	if g.Mode == ModeFirst {
		return g.Winners[0], true
	}
	last := len(g.Winners) - 1
	for last > 0 && g.Winners[last-1].Turn == g.Winners[last].Turn {
		last--
	}
	return g.Winners[last], true
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
