// internal/game/types.go
//
// Core type definitions for interactive bingo sessions.
// Defines:
//   - Mode: which winner the session is looking for (first/last).
//   - State: playing, won, or exhausted.
//   - Game: a step-through simulation advanced one draw per request.

package game

import (
	"sync"

	"github.com/robalobadob/bingo/internal/bingo"
)

// Mode selects the winner a session resolves to.
//   - "first": stop at the first board to win.
//   - "last":  keep drawing until every board has won.
type Mode string

const (
	ModeFirst Mode = "first"
	ModeLast  Mode = "last"
)

// State is the coarse progress of a session.
type State string

const (
	StatePlaying   State = "playing"
	StateWon       State = "won"
	StateExhausted State = "exhausted" // draws ran out first
)

// Game holds one session. Fields are guarded by mu; use the methods.
type Game struct {
	mu sync.Mutex

	ID      string            // random hex id
	Mode    Mode              // first | last
	Draws   []int             // full draw sequence
	Boards  int               // number of boards
	Winners []bingo.WinResult // every board that has won so far, in win order
	state   State
	sim     *bingo.Simulation
}

// Step reports what a single ApplyNext did.
type Step struct {
	Draw    int              `json:"draw"`
	Turn    int              `json:"turn"`
	Winners []int            `json:"winners"`          // boards that won on this draw
	State   State            `json:"state"`            // state after the draw
	Result  *bingo.WinResult `json:"result,omitempty"` // set once the session is finished with a winner
}
