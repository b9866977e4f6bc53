// internal/httpserver/routes_solve.go
//
// Stateless solving:
//   - GET  /example → the classic example puzzle as text/plain
//   - POST /solve   → first or last winner for a posted puzzle
//
// A puzzle can be posted as raw text ("input") or as parsed JSON
// ("draws" + "boards").

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/bingo/assets"
	"github.com/robalobadob/bingo/internal/bingo"
	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/puzzle"
)

var errMissingPuzzle = errors.New("missing_puzzle")

// puzzleReq is the shared puzzle payload.
type puzzleReq struct {
	Input  string  `json:"input"`
	Draws  []int   `json:"draws"`
	Boards [][]int `json:"boards"`
}

// resolve turns the payload into a puzzle. With fallback set, an empty
// payload means the embedded example.
func (p puzzleReq) resolve(fallback bool) (puzzle.Puzzle, error) {
	switch {
	case p.Input != "":
		return puzzle.ParseString(p.Input)
	case len(p.Boards) > 0:
		return puzzle.Puzzle{Draws: p.Draws, Boards: p.Boards}, nil
	case fallback:
		return puzzle.ParseString(assets.Example())
	}
	return puzzle.Puzzle{}, errMissingPuzzle
}

type solveReq struct {
	puzzleReq
	Mode string `json:"mode"`
}

// solveRes is a WinResult plus the winning board's final grid.
type solveRes struct {
	Mode game.Mode `json:"mode"`
	bingo.WinResult
	Size   int    `json:"size"`
	Cells  []int  `json:"cells"`
	Marked []bool `json:"marked"`
}

func (s *Server) mountSolve(r chi.Router) {
	r.Get("/example", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(assets.Example()))
	})
	r.Post("/solve", s.handleSolve)
}

// handleSolve runs FindFirstWinner or FindLastWinner.
//   - 400 for malformed JSON, puzzle text, or boards.
//   - 404 {"error":"no_winner"} when no board wins.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_mode")
		return
	}
	p, err := req.resolve(false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	boards, err := p.NewBoards()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	find := bingo.FindFirstWinner
	if mode == game.ModeLast {
		find = bingo.FindLastWinner
	}
	res, err := find(boards, p.Draws)
	switch {
	case errors.Is(err, bingo.ErrNoWinner):
		writeError(w, http.StatusNotFound, "no_winner")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := solveRes{Mode: mode, WinResult: res, Size: res.Board.Size(), Cells: res.Board.Cells()}
	out.Marked = make([]bool, len(out.Cells))
	for i := range out.Marked {
		out.Marked[i] = res.Board.Marked(i)
	}
	writeJSON(w, http.StatusOK, out)
}
