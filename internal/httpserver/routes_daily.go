// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes four endpoints under /daily:
//   - POST /daily/new         → start today's challenge (creates or reuses session)
//   - POST /daily/submit      → submit the score for part "first" or "last"
//   - GET  /daily/puzzle      → puzzle text for a date (default today)
//   - GET  /daily/leaderboard → top 20 results for today (or a given date)
//
// Everyone gets the same generated puzzle for a date (HMAC of date + salt).
// Each user can finish once per day (enforced by DB + in-memory session).
// Solving both parts persists the result; DAILY_MAX_ATTEMPTS wrong answers
// lock the session.

package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/auth"
	"github.com/robalobadob/bingo/internal/bingo"
	"github.com/robalobadob/bingo/internal/daily"
	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/puzzle"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	sessions map[string]*dailySession // active sessions keyed by userID|date
	today    *dailyPuzzle             // cached puzzle for the current date
	mu       sync.Mutex               // guards sessions, today and session fields
	now      func() time.Time
}

// dailyPuzzle is a generated puzzle with both answers precomputed.
type dailyPuzzle struct {
	Date  string
	Text  string
	First int
	Last  int
}

// dailySession holds transient in-memory state for an in-progress daily.
type dailySession struct {
	GameID   string
	UserID   string
	Date     string
	Start    time.Time
	Attempts int // every submission, reported on the leaderboard
	Wrong    int // wrong submissions, checked against DailyMaxAttempts
	Solved   map[game.Mode]bool
	Finished bool
	Locked   bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		sessions: make(map[string]*dailySession),
		now:      time.Now,
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/submit", dd.handleSubmit)
		r.Get("/puzzle", dd.handlePuzzle)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// puzzleFor returns the puzzle for t's date. Only today's puzzle is cached.
func (d *dailyServer) puzzleFor(t time.Time) (*dailyPuzzle, error) {
	date := daily.DateKey(t)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.today != nil && d.today.Date == date {
		return d.today, nil
	}
	p := daily.ForDate(t, d.srv.cfg.DailySalt, d.srv.cfg.DailyBoards)
	first, last, err := answers(p)
	if err != nil {
		return nil, err
	}
	dp := &dailyPuzzle{Date: date, Text: puzzle.Format(p), First: first, Last: last}
	if date == daily.DateKey(d.now()) {
		d.today = dp
	}
	return dp, nil
}

func answers(p puzzle.Puzzle) (first, last int, err error) {
	boards, err := p.NewBoards()
	if err != nil {
		return 0, 0, err
	}
	f, err := bingo.FindFirstWinner(boards, p.Draws)
	if err != nil {
		return 0, 0, err
	}
	l, err := bingo.FindLastWinner(boards, p.Draws)
	if err != nil {
		return 0, 0, err
	}
	return f.Score, l.Score, nil
}

// userID returns the authenticated user ID if logged in,
// otherwise the anonymous cookie ID.
func (d *dailyServer) userID(w http.ResponseWriter, r *http.Request) string {
	if me := currentUser(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Played bool   `json:"played"`
	Input  string `json:"input,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If the user already has a DB row for today → Played=true.
// - Otherwise create/reuse an in-memory session and return GameID + puzzle.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)
	p, err := d.puzzleFor(d.now())
	if err != nil {
		log.Error().Err(err).Msg("generate daily puzzle")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, p.Date); err == nil && played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: p.Date, Played: true})
		return
	}

	key := uid + "|" + p.Date
	d.mu.Lock()
	sess, ok := d.sessions[key]
	if !ok {
		d.pruneLocked(p.Date)
		sess = &dailySession{
			GameID: auth.GenID(),
			UserID: uid,
			Date:   p.Date,
			Start:  d.now(),
			Solved: make(map[game.Mode]bool, 2),
		}
		d.sessions[key] = sess
	}
	res := dailyNewRes{GameID: sess.GameID, Date: p.Date, Played: sess.Finished, Input: p.Text}
	d.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /daily/submit

type dailySubmitReq struct {
	GameID string `json:"gameId"`
	Part   string `json:"part"` // "first" | "last"
	Answer int    `json:"answer"`
}

type dailySubmitRes struct {
	Correct  bool            `json:"correct"`
	State    string          `json:"state"` // in_progress | won | locked
	Attempts int             `json:"attempts"`
	Solved   map[string]bool `json:"solved"`
}

// handleSubmit checks one answer against today's puzzle.
//   - Every answer counts as an attempt; DailyMaxAttempts wrong answers lock the session.
//   - Solving both parts finishes the session and persists the result.
func (d *dailyServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)

	var req dailySubmitReq
	if err := decodeJSON(w, r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	part, err := game.ParseMode(req.Part)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_part")
		return
	}

	p, err := d.puzzleFor(d.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	d.mu.Lock()
	sess, ok := d.sessions[uid+"|"+p.Date]
	if !ok || sess.GameID != req.GameID {
		d.mu.Unlock()
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	if sess.Finished {
		res := sess.response(false)
		d.mu.Unlock()
		writeJSON(w, http.StatusOK, res)
		return
	}

	want := p.First
	if part == game.ModeLast {
		want = p.Last
	}
	correct := req.Answer == want
	sess.Attempts++
	if correct {
		sess.Solved[part] = true
	} else {
		sess.Wrong++
	}
	won := sess.Solved[game.ModeFirst] && sess.Solved[game.ModeLast]
	lost := !won && sess.Wrong >= d.srv.cfg.DailyMaxAttempts
	if won || lost {
		sess.Finished = true
		sess.Locked = lost
	}
	res := sess.response(correct)
	elapsed := int(d.now().Sub(sess.Start).Milliseconds())
	attempts := sess.Attempts
	d.mu.Unlock()

	if won {
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: p.Date, Attempts: attempts, ElapsedMs: elapsed,
		}); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	if me := currentUser(r); me != nil && (won || lost) {
		if err := d.bumpStats(r.Context(), me.ID, won); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// pruneLocked drops sessions for dates other than date; caller holds d.mu.
func (d *dailyServer) pruneLocked(date string) {
	for k, sess := range d.sessions {
		if sess.Date != date {
			delete(d.sessions, k)
		}
	}
}

// response renders the session; caller holds d.mu.
func (s *dailySession) response(correct bool) dailySubmitRes {
	state := "in_progress"
	switch {
	case s.Locked:
		state = "locked"
	case s.Finished:
		state = "won"
	}
	return dailySubmitRes{
		Correct:  correct,
		State:    state,
		Attempts: s.Attempts,
		Solved: map[string]bool{
			string(game.ModeFirst): s.Solved[game.ModeFirst],
			string(game.ModeLast):  s.Solved[game.ModeLast],
		},
	}
}

func (d *dailyServer) bumpStats(ctx context.Context, userID string, won bool) error {
	tx, err := d.srv.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := auth.BumpStats(ctx, tx, userID, won); err != nil {
		return err
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------
// /daily/puzzle, /daily/leaderboard

// handlePuzzle returns the puzzle text for ?date=YYYY-MM-DD (default today).
// Future dates are not served.
func (d *dailyServer) handlePuzzle(w http.ResponseWriter, r *http.Request) {
	t := d.now()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		if parsed.After(t) {
			writeError(w, http.StatusNotFound, "not_yet")
			return
		}
		t = parsed
	}
	p, err := d.puzzleFor(t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(p.Text))
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
