// internal/httpserver/server.go
//
// HTTP server wiring for the bingo backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/example", POST /solve.
//   - Session endpoints (optional auth): POST /game/new, POST /game/draw.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     routes still run for guests, who are tracked by an anonymous cookie.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/auth"
	"github.com/robalobadob/bingo/internal/config"
	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/store"
)

// Server bundles router, in-memory session store, DB handle and config.
type Server struct {
	r      *chi.Mux
	store  store.Store
	db     *sql.DB
	cfg    config.Config
	users  *auth.Users
	tokens auth.Tokens
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		db:     db,
		cfg:    cfg,
		users:  auth.NewUsers(db),
		tokens: auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL()},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(cfg.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"bingo-go","endpoints":["/health","/example","POST /solve","POST /game/new","POST /game/draw","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountSolve(s.r)

	// Sessions: OPTIONAL AUTH (guests can play)
	s.r.With(s.withOptionalAuth()).Post("/game/new", s.handleNewGame)
	s.r.With(s.withOptionalAuth()).Post("/game/draw", s.handleDraw)

	// Daily Challenge: OPTIONAL AUTH (guests can play; results persisted when solved)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	puzzleReq
	Mode string `json:"mode"` // "first" | "last"
}
type newGameRes struct {
	GameID string    `json:"gameId"`
	Mode   game.Mode `json:"mode"`
	Boards int       `json:"boards"`
	Draws  int       `json:"draws"`
}

// handleNewGame creates an in-memory session and a DB "owner" row
// (either user_id or anonymous_id) for history.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_mode")
		return
	}
	p, err := req.resolve(true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := game.New(mode, p.Boards, p.Draws)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if me := currentUser(r); me != nil {
		_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, user_id, mode, boards, status, started_at)
		                                        VALUES (?,?,?,?,?,?)`, g.ID, me.ID, mode, g.Boards, g.State(), now)
	} else {
		anon := s.ensureAnonID(w, r)
		_, err = s.db.ExecContext(r.Context(), `INSERT INTO games (id, anonymous_id, mode, boards, status, started_at)
		                                        VALUES (?,?,?,?,?,?)`, g.ID, anon, mode, g.Boards, g.State(), now)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}

	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, Mode: mode, Boards: g.Boards, Draws: len(g.Draws)})
}

type drawReq struct {
	GameID string `json:"gameId"`
}

// handleDraw applies the next draw to a session and records progress.
func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req drawReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		// Finished sessions are evicted; their DB row still answers.
		var status string
		if s.db.QueryRowContext(r.Context(), `SELECT status FROM games WHERE id=?`, req.GameID).Scan(&status) == nil &&
			game.State(status) != game.StatePlaying {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "game_finished", "state": status})
			return
		}
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	st, err := g.ApplyNext()
	if errors.Is(err, game.ErrGameFinished) {
		_ = s.store.Delete(r.Context(), g.ID)
		writeJSON(w, http.StatusConflict, map[string]any{"error": "game_finished", "state": st.State})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "draw_failed")
		return
	}

	// Persist progress (best effort, non-fatal if it fails)
	if st.State == game.StatePlaying {
		_, err = s.db.ExecContext(r.Context(), `UPDATE games SET draws_applied=? WHERE id=?`, st.Turn, g.ID)
	} else {
		var score any
		if st.Result != nil {
			score = st.Result.Score
		}
		_, err = s.db.ExecContext(r.Context(), `UPDATE games SET draws_applied=?, status=?, score=?, finished_at=? WHERE id=?`,
			st.Turn, st.State, score, time.Now().UTC().Format(time.RFC3339), g.ID)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("update game row")
	}
	if st.State != game.StatePlaying {
		if err := s.store.Delete(r.Context(), g.ID); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("evict game")
		}
	}

	writeJSON(w, http.StatusOK, st)
}

// ------------------------------- AUTH --------------------------------------

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /stats/me, /games/mine).
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	})

	s.r.With(s.requireAuth()).Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
		u, err := s.users.ByID(r.Context(), currentUser(r).ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":          u.ID,
			"gamesPlayed": u.GamesPlayed,
			"wins":        u.Wins,
			"streak":      u.Streak,
		})
	})

	s.r.With(s.requireAuth()).Get("/games/mine", s.handleMyGames)
}

// gameRow is one entry of GET /games/mine.
type gameRow struct {
	ID           string `json:"id"`
	Mode         string `json:"mode"`
	Boards       int    `json:"boards"`
	Status       string `json:"status"`
	DrawsApplied int    `json:"drawsApplied"`
	Score        *int   `json:"score,omitempty"`
	StartedAt    string `json:"startedAt"`
	FinishedAt   string `json:"finishedAt,omitempty"`
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(), `SELECT id, mode, boards, status, draws_applied, score, started_at, COALESCE(finished_at,'')
	                                             FROM games WHERE user_id=? ORDER BY started_at DESC LIMIT 50`, currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	defer rows.Close()

	out := []gameRow{}
	for rows.Next() {
		var gr gameRow
		var score sql.NullInt64
		if err := rows.Scan(&gr.ID, &gr.Mode, &gr.Boards, &gr.Status, &gr.DrawsApplied, &score, &gr.StartedAt, &gr.FinishedAt); err != nil {
			log.Warn().Err(err).Msg("scan game row")
			continue
		}
		if score.Valid {
			v := int(score.Int64)
			gr.Score = &v
		}
		out = append(out, gr)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims anon history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	if errors.Is(err, auth.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "Username taken")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	s.claimAnonGames(r.Context(), s.ensureAnonID(w, r), u.ID)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims anon history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	s.claimAnonGames(r.Context(), s.ensureAnonID(w, r), u.ID)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Time{}, -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// issueToken signs a JWT for u and sets it as a cookie; it also returns the
// token in the X-Auth-Token header for bearer clients.
func (s *Server) issueToken(w http.ResponseWriter, u *auth.User) bool {
	tok, exp, err := s.tokens.Sign(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setAuthCookie(w, tok, exp, 0)
	w.Header().Set("X-Auth-Token", tok)
	return true
}

// ------------------------ optional / required auth --------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if me, err := s.userFromRequest(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			me, err := s.userFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me)))
		})
	}
}

// userFromRequest validates the bearer/cookie token and checks the user still exists.
func (s *Server) userFromRequest(r *http.Request) (*authUser, error) {
	tok := bearerOrCookie(r, s.cfg.CookieName)
	if tok == "" {
		return nil, auth.ErrInvalidToken
	}
	c, err := s.tokens.Parse(tok)
	if err != nil {
		return nil, err
	}
	u, err := s.users.ByID(r.Context(), c.ID)
	if err != nil {
		return nil, err
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

const anonCookieName = "bingo_anon"

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := auth.GenID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.sameSite(),
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// claimAnonGames transfers any anonymous games to a user account after auth.
func (s *Server) claimAnonGames(ctx context.Context, anonID, userID string) {
	if anonID == "" || userID == "" {
		return
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
		log.Warn().Err(err).Msg("claim anon games")
	}
}

// setAuthCookie writes (maxAge 0) or deletes (maxAge -1) the auth cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		SameSite: s.sameSite(),
		Expires:  exp,
		MaxAge:   maxAge,
	})
}

func (s *Server) sameSite() http.SameSite {
	if s.cfg.Production() {
		return http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return http.SameSiteLaxMode
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request, cookieName string) string {
	if a := r.Header.Get("Authorization"); len(a) > 7 && (a[:7] == "Bearer " || a[:7] == "bearer ") {
		return a[7:]
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------- small util --------------------------------

// decodeJSON reads a JSON body of at most 1 MiB; an empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
