// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the idiom game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Single-round game endpoints (optional auth): POST /game/new, POST /game/guess.
//   - Multi-idiom quiz endpoints (optional auth): mounted under /quiz.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine (auth.go).
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Guests are identified by an anonymous cookie; their quiz progress is
//     stored under their own key namespace exactly like logged-in players.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idiomle/apps/go-server/internal/config"
	"github.com/robalobadob/idiomle/apps/go-server/internal/game"
	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
	"github.com/robalobadob/idiomle/apps/go-server/internal/idioms"
	"github.com/robalobadob/idiomle/apps/go-server/internal/kv"
	"github.com/robalobadob/idiomle/apps/go-server/internal/store"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Games  store.Store  // in-flight single rounds
	DB     *sql.DB      // users, games history, daily results
	KV     kv.Store     // quiz progress
	Idioms *idioms.List // answer list
	Lookup idiom.Lookup // pinyin decomposition
}

// Server bundles router, stores and configuration.
type Server struct {
	r      *chi.Mux
	cfg    config.Config
	games  store.Store
	db     *sql.DB
	kv     kv.Store
	list   *idioms.List
	lookup idiom.Lookup
	quiz   *quizServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, d Deps) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		cfg:    cfg,
		games:  d.Games,
		db:     d.DB,
		kv:     d.KV,
		list:   d.Idioms,
		lookup: d.Lookup,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "idiomle-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "/quiz/*", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Guests may play everything below; a valid token only attaches the user.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		s.mountQuiz(r)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// SweepIdle forgets single rounds started before olderThan and quiz players
// not seen since then. Quiz progress itself stays in the kv store.
func (s *Server) SweepIdle(ctx context.Context, olderThan time.Time) (rounds, players int) {
	return s.games.Sweep(ctx, olderThan), s.quiz.sweep(olderThan)
}

// Start serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

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
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("reqId", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Code string `json:"code"` // optional encrypted answer from a share link
}
type newGameRes struct {
	GameID string `json:"gameId"`
	Length int    `json:"length"`
	Rows   int    `json:"rows"`
}

// handleNewGame creates a new in-memory round and records an owner row
// (user_id or anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	answer := s.list.RandomAnswer()
	if req.Code != "" {
		decoded, err := idiom.Decrypt(req.Code)
		if err != nil || !idioms.WellFormed(decoded) {
			writeError(w, http.StatusBadRequest, "bad_code")
			return
		}
		answer = decoded
	}

	g := game.New(answer, s.cfg.MaxGuesses, s.lookup)
	if err := s.games.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	ownerCol, owner := "anonymous_id", ""
	if me := userFrom(r); me != nil {
		ownerCol, owner = "user_id", me.ID
	} else {
		owner = s.ensureAnonID(w, r)
	}
	q, args, err := sqlBuilder.Insert("games").
		Columns("id", ownerCol, "started_at", "status", "guesses").
		Values(g.ID, owner, time.Now().UTC().Format(time.RFC3339), string(game.StatePlaying), 0).
		ToSql()
	if err == nil {
		_, err = s.db.ExecContext(r.Context(), q, args...)
	}
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Str("owner", ownerCol).Msg("insert game row")
	}

	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, Length: len([]rune(g.Answer)), Rows: g.Rows})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Feedback game.Feedback `json:"feedback"`
	State    game.State    `json:"state"`
	Known    bool          `json:"known"`            // guess is one of the answers
	Answer   string        `json:"answer,omitempty"` // revealed once finished
}

// handleGuess applies a guess to an in-memory round, persists counters,
// and (if finished) updates user stats in a best-effort transaction.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, err := s.games.Get(r.Context(), req.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	fb, state, err := g.ApplyGuess(req.Guess)
	switch {
	case errors.Is(err, game.ErrFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.games.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	s.recordGuess(r, w, g.ID, state)

	res := guessRes{Feedback: fb, State: state, Known: s.list.Contains(fb.Guess)}
	if g.Finished {
		res.Answer = g.Answer
	}
	writeJSON(w, http.StatusOK, res)
}

// recordGuess bumps the history row and, on a finished round, user stats.
// Failures are logged only.
func (s *Server) recordGuess(r *http.Request, w http.ResponseWriter, gameID string, state game.State) {
	me := userFrom(r)
	var owner squirrel.Sqlizer
	if me != nil {
		owner = squirrel.Eq{"user_id": me.ID}
	} else {
		owner = squirrel.Eq{"anonymous_id": s.ensureAnonID(w, r)}
	}

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	upd := sqlBuilder.Update("games").
		Set("guesses", squirrel.Expr("guesses + 1")).
		Where(squirrel.Eq{"id": gameID}).
		Where(owner)
	if state != game.StatePlaying {
		upd = upd.Set("status", string(state)).Set("finished_at", time.Now().UTC().Format(time.RFC3339))
	}
	if q, args, err := upd.ToSql(); err != nil {
		log.Warn().Err(err).Msg("build game update")
	} else if _, err := tx.Exec(q, args...); err != nil {
		log.Warn().Err(err).Msg("update game row")
	}
	if state != game.StatePlaying {
		if me != nil {
			if err := bumpStats(tx, me.ID, state == game.StateWon); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit guess")
	}
}

// bumpStats increments games played; updates wins and streak based on result (within tx).
func bumpStats(tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	row := tx.QueryRow(`SELECT games_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.Exec(`UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}
