// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily round (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's idiom
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each player can solve once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB on win.
// Deterministic idiom selection is based on date + salt.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idiomle/apps/go-server/internal/daily"
	"github.com/robalobadob/idiomle/apps/go-server/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	mu       sync.Mutex               // guards sessions
	sessions map[string]*dailySession // keyed by playerID|date
}

// dailySession is an in-progress daily round.
type dailySession struct {
	mu         sync.Mutex
	date       string
	idiomIndex int
	round      *game.Game
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	d := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", d.handleNew)
		r.Post("/guess", d.handleGuess)
		r.Get("/leaderboard", d.handleLeaderboard)
	})
}

// today returns the date key, the index into the answer list, and the answer.
func (d *dailyServer) today() (date string, idx int, answer string) {
	now := time.Now().UTC()
	date = daily.DateKey(now)
	idx = daily.IdiomIndex(now, d.srv.cfg.DailySalt, d.srv.list.Len())
	return date, idx, d.srv.list.At(idx)
}

// sweep drops sessions from earlier days. Callers hold d.mu.
func (d *dailyServer) sweep(date string) {
	for k, s := range d.sessions {
		if s.date != date {
			delete(d.sessions, k)
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string `json:"gameId,omitempty"`
	Date   string `json:"date"`
	Length int    `json:"length"`
	Rows   int    `json:"rows"`
	Played bool   `json:"played"`
}

// handleNew creates or reuses today's session.
//   - Already solved (row in daily_results) → Played=true.
//   - Otherwise an in-memory round is created or reused.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.srv.playerID(w, r)
	date, idx, answer := d.today()

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already played")
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep(date)
	sess, ok := d.sessions[key]
	if !ok {
		sess = &dailySession{
			date:       date,
			idiomIndex: idx,
			round:      game.New(answer, d.srv.cfg.MaxGuesses, d.srv.lookup),
		}
		d.sessions[key] = sess
	}
	writeJSON(w, http.StatusOK, dailyNewRes{
		GameID: sess.round.ID,
		Date:   date,
		Length: len([]rune(answer)),
		Rows:   sess.round.Rows,
	})
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type dailyGuessRes struct {
	Feedback *game.Feedback `json:"feedback,omitempty"`
	State    string         `json:"state"` // playing | won | lost | locked
	Guesses  int            `json:"guesses"`
	Answer   string         `json:"answer,omitempty"`
}

// handleGuess applies a guess to today's round and records a win.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid := d.srv.playerID(w, r)

	var req dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	date, _, _ := d.today()
	d.mu.Lock()
	sess, ok := d.sessions[uid+"|"+date]
	d.mu.Unlock()
	if !ok || sess.round.ID != req.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	g := sess.round
	if g.Finished {
		writeJSON(w, http.StatusOK, dailyGuessRes{State: "locked", Guesses: len(g.Guesses), Answer: g.Answer})
		return
	}
	fb, state, err := g.ApplyGuess(req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := dailyGuessRes{Feedback: &fb, State: string(state), Guesses: len(g.Guesses)}
	if g.Finished {
		res.Answer = g.Answer
	}
	if state == game.StateWon {
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:     uid,
			Date:       sess.date,
			IdiomIndex: sess.idiomIndex,
			Guesses:    len(g.Guesses),
			ElapsedMs:  int(g.Elapsed().Milliseconds()),
		}); err != nil {
			log.Warn().Err(err).Str("player", uid).Msg("daily insert result")
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for ?date= (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _, _ = d.today()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
