// apps/go-server/internal/httpserver/routes_quiz.go
//
// HTTP routes for custom multi-idiom quizzes.
//   - POST   /quiz/share   → encrypt an idiom list into share codes + quiz id
//   - POST   /quiz/start   → start or resume a quiz (idioms or codes, optional id)
//   - POST   /quiz/restore → load saved progress for an id without repairing it
//   - GET    /quiz         → current view
//   - POST   /quiz/guess   → guess the current idiom
//   - POST   /quiz/giveup  → complete the current idiom as lost
//   - POST   /quiz/next    → advance to the following idiom
//   - POST   /quiz/jump    → review another idiom
//   - POST   /quiz/back    → return to the current idiom
//   - DELETE /quiz         → exit and forget saved progress
//
// One quiz.Session is kept per player (user id or anon cookie). Progress is
// written through a player-prefixed kv namespace, so a restarted server picks
// it up again on the next /quiz/start with the same idioms.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idiomle/apps/go-server/internal/game"
	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
	"github.com/robalobadob/idiomle/apps/go-server/internal/idioms"
	"github.com/robalobadob/idiomle/apps/go-server/internal/kv"
	"github.com/robalobadob/idiomle/apps/go-server/internal/quiz"
)

const maxQuizIdioms = 100

var errBadIdioms = errors.New("bad_idioms")

// quizServer wraps dependencies for /quiz endpoints.
type quizServer struct {
	srv     *Server
	mu      sync.Mutex             // guards players
	players map[string]*quizPlayer // keyed by player id
}

// quizPlayer is one player's live session. mu serialises requests.
type quizPlayer struct {
	mu         sync.Mutex
	sess       *quiz.Session
	roundIndex int       // idiom the timer below belongs to
	roundStart time.Time // zero until the idiom is first shown
	lastSeen   time.Time // guarded by quizServer.mu
}

// mountQuiz registers all /quiz routes.
func (s *Server) mountQuiz(r chi.Router) {
	q := &quizServer{srv: s, players: make(map[string]*quizPlayer)}
	s.quiz = q
	r.Route("/quiz", func(r chi.Router) {
		r.Post("/share", q.handleShare)
		r.Post("/start", q.handleStart)
		r.Post("/restore", q.handleRestore)
		r.Get("/", q.handleView)
		r.Delete("/", q.handleExit)
		r.Post("/guess", q.handleGuess)
		r.Post("/giveup", q.handleGiveUp)
		r.Post("/next", q.handleNext)
		r.Post("/jump", q.handleJump)
		r.Post("/back", q.handleBack)
	})
}

// player returns (creating if needed) the caller's session holder. Only
// requests that load a quiz call it.
func (q *quizServer) player(w http.ResponseWriter, r *http.Request) *quizPlayer {
	pid := q.srv.playerID(w, r)
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.players[pid]
	if !ok {
		p = &quizPlayer{sess: quiz.New(kv.WithPrefix(q.srv.kv, "player:"+pid+":"))}
		q.players[pid] = p
	}
	p.lastSeen = time.Now()
	return p
}

// lookup finds the caller's session holder without creating one or issuing
// an anonymous cookie.
func (q *quizServer) lookup(r *http.Request) (string, *quizPlayer) {
	pid := q.srv.existingPlayerID(r)
	if pid == "" {
		return "", nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	p := q.players[pid]
	if p != nil {
		p.lastSeen = time.Now()
	}
	return pid, p
}

// forget drops pid's holder if it is still p.
func (q *quizServer) forget(pid string, p *quizPlayer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.players[pid] == p {
		delete(q.players, pid)
	}
}

// sweep drops holders untouched since olderThan. Their progress stays in
// the kv store and comes back with the next /quiz/start or /quiz/restore.
func (q *quizServer) sweep(olderThan time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for pid, p := range q.players {
		if p.lastSeen.Before(olderThan) {
			delete(q.players, pid)
			n++
		}
	}
	return n
}

// withActive runs fn with the caller's session locked, or 404s when no quiz
// is loaded.
func (q *quizServer) withActive(w http.ResponseWriter, r *http.Request, fn func(pid string, p *quizPlayer)) {
	pid, p := q.lookup(r)
	if p == nil {
		writeError(w, http.StatusNotFound, "no_quiz")
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.sess.Active() {
		writeError(w, http.StatusNotFound, "no_quiz")
		return
	}
	fn(pid, p)
}

// startClock starts the timer for the current idiom if it is not running.
func (p *quizPlayer) startClock() {
	i := p.sess.CurrentIndex()
	if p.roundStart.IsZero() || p.roundIndex != i {
		p.roundIndex = i
		p.roundStart = time.Now()
	}
}

func (p *quizPlayer) elapsedMs() int64 {
	if p.roundStart.IsZero() || p.roundIndex != p.sess.CurrentIndex() {
		return 0
	}
	return time.Since(p.roundStart).Milliseconds()
}

// -----------------------------------------------------------------------------
// request decoding

// quizListReq names a quiz either by plain idioms or by share codes.
type quizListReq struct {
	Idioms []string `json:"idioms"`
	Codes  []string `json:"codes"`
	ID     string   `json:"id"`
}

// list resolves the request to a validated idiom list.
func (req quizListReq) list() ([]string, error) {
	raw := req.Idioms
	if len(req.Codes) > 0 {
		raw = make([]string, 0, len(req.Codes))
		for _, c := range req.Codes {
			s, err := idiom.Decrypt(c)
			if err != nil {
				return nil, errBadIdioms
			}
			raw = append(raw, s)
		}
	}
	if len(raw) == 0 || len(raw) > maxQuizIdioms {
		return nil, errBadIdioms
	}
	out := make([]string, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if !idioms.WellFormed(s) {
			return nil, errBadIdioms
		}
		out[i] = s
	}
	return out, nil
}

func decodeQuizList(w http.ResponseWriter, r *http.Request) (quizListReq, []string, bool) {
	var req quizListReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return req, nil, false
	}
	list, err := req.list()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, nil, false
	}
	return req, list, true
}

// -----------------------------------------------------------------------------
// views

type quizView struct {
	ID           string          `json:"id"`
	Progress     string          `json:"progress"`
	Total        int             `json:"total"`
	CurrentIndex int             `json:"currentIndex"`
	ViewIndex    int             `json:"viewIndex"`
	Viewing      bool            `json:"viewing"`
	Completed    bool            `json:"completed"`
	Rows         int             `json:"rows"`
	Idiom        *idiomView      `json:"idiom,omitempty"`
	Results      []resultSummary `json:"results"`
}

// idiomView is the idiom at the view cursor. Answer is only set once that
// idiom is completed.
type idiomView struct {
	Index     int             `json:"index"`
	Length    int             `json:"length"`
	Guesses   []game.Feedback `json:"guesses"`
	Won       bool            `json:"won"`
	Completed bool            `json:"completed"`
	Time      int64           `json:"time"`
	Answer    string          `json:"answer,omitempty"`
}

type resultSummary struct {
	Index     int   `json:"index"`
	Completed bool  `json:"completed"`
	Won       bool  `json:"won"`
	Guesses   int   `json:"guesses"`
	Time      int64 `json:"time"`
}

func (q *quizServer) view(sess *quiz.Session) quizView {
	v := quizView{
		ID:           sess.ID(),
		Progress:     sess.Progress(),
		Total:        sess.TotalCount(),
		CurrentIndex: sess.CurrentIndex(),
		ViewIndex:    sess.ViewIndex(),
		Viewing:      sess.Viewing(),
		Completed:    sess.Completed(),
		Rows:         q.srv.cfg.MaxGuesses,
		Results:      []resultSummary{},
	}
	for i, res := range sess.Results() {
		v.Results = append(v.Results, resultSummary{
			Index: i, Completed: res.Completed, Won: res.Won, Guesses: len(res.Guesses), Time: res.Time,
		})
	}
	answer, ok := sess.CurrentIdiom()
	if !ok {
		return v
	}
	res, _ := sess.Result(sess.ViewIndex())
	iv := &idiomView{
		Index:     sess.ViewIndex(),
		Length:    len([]rune(answer)),
		Guesses:   game.Resume(answer, q.srv.cfg.MaxGuesses, res.Guesses, q.srv.lookup).History(),
		Won:       res.Won,
		Completed: res.Completed,
		Time:      res.Time,
	}
	if res.Completed {
		iv.Answer = answer
	}
	v.Idiom = iv
	return v
}

// -----------------------------------------------------------------------------
// handlers

type shareRes struct {
	ID    string   `json:"id"`
	Codes []string `json:"codes"`
}

// handleShare turns an idiom list into codes that can be put in a link.
func (q *quizServer) handleShare(w http.ResponseWriter, r *http.Request) {
	_, list, ok := decodeQuizList(w, r)
	if !ok {
		return
	}
	codes := make([]string, len(list))
	for i, s := range list {
		codes[i] = idiom.Encrypt(s)
	}
	writeJSON(w, http.StatusOK, shareRes{ID: quiz.DeriveID(list), Codes: codes})
}

func (q *quizServer) handleStart(w http.ResponseWriter, r *http.Request) {
	req, list, ok := decodeQuizList(w, r)
	if !ok {
		return
	}
	p := q.player(w, r)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.sess.Init(r.Context(), list, req.ID); err != nil {
		log.Error().Err(err).Msg("quiz init")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	p.roundStart = time.Time{}
	p.startClock()
	writeJSON(w, http.StatusOK, q.view(p.sess))
}

func (q *quizServer) handleRestore(w http.ResponseWriter, r *http.Request) {
	req, list, ok := decodeQuizList(w, r)
	if !ok {
		return
	}
	if req.ID == "" {
		req.ID = quiz.DeriveID(list)
	}
	p := q.player(w, r)
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.sess.Restore(r.Context(), list, req.ID) {
		writeError(w, http.StatusNotFound, "no_saved_quiz")
		return
	}
	p.roundStart = time.Time{}
	p.startClock()
	writeJSON(w, http.StatusOK, q.view(p.sess))
}

func (q *quizServer) handleView(w http.ResponseWriter, r *http.Request) {
	q.withActive(w, r, func(_ string, p *quizPlayer) {
		writeJSON(w, http.StatusOK, q.view(p.sess))
	})
}

type quizGuessReq struct {
	Guess string `json:"guess"`
}

type quizGuessRes struct {
	Feedback game.Feedback `json:"feedback"`
	State    game.State    `json:"state"`
	Known    bool          `json:"known"` // guess is one of the answers
	Quiz     quizView      `json:"quiz"`
}

// handleGuess scores a guess against the current idiom. Guessing is only
// possible on the current idiom while it is not completed.
func (q *quizServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req quizGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	q.withActive(w, r, func(_ string, p *quizPlayer) {
		g, ok := q.currentRound(w, p)
		if !ok {
			return
		}
		p.startClock()
		fb, state, err := g.ApplyGuess(req.Guess)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if state == game.StatePlaying {
			err = p.sess.SaveCurrentProgress(r.Context(), g.Guesses)
		} else {
			err = p.sess.UpdateCurrentResult(r.Context(), g.Guesses, g.Won, p.elapsedMs())
		}
		if err != nil {
			log.Error().Err(err).Str("quiz", p.sess.ID()).Msg("quiz save")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		writeJSON(w, http.StatusOK, quizGuessRes{Feedback: fb, State: state, Known: q.srv.list.Contains(fb.Guess), Quiz: q.view(p.sess)})
	})
}

func (q *quizServer) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	q.withActive(w, r, func(_ string, p *quizPlayer) {
		g, ok := q.currentRound(w, p)
		if !ok {
			return
		}
		if err := p.sess.UpdateCurrentResult(r.Context(), g.Guesses, false, p.elapsedMs()); err != nil {
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		writeJSON(w, http.StatusOK, q.view(p.sess))
	})
}

// currentRound rebuilds the round for the current idiom from its saved
// guesses. It writes a 409 and returns false when the caller is reviewing
// another idiom or the current one is already completed.
func (q *quizServer) currentRound(w http.ResponseWriter, p *quizPlayer) (*game.Game, bool) {
	if p.sess.Viewing() {
		writeError(w, http.StatusConflict, "viewing")
		return nil, false
	}
	answer, ok := p.sess.CurrentIdiom()
	res, _ := p.sess.Result(p.sess.CurrentIndex())
	if !ok || res.Completed {
		writeError(w, http.StatusConflict, "idiom_completed")
		return nil, false
	}
	return game.Resume(answer, q.srv.cfg.MaxGuesses, res.Guesses, q.srv.lookup), true
}

func (q *quizServer) handleNext(w http.ResponseWriter, r *http.Request) {
	q.withActive(w, r, func(_ string, p *quizPlayer) {
		moved, err := p.sess.NextIdiom(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		if !moved {
			writeError(w, http.StatusConflict, "no_next")
			return
		}
		p.sess.BackToCurrent()
		p.startClock()
		writeJSON(w, http.StatusOK, q.view(p.sess))
	})
}

type jumpReq struct {
	Index int `json:"index"`
}

func (q *quizServer) handleJump(w http.ResponseWriter, r *http.Request) {
	var req jumpReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	q.withActive(w, r, func(_ string, p *quizPlayer) {
		if !p.sess.JumpToIdiom(req.Index) {
			writeError(w, http.StatusBadRequest, "bad_index")
			return
		}
		writeJSON(w, http.StatusOK, q.view(p.sess))
	})
}

func (q *quizServer) handleBack(w http.ResponseWriter, r *http.Request) {
	q.withActive(w, r, func(_ string, p *quizPlayer) {
		p.sess.BackToCurrent()
		writeJSON(w, http.StatusOK, q.view(p.sess))
	})
}

func (q *quizServer) handleExit(w http.ResponseWriter, r *http.Request) {
	q.withActive(w, r, func(pid string, p *quizPlayer) {
		if err := p.sess.Exit(r.Context()); err != nil {
			log.Warn().Err(err).Msg("quiz exit")
		}
		q.forget(pid, p)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}
