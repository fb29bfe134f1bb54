// apps/go-server/internal/quiz/session.go
//
// Quiz session manager: one play-through over an ordered list of idioms.
// Responsibilities:
//   - Track the current idiom and one Result per idiom.
//   - Persist {currentIndex, results} under "customQuiz_<id>" after every change.
//   - Resume saved progress, repairing it against the idiom list on Init.
//   - Let callers review any idiom (view cursor) without touching progress.
//
// Notes:
//   - A Session is a plain value owned by its caller; it is not safe for
//     concurrent use. The HTTP layer serialises access per player.
//   - Calls made before Init/Restore are no-ops.
//   - Unreadable saved data is treated as "nothing saved", never as an error.

package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/idiomle/apps/go-server/internal/kv"
)

// KeyPrefix is prepended to the session id to form the storage key.
const KeyPrefix = "customQuiz_"

type state struct {
	idioms       []string
	currentIndex int
	results      []Result
}

// Session owns the state of one quiz.
type Session struct {
	store   kv.Store
	id      string
	st      *state
	viewing *int
}

// New returns an inactive session persisting through store.
func New(store kv.Store) *Session {
	return &Session{store: store}
}

// Init starts or resumes the quiz for idioms. An empty id is replaced by
// DeriveID(idioms). Saved results are aligned to idioms by index: slots that
// are missing, unreadable or belong to another idiom start fresh. The
// restored position is clamped to a valid idiom index. A fresh quiz is saved
// immediately; if that write fails the session stays inactive.
func (s *Session) Init(ctx context.Context, idioms []string, id string) error {
	if id == "" {
		id = DeriveID(idioms)
	}
	s.id = id
	s.viewing = nil
	idioms = append([]string{}, idioms...)

	if snap, ok := s.load(ctx); ok {
		results := make([]Result, len(idioms))
		for k, want := range idioms {
			results[k] = freshResult(want)
			if k >= len(snap.results) || snap.results[k] == nil {
				continue
			}
			if r := *snap.results[k]; r.Idiom == "" || r.Idiom == want {
				r.Idiom = want
				results[k] = r
			}
		}
		s.st = &state{
			idioms:       idioms,
			currentIndex: clamp(snap.currentIndex, len(idioms)),
			results:      results,
		}
		log.Debug().Str("quiz", id).Int("index", s.st.currentIndex).Msg("quiz resumed")
		return nil
	}

	results := make([]Result, len(idioms))
	for k, want := range idioms {
		results[k] = freshResult(want)
	}
	s.st = &state{idioms: idioms, results: results}
	if err := s.Save(ctx); err != nil {
		s.st = nil
		return err
	}
	log.Debug().Str("quiz", id).Int("idioms", len(idioms)).Msg("quiz started")
	return nil
}

// Restore loads saved state for id as-is, trusting that it matches idioms.
// It reports whether anything usable was saved.
func (s *Session) Restore(ctx context.Context, idioms []string, id string) bool {
	s.id = id
	snap, ok := s.load(ctx)
	if !ok {
		return false
	}
	results := make([]Result, len(snap.results))
	for k, r := range snap.results {
		if r != nil {
			results[k] = *r
		} else {
			results[k] = Result{Guesses: []string{}}
		}
	}
	s.st = &state{
		idioms:       append([]string{}, idioms...),
		currentIndex: snap.currentIndex,
		results:      results,
	}
	s.viewing = nil
	return true
}

// UpdateCurrentResult records the final outcome of the current idiom.
func (s *Session) UpdateCurrentResult(ctx context.Context, guesses []string, won bool, ms int64) error {
	i, ok := s.currentSlot()
	if !ok {
		return nil
	}
	s.st.results[i] = Result{
		Idiom:     s.st.idioms[i],
		Guesses:   append([]string{}, guesses...),
		Won:       won,
		Time:      ms,
		Completed: true,
	}
	return s.Save(ctx)
}

// SaveCurrentProgress replaces the guesses of the current idiom without
// completing it.
func (s *Session) SaveCurrentProgress(ctx context.Context, guesses []string) error {
	i, ok := s.currentSlot()
	if !ok {
		return nil
	}
	s.st.results[i].Guesses = append([]string{}, guesses...)
	return s.Save(ctx)
}

// NextIdiom moves to the following idiom. It returns false, leaving the
// session unchanged, when there is no following idiom.
func (s *Session) NextIdiom(ctx context.Context) (bool, error) {
	if s.st == nil || s.st.currentIndex >= len(s.st.idioms)-1 {
		return false, nil
	}
	s.st.currentIndex++
	return true, s.Save(ctx)
}

// JumpToIdiom points the view cursor at index. Out-of-range indexes are ignored.
func (s *Session) JumpToIdiom(index int) bool {
	if s.st == nil || index < 0 || index >= len(s.st.idioms) {
		return false
	}
	s.viewing = &index
	return true
}

// BackToCurrent clears the view cursor.
func (s *Session) BackToCurrent() {
	s.viewing = nil
}

// Exit deletes the saved state and deactivates the session.
func (s *Session) Exit(ctx context.Context) error {
	var err error
	if s.id != "" {
		err = s.store.Delete(ctx, KeyPrefix+s.id)
	}
	s.st = nil
	s.id = ""
	s.viewing = nil
	return err
}

// Save writes {currentIndex, results} under the session key.
func (s *Session) Save(ctx context.Context) error {
	if s.st == nil || s.id == "" {
		return nil
	}
	b, err := json.Marshal(document{CurrentIndex: s.st.currentIndex, Results: s.st.results})
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyPrefix+s.id, b); err != nil {
		return fmt.Errorf("save quiz %s: %w", s.id, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// accessors

// Active reports whether a quiz is loaded.
func (s *Session) Active() bool { return s.st != nil }

// ID is the session id (empty when inactive).
func (s *Session) ID() string { return s.id }

// CurrentIndex is the idiom being played.
func (s *Session) CurrentIndex() int {
	if s.st == nil {
		return 0
	}
	return s.st.currentIndex
}

// ViewIndex is the idiom being looked at: the view cursor if set, otherwise
// the current index.
func (s *Session) ViewIndex() int {
	if s.viewing != nil {
		return *s.viewing
	}
	return s.CurrentIndex()
}

// Viewing reports whether the view cursor is set.
func (s *Session) Viewing() bool { return s.viewing != nil }

// TotalCount is the number of idioms in the quiz.
func (s *Session) TotalCount() int {
	if s.st == nil {
		return 0
	}
	return len(s.st.idioms)
}

// CurrentIdiom returns the idiom at ViewIndex.
func (s *Session) CurrentIdiom() (string, bool) {
	if s.st == nil {
		return "", false
	}
	i := s.ViewIndex()
	if i < 0 || i >= len(s.st.idioms) {
		return "", false
	}
	return s.st.idioms[i], true
}

// Result returns a copy of the result at index.
func (s *Session) Result(index int) (Result, bool) {
	if s.st == nil || index < 0 || index >= len(s.st.results) {
		return Result{}, false
	}
	return s.st.results[index].clone(), true
}

// Results returns a copy of all results.
func (s *Session) Results() []Result {
	if s.st == nil {
		return []Result{}
	}
	out := make([]Result, len(s.st.results))
	for i, r := range s.st.results {
		out[i] = r.clone()
	}
	return out
}

// Completed reports whether the whole quiz is done: the position is past
// the last idiom, or it is on the last idiom and that idiom is completed.
func (s *Session) Completed() bool {
	if s.st == nil {
		return false
	}
	n := len(s.st.idioms)
	if s.st.currentIndex >= n {
		return true
	}
	last := n - 1
	return s.st.currentIndex == last && last < len(s.st.results) && s.st.results[last].Completed
}

// Progress renders the position as "current/total", 1-based.
func (s *Session) Progress() string {
	if s.st == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", s.st.currentIndex+1, len(s.st.idioms))
}

// ---------------------------------------------------------------------------
// persistence helpers

// currentSlot returns the current index when it names an idiom, first
// padding results with fresh slots up to it (a restored document may be
// shorter than its position).
func (s *Session) currentSlot() (int, bool) {
	if s.st == nil {
		return 0, false
	}
	i := s.st.currentIndex
	if i < 0 || i >= len(s.st.idioms) {
		return 0, false
	}
	for k := len(s.st.results); k <= i; k++ {
		s.st.results = append(s.st.results, freshResult(s.st.idioms[k]))
	}
	return i, true
}

// load reads and leniently parses the saved document. ok is false when
// nothing usable is stored.
func (s *Session) load(ctx context.Context) (snap snapshot, ok bool) {
	raw, err := s.store.Get(ctx, KeyPrefix+s.id)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Warn().Err(err).Str("quiz", s.id).Msg("read saved quiz")
		}
		return snapshot{}, false
	}
	snap, ok = parseSnapshot(raw)
	if !ok {
		log.Warn().Str("quiz", s.id).Msg("discarding malformed saved quiz")
	}
	return snap, ok
}

// parseSnapshot decodes a stored document field by field so that one bad
// field falls back to its default instead of discarding everything.
func parseSnapshot(raw []byte) (snapshot, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return snapshot{}, false
	}

	var snap snapshot
	var idx float64
	if err := json.Unmarshal(fields["currentIndex"], &idx); err == nil {
		snap.currentIndex = int(idx)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(fields["results"], &items); err != nil {
		return snap, true
	}
	snap.results = make([]*Result, len(items))
	for k, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var r Result
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		if r.Guesses == nil {
			r.Guesses = []string{}
		}
		snap.results[k] = &r
	}
	return snap, true
}

// clamp bounds a restored index to [0, n-1] (0 for an empty quiz).
func clamp(i, n int) int {
	if i > n-1 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
