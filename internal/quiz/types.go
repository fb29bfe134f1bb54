// apps/go-server/internal/quiz/types.go
//
// Type definitions for multi-idiom quiz sessions.
// Defines:
//   - Result: per-idiom outcome, persisted as JSON.
//   - document: the stored {currentIndex, results} shape.
//   - snapshot: the parsed form of a stored document.

package quiz

// Result is the outcome of one idiom within a quiz.
type Result struct {
	Idiom     string   `json:"idiom"`     // the answer for this slot
	Guesses   []string `json:"guesses"`   // guesses in submission order
	Won       bool     `json:"won"`       // solved before running out of guesses
	Time      int64    `json:"time"`      // milliseconds spent on the idiom
	Completed bool     `json:"completed"` // won or given up; no more guesses accepted
}

func freshResult(idiom string) Result {
	return Result{Idiom: idiom, Guesses: []string{}}
}

func (r Result) clone() Result {
	r.Guesses = append([]string{}, r.Guesses...)
	return r
}

// document is what Save writes under the session key.
type document struct {
	CurrentIndex int      `json:"currentIndex"`
	Results      []Result `json:"results"`
}

// snapshot is a stored document after lenient parsing. A nil entry in
// results marks a slot that was missing or unreadable.
type snapshot struct {
	currentIndex int
	results      []*Result
}
