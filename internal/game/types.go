// apps/go-server/internal/game/types.go
//
// Core type definitions for a single idiom round.
// Defines:
//   - State: coarse round state (playing/won/lost).
//   - Feedback: one scored guess with its pinyin, ready for rendering.
//   - Game: state for a single in-progress or finished round.

package game

import (
	"time"

	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
)

// State is the lifecycle state of a round.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Feedback is a scored guess.
type Feedback struct {
	Guess   string               `json:"guess"`
	Chars   []idiom.PhoneticChar `json:"chars"`
	Matches []idiom.CharMatch    `json:"matches"`
}

// Game holds the state of a single round.
type Game struct {
	ID        string    // Unique game identifier (random hex string).
	Answer    string    // The secret idiom.
	Rows      int       // Maximum number of guesses allowed.
	Guesses   []string  // Guesses made so far.
	Finished  bool      // True once the round is over (won or lost).
	Won       bool      // True if the round was finished with a win.
	StartedAt time.Time // When the round was created.

	lookup idiom.Lookup
	answer []idiom.PhoneticChar // cached decomposition of Answer
}
