// apps/go-server/internal/game/engine.go
//
// Game engine for a single idiom round.
// Responsibilities:
//   - Create rounds for a given answer, or resume one from saved guesses.
//   - Validate and apply guesses (same length as the answer, Han characters only).
//   - Score guesses with idiom.Compare against the cached answer decomposition.
//   - Track state transitions: playing → won/lost.
//
// Guesses are not checked against any dictionary.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
)

// DefaultRows is the number of guesses allowed when none is configured.
const DefaultRows = 10

var (
	ErrFinished     = errors.New("game finished")
	ErrInvalidGuess = errors.New("invalid guess")
)

// New constructs a round for answer. rows <= 0 selects DefaultRows.
func New(answer string, rows int, lk idiom.Lookup) *Game {
	if rows <= 0 {
		rows = DefaultRows
	}
	answer = strings.TrimSpace(answer)
	return &Game{
		ID:        randomID(),
		Answer:    answer,
		Rows:      rows,
		Guesses:   []string{},
		StartedAt: time.Now(),
		lookup:    lk,
		answer:    idiom.Parse(answer, lk),
	}
}

// Resume rebuilds a round from previously accepted guesses. The won/lost
// state is recomputed from the guesses.
func Resume(answer string, rows int, guesses []string, lk idiom.Lookup) *Game {
	g := New(answer, rows, lk)
	for _, s := range guesses {
		g.Guesses = append(g.Guesses, s)
		if s == g.Answer {
			g.Finished, g.Won = true, true
			break
		}
	}
	if !g.Finished && len(g.Guesses) >= g.Rows {
		g.Finished = true
	}
	return g
}

// ApplyGuess validates and scores a guess, mutating the round state.
//
// Validation rules:
//   - Round must not be finished.
//   - Guess must have as many characters as the answer, all Han.
//
// State transitions:
//   - Every character in place → Finished, Won.
//   - Else if the number of guesses reaches g.Rows → Finished (loss).
func (g *Game) ApplyGuess(guess string) (Feedback, State, error) {
	if g.Finished {
		return Feedback{}, g.State(), ErrFinished
	}
	guess = strings.TrimSpace(guess)
	if utf8.RuneCountInString(guess) != len(g.answer) || !isHan(guess) {
		return Feedback{}, g.State(), ErrInvalidGuess
	}

	fb := g.score(guess)
	g.Guesses = append(g.Guesses, guess)

	if idiom.Solved(fb.Matches) {
		g.Finished, g.Won = true, true
	} else if len(g.Guesses) >= g.Rows {
		g.Finished = true
	}
	return fb, g.State(), nil
}

// History scores every accepted guess again, in order.
func (g *Game) History() []Feedback {
	out := make([]Feedback, len(g.Guesses))
	for i, s := range g.Guesses {
		out[i] = g.score(s)
	}
	return out
}

// State reports the coarse state of the round.
func (g *Game) State() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// Elapsed is the wall time since the round was created.
func (g *Game) Elapsed() time.Duration { return time.Since(g.StartedAt) }

func (g *Game) score(guess string) Feedback {
	chars := idiom.Parse(guess, g.lookup)
	return Feedback{Guess: guess, Chars: chars, Matches: idiom.Compare(chars, g.answer)}
}

// isHan checks that every rune is a Han ideograph.
func isHan(s string) bool {
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			return false
		}
	}
	return true
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
