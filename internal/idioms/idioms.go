// apps/go-server/internal/idioms/idioms.go
//
// Answer list management for the game engine.
//
// Responsibilities:
//   - Load answers from a configured file or fall back to the embedded list.
//   - Keep only well-formed idioms (Length Han characters), de-duplicated.
//   - Supply RandomAnswer, At, Contains and Len.
//
// There is no "allowed guesses" list: any well-formed idiom may
// be guessed.
//
// Environment:
//   IDIOMS_FILE=/path/to/idioms.txt   (one idiom per line, # comments)

package idioms

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/robalobadob/idiomle/apps/go-server/assets"
)

// Length is the number of characters in every answer.
const Length = 4

// ErrEmpty is returned when no usable answer was found.
var ErrEmpty = errors.New("idioms: answer list is empty")

// List is an immutable set of answers.
type List struct {
	answers []string
	index   map[string]int
}

// Load reads answers from path, or from the embedded list when path is "".
func Load(path string) (*List, error) {
	var lines []string
	var err error
	if path == "" {
		lines, err = assets.IdiomList()
	} else {
		lines, err = readFile(path)
	}
	if err != nil {
		return nil, err
	}
	return New(lines)
}

// New builds a List from raw lines, dropping malformed entries and duplicates.
func New(lines []string) (*List, error) {
	l := &List{index: make(map[string]int)}
	for _, s := range lines {
		s = strings.TrimSpace(s)
		if !WellFormed(s) {
			continue
		}
		if _, dup := l.index[s]; dup {
			continue
		}
		l.index[s] = len(l.answers)
		l.answers = append(l.answers, s)
	}
	if len(l.answers) == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" && !strings.HasPrefix(s, "#") {
			out = append(out, s)
		}
	}
	return out, sc.Err()
}

// WellFormed reports whether s is Length Han characters.
func WellFormed(s string) bool {
	if utf8.RuneCountInString(s) != Length {
		return false
	}
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			return false
		}
	}
	return true
}

// RandomAnswer returns a cryptographically random answer.
func (l *List) RandomAnswer() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	return l.answers[n.Int64()]
}

// At returns the answer at index i (used by the daily challenge).
func (l *List) At(i int) string { return l.answers[i] }

// Len is the number of answers.
func (l *List) Len() int { return len(l.answers) }

// Contains reports whether s is one of the answers.
func (l *List) Contains(s string) bool {
	_, ok := l.index[s]
	return ok
}
