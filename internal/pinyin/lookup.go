// apps/go-server/internal/pinyin/lookup.go
//
// Pinyin decomposition backed by github.com/mozillazg/go-pinyin.
// Responsibilities:
//   - Split each character into initial, tone-less final and tone digit.
//   - Keep results index-aligned with the input runes (non-Han runes yield "").
//   - Cache per-rune results; lookups are safe for concurrent use.
//
// Heteronyms resolve to the dictionary's first reading.

package pinyin

import (
	"sync"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Parts is the decomposition of a single character.
type Parts struct {
	Initial string
	Final   string
	Tone    string
}

// Lookup implements idiom.Lookup.
type Lookup struct {
	mu    sync.RWMutex
	cache map[rune]Parts

	initials gopinyin.Args
	finals   gopinyin.Args
	numbered gopinyin.Args
}

// New constructs a Lookup with an empty cache.
func New() *Lookup {
	mk := func(style int) gopinyin.Args {
		a := gopinyin.NewArgs()
		a.Style = style
		return a
	}
	return &Lookup{
		cache:    make(map[rune]Parts),
		initials: mk(gopinyin.Initials),
		finals:   mk(gopinyin.Finals),
		numbered: mk(gopinyin.Tone3),
	}
}

// Decompose returns three slices, one entry per rune of s.
func (l *Lookup) Decompose(s string) (initials, finals, tones []string) {
	runes := []rune(s)
	initials = make([]string, len(runes))
	finals = make([]string, len(runes))
	tones = make([]string, len(runes))
	for i, r := range runes {
		p := l.Char(r)
		initials[i], finals[i], tones[i] = p.Initial, p.Final, p.Tone
	}
	return initials, finals, tones
}

// Char decomposes one rune, consulting the cache first.
func (l *Lookup) Char(r rune) Parts {
	l.mu.RLock()
	p, ok := l.cache[r]
	l.mu.RUnlock()
	if ok {
		return p
	}

	s := string(r)
	p = Parts{
		Initial: first(gopinyin.Pinyin(s, l.initials)),
		Final:   first(gopinyin.Pinyin(s, l.finals)),
		Tone:    toneDigit(first(gopinyin.Pinyin(s, l.numbered))),
	}

	l.mu.Lock()
	l.cache[r] = p
	l.mu.Unlock()
	return p
}

// Size reports the number of cached characters.
func (l *Lookup) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

func first(pys [][]string) string {
	if len(pys) == 0 || len(pys[0]) == 0 {
		return ""
	}
	return pys[0][0]
}

// toneDigit extracts the trailing tone number of a Tone3 syllable ("zhong1").
// Neutral tone syllables carry no digit.
func toneDigit(syllable string) string {
	if n := len(syllable); n > 0 {
		if c := syllable[n-1]; c >= '1' && c <= '5' {
			return string(c)
		}
	}
	return ""
}
