// apps/go-server/internal/idiom/types.go
//
// Core type definitions for idiom scoring.
// Defines:
//   - PhoneticChar: one character of an idiom with its pinyin parts.
//   - Tier: per-field match result (none/misplaced/exact).
//   - CharMatch: the feedback for one guess position.
//   - Lookup: the pinyin decomposition service consumed by Parse.

package idiom

// Pinyin is the romanized pronunciation of one character split into parts.
// Tone is a digit string ("1".."4") or empty for neutral/unknown.
type Pinyin struct {
	Initial string `json:"initial"`
	Final   string `json:"final"`
	Tone    string `json:"tone"`
}

// PhoneticChar is a single idiom character decomposed for comparison.
type PhoneticChar struct {
	Char   string `json:"char"`
	Pinyin Pinyin `json:"pinyin"`
}

// Tier is the match classification of one field of a guessed character.
//   - TierNone:      no unclaimed counterpart in the answer.
//   - TierMisplaced: matched an answer unit at a different position.
//   - TierExact:     matched the answer unit at the same position.
type Tier int

const (
	TierNone Tier = iota
	TierMisplaced
	TierExact
)

// PinyinMatch holds the tiers of the three pinyin parts.
type PinyinMatch struct {
	Initial Tier `json:"initial"`
	Final   Tier `json:"final"`
	Tone    Tier `json:"tone"`
}

// CharMatch is the feedback for one guess position.
type CharMatch struct {
	Char   Tier        `json:"char"`
	Pinyin PinyinMatch `json:"pinyin"`
}

// Lookup decomposes a string of Han characters into three parallel slices,
// one entry per character. Empty strings mean "not applicable".
type Lookup interface {
	Decompose(s string) (initials, finals, tones []string)
}
