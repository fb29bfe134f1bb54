// apps/go-server/internal/idiom/compare.go
//
// Idiom scoring: a Wordle-style green/yellow/gray classification applied to
// the character itself and to each pinyin part.
//
// Six passes run from most to least specific:
//   1. character identity
//   2. full pronunciation (initial + final + tone)
//   3. syllable without tone (initial + final)
//   4. initial
//   5. final
//   6. tone
//
// Every pass is a greedy bipartite matching between guess and answer
// positions. Same-position pairs are tried for all positions first, then
// cross-position pairs in ascending answer order (first fit). A guess unit
// and an answer unit are each credited at most once per field, and a field
// set by an earlier pass is never touched again.

package idiom

// field is a bitset over the four scored fields of a position.
type field uint8

const (
	fieldChar field = 1 << iota
	fieldInitial
	fieldFinal
	fieldTone

	fieldPinyin = fieldInitial | fieldFinal | fieldTone
)

// pass describes one matching round.
//   - blockers: a pair is skipped if either side already claims any of these.
//   - claims:   fields written (and claimed on both sides) on success.
type pass struct {
	blockers field
	claims   field
	key      func(PhoneticChar) string
}

var passes = []pass{
	{
		blockers: fieldChar,
		claims:   fieldChar | fieldPinyin,
		key:      func(c PhoneticChar) string { return c.Char },
	},
	{
		blockers: fieldChar | fieldPinyin,
		claims:   fieldPinyin,
		key:      func(c PhoneticChar) string { return c.Pinyin.Initial + c.Pinyin.Final + c.Pinyin.Tone },
	},
	{
		blockers: fieldChar | fieldInitial | fieldFinal,
		claims:   fieldInitial | fieldFinal,
		key:      func(c PhoneticChar) string { return c.Pinyin.Initial + c.Pinyin.Final },
	},
	{
		blockers: fieldChar | fieldInitial,
		claims:   fieldInitial,
		key:      func(c PhoneticChar) string { return c.Pinyin.Initial },
	},
	{
		blockers: fieldChar | fieldFinal,
		claims:   fieldFinal,
		key:      func(c PhoneticChar) string { return c.Pinyin.Final },
	},
	{
		blockers: fieldChar | fieldTone,
		claims:   fieldTone,
		key:      func(c PhoneticChar) string { return c.Pinyin.Tone },
	},
}

// Compare classifies guess against answer and returns one CharMatch per
// guess position. Both slices are expected to have the same length; extra
// positions on either side simply have no same-position counterpart.
func Compare(guess, answer []PhoneticChar) []CharMatch {
	m := matcher{
		guess:   guess,
		answer:  answer,
		out:     make([]CharMatch, len(guess)),
		guessed: make([]field, len(guess)),
		taken:   make([]field, len(answer)),
	}
	for _, p := range passes {
		m.run(p)
	}
	return m.out
}

// Solved reports whether every position matched its answer character in place.
func Solved(ms []CharMatch) bool {
	if len(ms) == 0 {
		return false
	}
	for _, cm := range ms {
		if cm.Char != TierExact {
			return false
		}
	}
	return true
}

type matcher struct {
	guess, answer []PhoneticChar
	out           []CharMatch
	guessed       []field // fields claimed per guess position
	taken         []field // fields claimed per answer position
}

func (m *matcher) run(p pass) {
	for i := range m.guess {
		if i < len(m.answer) {
			m.try(p, i, i)
		}
	}
	for i := range m.guess {
		for j := range m.answer {
			if i == j {
				continue
			}
			if m.try(p, i, j) {
				break
			}
		}
	}
}

// try attempts to match guess position i with answer position j under p.
func (m *matcher) try(p pass, i, j int) bool {
	if m.guessed[i]&p.blockers != 0 || m.taken[j]&p.blockers != 0 {
		return false
	}
	if p.key(m.guess[i]) != p.key(m.answer[j]) {
		return false
	}
	t := TierMisplaced
	if i == j {
		t = TierExact
	}
	m.out[i].set(p.claims, t)
	m.guessed[i] |= p.claims
	m.taken[j] |= p.claims
	return true
}

func (cm *CharMatch) set(f field, t Tier) {
	if f&fieldChar != 0 {
		cm.Char = t
	}
	if f&fieldInitial != 0 {
		cm.Pinyin.Initial = t
	}
	if f&fieldFinal != 0 {
		cm.Pinyin.Final = t
	}
	if f&fieldTone != 0 {
		cm.Pinyin.Tone = t
	}
}
