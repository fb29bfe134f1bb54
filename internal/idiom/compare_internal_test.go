package idiom

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func phonetic(ch, initial, final, tone string) PhoneticChar {
	return PhoneticChar{Char: ch, Pinyin: Pinyin{Initial: initial, Final: final, Tone: tone}}
}

var samples = [][2][]PhoneticChar{
	{
		{phonetic("一", "", "i", "1"), phonetic("二", "", "er", "4"), phonetic("三", "s", "an", "1"), phonetic("四", "s", "i", "4")},
		{phonetic("四", "s", "i", "4"), phonetic("是", "sh", "i", "4"), phonetic("一", "", "i", "1"), phonetic("时", "sh", "i", "2")},
	},
	{
		{phonetic("马", "m", "a", "3"), phonetic("到", "d", "ao", "4"), phonetic("成", "ch", "eng", "2"), phonetic("功", "g", "ong", "1")},
		{phonetic("一", "", "i", "1"), phonetic("马", "m", "a", "3"), phonetic("当", "d", "ang", "1"), phonetic("先", "x", "ian", "1")},
	},
	{
		{phonetic("心", "x", "in", "1"), phonetic("心", "x", "in", "1"), phonetic("相", "x", "iang", "1"), phonetic("印", "", "in", "4")},
		{phonetic("心", "x", "in", "1"), phonetic("想", "x", "iang", "3"), phonetic("事", "sh", "i", "4"), phonetic("成", "ch", "eng", "2")},
	},
}

func TestPasses_NeverLowerATier(t *testing.T) {
	for _, s := range samples {
		m := matcher{
			guess:   s[0],
			answer:  s[1],
			out:     make([]CharMatch, len(s[0])),
			guessed: make([]field, len(s[0])),
			taken:   make([]field, len(s[1])),
		}
		for _, p := range passes {
			before := append([]CharMatch(nil), m.out...)
			m.run(p)
			for i := range before {
				assertNotLowered(t, before[i], m.out[i])
			}
		}
	}
}

func assertNotLowered(t *testing.T, before, after CharMatch) {
	t.Helper()
	pairs := [][2]Tier{
		{before.Char, after.Char},
		{before.Pinyin.Initial, after.Pinyin.Initial},
		{before.Pinyin.Final, after.Pinyin.Final},
		{before.Pinyin.Tone, after.Pinyin.Tone},
	}
	for _, p := range pairs {
		if p[0] != TierNone {
			assert.Equal(t, p[0], p[1], "a set tier changed")
		}
	}
}

func TestPasses_ClaimEachUnitOnce(t *testing.T) {
	for _, s := range samples {
		for _, p := range passes {
			m := matcher{
				guess:   s[0],
				answer:  s[1],
				out:     make([]CharMatch, len(s[0])),
				guessed: make([]field, len(s[0])),
				taken:   make([]field, len(s[1])),
			}
			m.run(p)
			// Fresh run of a single pass: claims on both sides must pair up.
			var g, a int
			for _, f := range m.guessed {
				g += bits.OnesCount8(uint8(f))
			}
			for _, f := range m.taken {
				a += bits.OnesCount8(uint8(f))
			}
			assert.Equal(t, g, a)
			for _, f := range m.guessed {
				assert.True(t, f == 0 || f == p.claims)
			}
		}
	}
}

func TestCompare_ExactCharImpliesExactPinyin(t *testing.T) {
	for _, s := range samples {
		for i, cm := range Compare(s[0], s[1]) {
			if cm.Char == TierExact {
				assert.Equal(t, PinyinMatch{TierExact, TierExact, TierExact}, cm.Pinyin, "position %d", i)
			}
		}
	}
}
