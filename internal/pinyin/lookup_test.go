package pinyin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
	"github.com/robalobadob/idiomle/apps/go-server/internal/pinyin"
)

var _ idiom.Lookup = (*pinyin.Lookup)(nil)

func TestDecompose_SplitsSyllables(t *testing.T) {
	lk := pinyin.New()
	initials, finals, tones := lk.Decompose("中国")

	assert.Equal(t, []string{"zh", "g"}, initials)
	assert.Equal(t, []string{"ong", "uo"}, finals)
	assert.Equal(t, []string{"1", "2"}, tones)
}

func TestDecompose_NonHanStaysAligned(t *testing.T) {
	lk := pinyin.New()
	initials, finals, tones := lk.Decompose("中a国")

	require.Len(t, initials, 3)
	require.Len(t, finals, 3)
	require.Len(t, tones, 3)
	assert.Equal(t, "", initials[1])
	assert.Equal(t, "", finals[1])
	assert.Equal(t, "", tones[1])
	assert.Equal(t, "g", initials[2])
}

func TestChar_Caches(t *testing.T) {
	lk := pinyin.New()
	first := lk.Char('马')
	assert.Equal(t, 1, lk.Size())
	assert.Equal(t, first, lk.Char('马'))
	assert.Equal(t, 1, lk.Size())
	assert.Equal(t, "m", first.Initial)
	assert.Equal(t, "3", first.Tone)
}

func TestParse_WithRealLookup(t *testing.T) {
	got := idiom.Parse("马到成功", pinyin.New())

	require.Len(t, got, 4)
	assert.Equal(t, "成", got[2].Char)
	assert.Equal(t, "ch", got[2].Pinyin.Initial)
	assert.Equal(t, "eng", got[2].Pinyin.Final)
	assert.Equal(t, "2", got[2].Pinyin.Tone)
}
