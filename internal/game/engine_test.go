package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/idiomle/apps/go-server/internal/game"
	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
)

type table map[rune]idiom.Pinyin

func (t table) Decompose(s string) (initials, finals, tones []string) {
	for _, r := range s {
		p := t[r]
		initials = append(initials, p.Initial)
		finals = append(finals, p.Final)
		tones = append(tones, p.Tone)
	}
	return initials, finals, tones
}

var lk = table{
	'一': {Final: "i", Tone: "1"},
	'马': {Initial: "m", Final: "a", Tone: "3"},
	'当': {Initial: "d", Final: "ang", Tone: "1"},
	'先': {Initial: "x", Final: "ian", Tone: "1"},
	'心': {Initial: "x", Final: "in", Tone: "1"},
	'意': {Final: "i", Tone: "4"},
}

func TestApplyGuess_Win(t *testing.T) {
	g := game.New("一马当先", 0, lk)
	assert.Equal(t, game.DefaultRows, g.Rows)
	assert.Len(t, g.ID, 16)

	fb, st, err := g.ApplyGuess("一心一意")
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, st)
	assert.Equal(t, idiom.TierExact, fb.Matches[0].Char)
	assert.Equal(t, "心", fb.Chars[1].Char)

	fb, st, err = g.ApplyGuess(" 一马当先 ")
	require.NoError(t, err)
	assert.Equal(t, game.StateWon, st)
	assert.True(t, idiom.Solved(fb.Matches))
	assert.Equal(t, []string{"一心一意", "一马当先"}, g.Guesses)

	_, _, err = g.ApplyGuess("一心一意")
	assert.ErrorIs(t, err, game.ErrFinished)
}

func TestApplyGuess_LossAfterRows(t *testing.T) {
	g := game.New("一马当先", 2, lk)

	_, st, err := g.ApplyGuess("一心一意")
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, st)

	_, st, err = g.ApplyGuess("一心一意")
	require.NoError(t, err)
	assert.Equal(t, game.StateLost, st)
	assert.True(t, g.Finished)
	assert.False(t, g.Won)
}

func TestApplyGuess_Invalid(t *testing.T) {
	g := game.New("一马当先", 0, lk)
	for _, s := range []string{"", "一马当", "一马当先先", "一马ab"} {
		_, st, err := g.ApplyGuess(s)
		assert.ErrorIs(t, err, game.ErrInvalidGuess, s)
		assert.Equal(t, game.StatePlaying, st)
	}
	assert.Empty(t, g.Guesses)
}

func TestResume(t *testing.T) {
	g := game.Resume("一马当先", 3, []string{"一心一意"}, lk)
	assert.Equal(t, game.StatePlaying, g.State())
	require.Len(t, g.History(), 1)
	assert.Equal(t, "一心一意", g.History()[0].Guess)

	g = game.Resume("一马当先", 3, []string{"一心一意", "一马当先"}, lk)
	assert.Equal(t, game.StateWon, g.State())

	g = game.Resume("一马当先", 2, []string{"一心一意", "一心一意"}, lk)
	assert.Equal(t, game.StateLost, g.State())
}
