package idioms_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/idiomle/apps/go-server/internal/idioms"
)

func TestLoad_Embedded(t *testing.T) {
	l, err := idioms.Load("")
	require.NoError(t, err)
	assert.Greater(t, l.Len(), 10)
	assert.True(t, l.Contains("一马当先"))
	assert.True(t, l.Contains(l.RandomAnswer()))
}

func TestLoad_FileFiltersAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idioms.txt")
	content := "# comment\n画蛇添足\n\n画蛇添足\n太短\nabcd\n守株待兔 \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l, err := idioms.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "画蛇添足", l.At(0))
	assert.Equal(t, "守株待兔", l.At(1))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := idioms.Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestNew_Empty(t *testing.T) {
	_, err := idioms.New([]string{"abc", ""})
	assert.ErrorIs(t, err, idioms.ErrEmpty)
}

func TestWellFormed(t *testing.T) {
	assert.True(t, idioms.WellFormed("一马当先"))
	assert.False(t, idioms.WellFormed("一马当"))
	assert.False(t, idioms.WellFormed("一马当先了"))
	assert.False(t, idioms.WellFormed("一马a先"))
}
