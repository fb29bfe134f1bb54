package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/idiomle/apps/go-server/internal/config"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, 10, cfg.MaxGuesses)
	assert.Equal(t, "idiomle_token", cfg.Auth.CookieName)
	assert.Equal(t, 14, cfg.Auth.JWTExpiresDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_GUESSES", "6")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 6, cfg.MaxGuesses)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	ok := config.Config{Port: "1", DBPath: "x.db", MaxGuesses: 10}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.MaxGuesses = 0
	assert.ErrorContains(t, bad.Validate(), "MAX_GUESSES")

	bad = ok
	bad.Port = ""
	assert.ErrorContains(t, bad.Validate(), "PORT cannot be empty")

	bad = ok
	bad.Production = true
	bad.Auth.JWTSecret = "dev_secret_change_me"
	assert.Error(t, bad.Validate())
}
