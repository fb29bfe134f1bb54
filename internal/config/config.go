package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds server configuration loaded from .env, an optional
// config file and environment variables (highest priority).
type Config struct {
	Port         string `mapstructure:"port"`
	LogLevel     string `mapstructure:"log_level"`
	DBPath       string `mapstructure:"db_path"`
	IdiomsFile   string `mapstructure:"idioms_file"`   // optional answer list; embedded list when empty
	MaxGuesses   int    `mapstructure:"max_guesses"`   // guesses allowed per idiom
	DailySalt    string `mapstructure:"daily_salt"`    // HMAC key for daily idiom selection
	ClientOrigin string `mapstructure:"client_origin"` // single CORS origin
	Production   bool   `mapstructure:"production"`    // secure cookies

	Auth Auth `mapstructure:"auth"`
}

// Auth contains JWT and cookie settings.
type Auth struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiresDays int    `mapstructure:"jwt_expires_days"`
	CookieName     string `mapstructure:"cookie_name"`
}

// Load reads configuration. A missing .env or config file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("port", "5175")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_path", "./data/app.db")
	v.SetDefault("idioms_file", "")
	v.SetDefault("max_guesses", 10)
	v.SetDefault("daily_salt", "local_dev_salt")
	v.SetDefault("client_origin", "http://localhost:5173")
	v.SetDefault("production", false)
	v.SetDefault("auth.jwt_secret", "dev_secret_change_me")
	v.SetDefault("auth.jwt_expires_days", 14)
	v.SetDefault("auth.cookie_name", "idiomle_token")

	// PORT, LOG_LEVEL, ...; nested keys map to their leaf names (JWT_SECRET).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.jwt_expires_days", "JWT_EXPIRES_DAYS")
	_ = v.BindEnv("auth.cookie_name", "COOKIE_NAME")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH cannot be empty")
	}
	if c.MaxGuesses < 1 {
		return fmt.Errorf("MAX_GUESSES must be positive, got %d", c.MaxGuesses)
	}
	if c.Production && c.Auth.JWTSecret == "dev_secret_change_me" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}
