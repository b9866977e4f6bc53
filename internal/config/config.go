// internal/config/config.go
//
// Server settings loaded from the environment (and .env via godotenv in main).
// Every field has a development default; Load rejects non-positive
// DAILY_BOARDS / DAILY_MAX_ATTEMPTS.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-driven setting.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`

	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBPath   string `env:"DB_PATH" envDefault:"./data/bingo.db"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"bingo_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	DailySalt        string `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	DailyBoards      int    `env:"DAILY_BOARDS" envDefault:"100"`
	DailyMaxAttempts int    `env:"DAILY_MAX_ATTEMPTS" envDefault:"6"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.DailyBoards <= 0 {
		return Config{}, fmt.Errorf("DAILY_BOARDS must be positive, got %d", c.DailyBoards)
	}
	if c.DailyMaxAttempts <= 0 {
		return Config{}, fmt.Errorf("DAILY_MAX_ATTEMPTS must be positive, got %d", c.DailyMaxAttempts)
	}
	return c, nil
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.AppEnv == "production" }

// TokenTTL is the JWT lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
