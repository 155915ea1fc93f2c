// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	DBDialect   string `env:"DB_DIALECT"      envDefault:"sqlite"`
	SQLitePath  string `env:"DB_SQLITE_PATH"  envDefault:"tmp/mole.sqlite"`
	PostgresDSN string `env:"DB_POSTGRES_DSN"`
	DatabaseURL string `env:"DATABASE_URL"`

	// PublicURL is the base URL players open; it is encoded in the join QR code.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	QuizTarget        string `env:"QUIZ_TARGET"              envDefault:"Lars"`
	QuestionsPerRound int    `env:"QUIZ_QUESTIONS_PER_ROUND" envDefault:"4"`
	MinPlayers        int    `env:"MIN_PLAYERS"              envDefault:"2"`

	Debug bool `env:"DEBUG"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set take precedence over the file.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are ignored.
func LoadFiles(paths ...string) (Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

// PostgresDSNOrURL returns DB_POSTGRES_DSN, falling back to DATABASE_URL.
func (c Config) PostgresDSNOrURL() string {
	if dsn := strings.TrimSpace(c.PostgresDSN); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(c.DatabaseURL)
}

// JoinURL is the URL encoded in the join QR code.
func (c Config) JoinURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/"
}

func (c Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDialect)) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DIALECT must be sqlite or postgres, got %q", c.DBDialect)
	}
	if c.MinPlayers < 2 {
		return fmt.Errorf("MIN_PLAYERS must be at least 2, got %d", c.MinPlayers)
	}
	if c.QuestionsPerRound < 1 {
		return fmt.Errorf("QUIZ_QUESTIONS_PER_ROUND must be positive, got %d", c.QuestionsPerRound)
	}
	return nil
}
