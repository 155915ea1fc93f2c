package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "DB_DIALECT", "DB_SQLITE_PATH", "DB_POSTGRES_DSN", "DATABASE_URL", "QUIZ_TARGET", "MIN_PLAYERS", "QUIZ_QUESTIONS_PER_ROUND", "PUBLIC_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBDialect != "sqlite" || cfg.SQLitePath != "tmp/mole.sqlite" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.QuizTarget != "Lars" || cfg.MinPlayers != 2 || cfg.QuestionsPerRound != 4 {
		t.Fatalf("unexpected game defaults %+v", cfg)
	}
	if cfg.JoinURL() != "http://localhost:8080/" {
		t.Fatalf("join url = %q", cfg.JoinURL())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DIALECT", "postgres")
	t.Setenv("DB_POSTGRES_DSN", "")
	t.Setenv("DATABASE_URL", "postgres://mole@localhost/mole")
	t.Setenv("MIN_PLAYERS", "3")
	t.Setenv("DEBUG", "true")
	cfg, err := LoadFiles()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PostgresDSNOrURL() != "postgres://mole@localhost/mole" {
		t.Fatalf("expected DATABASE_URL fallback, got %q", cfg.PostgresDSNOrURL())
	}
	if cfg.MinPlayers != 3 || !cfg.Debug {
		t.Fatalf("unexpected config %+v", cfg)
	}
	t.Setenv("DB_POSTGRES_DSN", "postgres://explicit")
	cfg, _ = LoadFiles()
	if cfg.PostgresDSNOrURL() != "postgres://explicit" {
		t.Fatalf("explicit DSN should win, got %q", cfg.PostgresDSNOrURL())
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	t.Setenv("QUIZ_TARGET", "")
	os.Unsetenv("QUIZ_TARGET")
	t.Setenv("ADDR", ":9999")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("QUIZ_TARGET=Abedin\nADDR=:1234\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("QUIZ_TARGET") })
	cfg, err := LoadFiles(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QuizTarget != "Abedin" {
		t.Fatalf("expected value from .env, got %q", cfg.QuizTarget)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("environment should override .env, got %q", cfg.Addr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DB_DIALECT", "oracle")
	if _, err := LoadFiles(); err == nil || !strings.Contains(err.Error(), "DB_DIALECT") {
		t.Fatalf("expected dialect error, got %v", err)
	}
	t.Setenv("DB_DIALECT", "sqlite")
	t.Setenv("MIN_PLAYERS", "1")
	if _, err := LoadFiles(); err == nil || !strings.Contains(err.Error(), "MIN_PLAYERS") {
		t.Fatalf("expected min players error, got %v", err)
	}
	t.Setenv("MIN_PLAYERS", "two")
	if _, err := LoadFiles(); err == nil {
		t.Fatalf("expected parse error")
	}
}
