package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LISTEN_ADDR", "DATABASE_URL", "JWT_SECRET", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "parcelflow.yml")
	raw := []byte("listen: \":8080\"\ndatabase_url: postgres://localhost/parcelflow\njwt_secret: sekrit\nlog_level: debug\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected listen :8080, got %q", cfg.Listen)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "parcelflow.yml")
	raw := []byte("database_url: postgres://file/db\njwt_secret: from-file\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Errorf("expected env to win, got %q", cfg.DatabaseURL)
	}
	if cfg.JWTSecret != "from-file" {
		t.Errorf("expected file value to survive, got %q", cfg.JWTSecret)
	}
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "sekrit")

	cfg, err := Load(filepath.Join(t.TempDir(), "nothing.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":3000" {
		t.Errorf("expected default listen, got %q", cfg.Listen)
	}
}

func TestLoad_RequiresDatabaseAndSecret(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nothing.yml")); err == nil {
		t.Fatalf("expected error without database url")
	}

	t.Setenv("DATABASE_URL", "postgres://env/db")
	if _, err := Load(filepath.Join(t.TempDir(), "nothing.yml")); err == nil {
		t.Fatalf("expected error without jwt secret")
	}
}
