package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8000" {
		t.Errorf("Expected port 8000, got %s", cfg.Server.Port)
	}
	if !cfg.Seed.Enabled || !cfg.Notify.Enabled || !cfg.Metrics.Enabled {
		t.Errorf("Expected seed, notify and metrics enabled by default: %+v", cfg)
	}
	if cfg.RateLimit.TransitionsPerMin != 120 {
		t.Errorf("Expected 120 transitions/min, got %d", cfg.RateLimit.TransitionsPerMin)
	}
}

func TestLoadFromEnvAndSecretFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	secret := filepath.Join(dir, "jwt_secret")
	if err := os.WriteFile(secret, []byte("s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", secret)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SEED_ENABLED", "false")
	t.Setenv("RATELIMIT_MOVEMENTS_PER_MIN", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Errorf("Expected secret from file, got %q", cfg.JWT.Secret)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Server.LogLevel)
	}
	if cfg.Seed.Enabled {
		t.Error("Expected seed disabled")
	}
	if cfg.RateLimit.MovementsPerMin != 5 {
		t.Errorf("Expected 5 movements/min, got %d", cfg.RateLimit.MovementsPerMin)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_ADDR=redis.internal:6380\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("Expected redis addr from .env, got %s", cfg.Redis.Addr)
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for default JWT secret in production")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
