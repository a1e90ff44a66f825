package config_test

import (
	"os"
	"slices"
	"testing"

	"github.com/mind-engage/mindengage-exams/internal/config"
)

// chdirTemp runs the test from an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestFromEnv_Defaults(t *testing.T) {
	chdirTemp(t)
	cfg := config.FromEnv()
	if cfg.Mode != config.ModeOffline || cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.LogLevel != "info" || !cfg.LogPretty {
		t.Fatalf("log defaults = %+v", cfg)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MODE", "ONLINE")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg := config.FromEnv()
	if cfg.Mode != config.ModeOnline || cfg.DBDriver != "postgres" || cfg.LogPretty {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.AdminPassword != "s3cret" {
		t.Fatalf("admin password not read")
	}
}

func TestFromEnv_DotEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(dir+"/.env", []byte("HTTP_ADDR=:9999\nMODE=bogus\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	cfg := config.FromEnv()
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if cfg.Mode != config.ModeOffline {
		t.Fatalf("unknown mode should fall back to offline, got %q", cfg.Mode)
	}
}
