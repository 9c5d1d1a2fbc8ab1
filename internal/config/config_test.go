package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

var configKeys = []string{
	"ENVIRONMENT", "LOG_LEVEL", "CATALOG_PATH", "CATALOG_RELOAD_INTERVAL",
	"HTTP_HOST", "HTTP_PORT", "CORS_ALLOWED_ORIGINS", "DATABASE_URL",
	"TSCAT_DB_MIN_CONNS", "TSCAT_DB_MAX_CONNS",
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, configKeys...)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "local" || cfg.HTTPPort != 8090 || cfg.CatalogReloadInterval != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.RequireDatabase(); err == nil {
		t.Fatalf("expected missing DATABASE_URL to be reported")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	unsetEnv(t, configKeys...)
	t.Setenv("CATALOG_PATH", "i18n/app_fr.ts")
	t.Setenv("CATALOG_RELOAD_INTERVAL", "5s")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/tscat")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CatalogPath != "i18n/app_fr.ts" || cfg.CatalogReloadInterval != 5*time.Second || cfg.HTTPPort != 9000 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if err := cfg.RequireDatabase(); err != nil {
		t.Fatalf("require database: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{HTTPPort: 8090, DBMinConns: 1, DBMaxConns: 8}
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "negative interval", mutate: func(c *Config) { c.CatalogReloadInterval = -time.Second }, want: "CATALOG_RELOAD_INTERVAL"},
		{name: "port", mutate: func(c *Config) { c.HTTPPort = 70000 }, want: "HTTP_PORT"},
		{name: "max conns", mutate: func(c *Config) { c.DBMaxConns = 0 }, want: "TSCAT_DB_MAX_CONNS"},
		{name: "min above max", mutate: func(c *Config) { c.DBMinConns = 9 }, want: "cannot exceed"},
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
}

func TestCORSAllowedOriginsList(t *testing.T) {
	t.Parallel()

	cfg := &Config{CORSAllowedOrigins: " https://a.example ,https://b.example,,https://a.example"}
	got := cfg.CORSAllowedOriginsList()
	if strings.Join(got, "|") != "https://a.example|https://b.example" {
		t.Fatalf("unexpected origins: %v", got)
	}
}
