package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()
	if c.DataBackend != "memory" {
		t.Fatalf("expected default backend memory, got %q", c.DataBackend)
	}
	if c.SQLiteDBPath != "./data/tuition.db" {
		t.Fatalf("unexpected default db path %q", c.SQLiteDBPath)
	}
	if c.ReportCacheSize != 24 || c.ReportCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache defaults: %d %v", c.ReportCacheSize, c.ReportCacheTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", "/tmp/x.db")
	t.Setenv("REPORT_CACHE_SIZE", "50")
	t.Setenv("REPORT_CACHE_TTL", "30s")

	c := Load()
	if c.DataBackend != "sqlite" || c.SQLiteDBPath != "/tmp/x.db" {
		t.Fatalf("env not picked up: %+v", c)
	}
	if c.ReportCacheSize != 50 || c.ReportCacheTTL != 30*time.Second {
		t.Fatalf("cache env not picked up: %d %v", c.ReportCacheSize, c.ReportCacheTTL)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("REPORT_CACHE_SIZE", "many")
	t.Setenv("REPORT_CACHE_TTL", "soon")

	c := Load()
	if c.ReportCacheSize != 24 || c.ReportCacheTTL != 5*time.Minute {
		t.Fatalf("malformed env should fall back to defaults: %d %v", c.ReportCacheSize, c.ReportCacheTTL)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults valid", func(c *Config) {}, ""},
		{"bad backend", func(c *Config) { c.DataBackend = "postgres" }, "invalid data backend"},
		{"sqlite without path", func(c *Config) {
			c.DataBackend = "sqlite"
			c.SQLiteDBPath = ""
		}, "database path cannot be empty"},
		{"cache size too small", func(c *Config) { c.ReportCacheSize = 0 }, "must be at least 1"},
		{"cache size too large", func(c *Config) { c.ReportCacheSize = 1001 }, "must be at most 1000"},
		{"ttl too short", func(c *Config) { c.ReportCacheTTL = 500 * time.Millisecond }, "must be at least 1 second"},
		{"ttl too long", func(c *Config) { c.ReportCacheTTL = 25 * time.Hour }, "must be at most 24 hours"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Load()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateCreatesDBDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	c := Load()
	c.DataBackend = "sqlite"
	c.SQLiteDBPath = filepath.Join(dir, "tuition.db")
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
