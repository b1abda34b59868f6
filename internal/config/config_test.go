package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEWS_CONFIG", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Content.DefaultPageSize != 100 || cfg.Content.MaxPageSize != 100 {
		t.Errorf("unexpected page sizes: %+v", cfg.Content)
	}
	if cfg.Content.SearchScanLimit != 1000 {
		t.Errorf("SearchScanLimit = %d, want 1000", cfg.Content.SearchScanLimit)
	}
	if cfg.Rankings.Size != 20 {
		t.Errorf("Rankings.Size = %d, want 20", cfg.Rankings.Size)
	}
	if cfg.Auth.SessionCookie != "sid" {
		t.Errorf("SessionCookie = %q, want sid", cfg.Auth.SessionCookie)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.yaml")
	content := `
server:
  port: "9090"
  cors_origins: ["https://example.in"]
database:
  driver: sqlite
  sqlite_path: /tmp/news.db
rankings:
  interval: 1m
  size: 10
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RANKINGS_SIZE", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://example.in" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.SQLitePath != "/tmp/news.db" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Rankings.Interval != time.Minute || cfg.Rankings.Size != 10 {
		t.Errorf("unexpected rankings config: %+v", cfg.Rankings)
	}
	// env overrides the file
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	// untouched sections keep their defaults
	if cfg.Content.WordsPerMinute != 200 {
		t.Errorf("WordsPerMinute = %d, want 200", cfg.Content.WordsPerMinute)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"postgres without host", func(c *Config) { c.Database.Host = "" }, true},
		{"sqlite without path", func(c *Config) { c.Database.Driver = "sqlite"; c.Database.SQLitePath = "" }, true},
		{"default above max", func(c *Config) { c.Content.DefaultPageSize = 200 }, true},
		{"zero ranking size", func(c *Config) { c.Rankings.Size = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetListEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.in , ,https://b.in")
	got := getListEnv("CORS_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.in" || got[1] != "https://b.in" {
		t.Errorf("getListEnv() = %v", got)
	}
}
