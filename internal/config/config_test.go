package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Expected default driver %s, got %s", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.MaxOpenConns != 1 {
		t.Errorf("Expected 1 open conn for sqlite, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Feed.DefaultSource != "react-native" {
		t.Errorf("Expected default source react-native, got %s", cfg.Feed.DefaultSource)
	}
	if cfg.Feed.DefaultMaxItems != 10 {
		t.Errorf("Expected 10 default max items, got %d", cfg.Feed.DefaultMaxItems)
	}
	if cfg.Save.DefaultUserID != "1" {
		t.Errorf("Expected sentinel user id 1, got %s", cfg.Save.DefaultUserID)
	}
	if cfg.Extraction.Mode != ModeLocal || cfg.Feed.Mode != ModeLocal {
		t.Errorf("Expected local modes, got %s/%s", cfg.Extraction.Mode, cfg.Feed.Mode)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("EXTRACTOR_MODE", "remote")
	t.Setenv("EXTRACTOR_ENDPOINT", "http://parser/api/parse-url")
	t.Setenv("EXTRACTOR_TIMEOUT", "3s")
	t.Setenv("FEED_DEFAULT_MAX_ITEMS", "20")
	t.Setenv("SAVE_STRIP_TRACKING", "true")
	t.Setenv("SAVE_WORKERS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected 25 open conns for postgres, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Extraction.Timeout != 3*time.Second {
		t.Errorf("Expected 3s timeout, got %v", cfg.Extraction.Timeout)
	}
	if cfg.Feed.DefaultMaxItems != 20 {
		t.Errorf("Expected 20 max items, got %d", cfg.Feed.DefaultMaxItems)
	}
	if !cfg.Save.StripTracking {
		t.Error("Expected StripTracking to be enabled")
	}
	// Invalid values fall back to defaults
	if cfg.Save.Workers != 4 {
		t.Errorf("Expected default 4 workers, got %d", cfg.Save.Workers)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:   DatabaseConfig{Driver: DriverSQLite, Path: "test.db"},
			Extraction: ExtractionConfig{Mode: ModeLocal},
			Feed:       FeedConfig{Mode: ModeLocal, DefaultMaxItems: 10, MaxItemsLimit: 100},
			Save:       SaveConfig{DefaultUserID: "1", Workers: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "DB_PATH"},
		{name: "remote extractor without endpoint", mutate: func(c *Config) { c.Extraction.Mode = ModeRemote }, wantErr: "EXTRACTOR_MODE"},
		{name: "unknown feed mode", mutate: func(c *Config) { c.Feed.Mode = "magic" }, wantErr: "FEED_MODE"},
		{name: "zero max items", mutate: func(c *Config) { c.Feed.DefaultMaxItems = 0 }, wantErr: "FEED_DEFAULT_MAX_ITEMS"},
		{name: "limit below default", mutate: func(c *Config) { c.Feed.MaxItemsLimit = 5 }, wantErr: "FEED_MAX_ITEMS_LIMIT"},
		{name: "no workers", mutate: func(c *Config) { c.Save.Workers = 0 }, wantErr: "SAVE_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/x.db"}
	if dsn := sqlite.GetDSN(); !strings.HasPrefix(dsn, "file:/tmp/x.db?") {
		t.Errorf("Unexpected sqlite DSN: %s", dsn)
	}

	pg := DatabaseConfig{Driver: DriverPostgres, Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=n sslmode=disable"
	if dsn := pg.GetDSN(); dsn != want {
		t.Errorf("Expected %q, got %q", want, dsn)
	}
}
