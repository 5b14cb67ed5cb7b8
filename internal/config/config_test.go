package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SPLITIFY_JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.Store != StoreSQLite || cfg.MongoDB != "splitify" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.ActivityRetryAttempts != 3 || cfg.ActivityRetryBackoff != 20*time.Millisecond {
		t.Errorf("unexpected retry defaults %+v", cfg)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SPLITIFY_JWT_SECRET=from-file\nSPLITIFY_STORE=memory\nSPLITIFY_PORT=9090\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// Real environment wins over the file
	t.Setenv("SPLITIFY_PORT", "7070")
	for _, k := range []string{"SPLITIFY_JWT_SECRET", "SPLITIFY_STORE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.JWTSecret != "from-file" || cfg.Store != StoreMemory {
		t.Errorf("expected values from file, got %+v", cfg)
	}
	if cfg.Port != 7070 {
		t.Errorf("expected environment to win, got port %d", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Port: 8080, Store: "sqlite", DBPath: "x.db", ActivityRetryAttempts: 3, QueryConcurrency: 4}
	}
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"memory", func(c *Config) { c.Store = " Memory " }, false},
		{"unknown store", func(c *Config) { c.Store = "postgres" }, true},
		{"mongo without uri", func(c *Config) { c.Store = "mongo" }, true},
		{"mongo with uri", func(c *Config) { c.Store = "mongo"; c.MongoURI = "mongodb://localhost" }, false},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }, true},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"no attempts", func(c *Config) { c.ActivityRetryAttempts = 0 }, true},
		{"no concurrency", func(c *Config) { c.QueryConcurrency = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.modify(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
