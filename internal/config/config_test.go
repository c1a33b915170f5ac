package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[youtube]
client_id = "abc.apps.googleusercontent.com"

[server]
session_backend = "sqlite"
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.YouTube.ClientID != "abc.apps.googleusercontent.com" {
		t.Errorf("ClientID = %q", cfg.YouTube.ClientID)
	}
	if cfg.YouTube.RedirectPort != 8888 {
		t.Errorf("RedirectPort = %d, want 8888", cfg.YouTube.RedirectPort)
	}
	if cfg.Server.SessionBackend != "sqlite" {
		t.Errorf("SessionBackend = %q, want sqlite", cfg.Server.SessionBackend)
	}
	if cfg.Player.Command != "mpv" {
		t.Errorf("Player.Command = %q, want mpv", cfg.Player.Command)
	}
	if !cfg.Player.AutoplayEnabled() {
		t.Error("AutoplayEnabled() = false, want true by default")
	}
	if cfg.Server.BaseURL != "http://127.0.0.1:3000" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIBE_CLIENT_ID", "from-env")
	t.Setenv("VIBE_SESSION_BACKEND", "redis")
	t.Setenv("VIBE_LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	if cfg.YouTube.ClientID != "from-env" {
		t.Errorf("ClientID = %q, want from-env", cfg.YouTube.ClientID)
	}
	if cfg.Server.SessionBackend != "redis" {
		t.Errorf("SessionBackend = %q, want redis", cfg.Server.SessionBackend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"bad backend", func(c *Config) { c.Server.SessionBackend = "etcd" }, "invalid session_backend"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad base url scheme", func(c *Config) { c.YouTube.BaseURL = "ftp://example.com" }, "must be http or https"},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, "rate_limit"},
		{"empty player", func(c *Config) { c.Player.Command = "" }, "command must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.YouTube.ClientID = "saved-id"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.YouTube.ClientID != "saved-id" {
		t.Errorf("ClientID = %q, want saved-id", loaded.YouTube.ClientID)
	}
}
