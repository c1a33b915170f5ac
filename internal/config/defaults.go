package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			RedirectPort:      8888,
			BaseURL:           "https://www.googleapis.com/youtube/v3",
			RequestsPerSecond: 5,
		},
		Player: PlayerConfig{
			Command: "mpv",
			Args:    []string{"--no-video", "--really-quiet"},
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:3000",
			BaseURL:        "http://127.0.0.1:3000",
			SessionBackend: "memory",
			SessionTTL:     7 * 24 * 3600,
			SQLitePath:     defaultSQLitePath(),
			RedisAddr:      "127.0.0.1:6379",
			RateLimit:      120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vibe-sessions.db"
	}
	return filepath.Join(dir, "vibe", "sessions.db")
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// YouTube
	if c.YouTube.RedirectPort == 0 {
		c.YouTube.RedirectPort = d.YouTube.RedirectPort
	}
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = d.YouTube.BaseURL
	}
	if c.YouTube.RequestsPerSecond == 0 {
		c.YouTube.RequestsPerSecond = d.YouTube.RequestsPerSecond
	}

	// Player
	if c.Player.Command == "" {
		c.Player.Command = d.Player.Command
		if c.Player.Args == nil {
			c.Player.Args = d.Player.Args
		}
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://" + c.Server.Addr
	}
	if c.Server.SessionBackend == "" {
		c.Server.SessionBackend = d.Server.SessionBackend
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = d.Server.SessionTTL
	}
	if c.Server.SQLitePath == "" {
		c.Server.SQLitePath = d.Server.SQLitePath
	}
	if c.Server.RedisAddr == "" {
		c.Server.RedisAddr = d.Server.RedisAddr
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = d.Server.RateLimit
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
