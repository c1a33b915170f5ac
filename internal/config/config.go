package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.viberc, $XDG_CONFIG_HOME/vibe/config.toml, ~/.config/vibe/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Path returns the config file in use, or the default location if none exists.
func Path() string {
	if p := findConfigFile(); p != "" {
		return p
	}
	return DefaultPath()
}

// DefaultPath returns $XDG_CONFIG_HOME/vibe/config.toml.
func DefaultPath() string {
	return filepath.Join(configDir(), "vibe", "config.toml")
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".viberc"))
	}
	paths = append(paths, DefaultPath())

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// YouTube
	if v := os.Getenv("VIBE_CLIENT_ID"); v != "" {
		cfg.YouTube.ClientID = v
	}
	if v := os.Getenv("VIBE_CLIENT_SECRET"); v != "" {
		cfg.YouTube.ClientSecret = v
	}
	if v := os.Getenv("VIBE_REDIRECT_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.YouTube.RedirectPort = i
		}
	}

	// Player
	if v := os.Getenv("VIBE_PLAYER_COMMAND"); v != "" {
		cfg.Player.Command = v
	}

	// Server
	if v := os.Getenv("VIBE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("VIBE_SESSION_BACKEND"); v != "" {
		cfg.Server.SessionBackend = v
	}
	if v := os.Getenv("VIBE_REDIS_ADDR"); v != "" {
		cfg.Server.RedisAddr = v
	}

	// Log
	if v := os.Getenv("VIBE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VIBE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
