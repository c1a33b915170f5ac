package config

// Config is the root configuration structure.
type Config struct {
	YouTube YouTubeConfig `toml:"youtube"`
	Player  PlayerConfig  `toml:"player"`
	Server  ServerConfig  `toml:"server"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// YouTubeConfig holds Google OAuth and YouTube Data API settings.
type YouTubeConfig struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	RedirectPort      int     `toml:"redirect_port"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// PlayerConfig holds settings for the external media player.
type PlayerConfig struct {
	Command  string   `toml:"command"`
	Args     []string `toml:"args"`
	Autoplay *bool    `toml:"autoplay"`
}

// AutoplayEnabled reports whether loaded items start playing immediately.
func (c *PlayerConfig) AutoplayEnabled() bool {
	return c.Autoplay == nil || *c.Autoplay
}

// ServerConfig holds settings for `vibe serve`.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	BaseURL        string `toml:"base_url"`
	SessionBackend string `toml:"session_backend"`
	// SessionTTL is in seconds.
	SessionTTL int    `toml:"session_ttl"`
	SQLitePath string `toml:"sqlite_path"`
	RedisAddr  string `toml:"redis_addr"`
	RedisDB    int    `toml:"redis_db"`
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int `toml:"rate_limit"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	ShowVibeBadges *bool `toml:"show_vibe_badges"`
}

// BadgesEnabled reports whether the song list shows vibe badges.
func (c *TUIConfig) BadgesEnabled() bool {
	return c.ShowVibeBadges == nil || *c.ShowVibeBadges
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}
