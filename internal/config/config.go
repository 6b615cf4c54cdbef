package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	CORS     CORSConfig     `mapstructure:"cors" yaml:"cors"`
	WS       WSConfig       `mapstructure:"ws" yaml:"ws"`
	Presence PresenceConfig `mapstructure:"presence" yaml:"presence"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	Journal  JournalConfig  `mapstructure:"journal" yaml:"journal"`
	LiveKit  LiveKitConfig  `mapstructure:"livekit" yaml:"livekit"`
}

// LogConfig selects verbosity and output format (console or json).
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CORSConfig lists browser origins allowed to call the server. "*" allows any.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// WSConfig tunes WebSocket connections.
type WSConfig struct {
	MaxMessageBytes    int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	ClientBuffer       int   `mapstructure:"client_buffer" yaml:"client_buffer"`
	RateLimitPerMinute int   `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
}

// PresenceConfig controls how a taken display name can be reclaimed.
type PresenceConfig struct {
	ReconnectPolicy string `mapstructure:"reconnect_policy" yaml:"reconnect_policy"`
}

// SessionConfig configures reconnect tokens. Tokens are issued when Enabled is
// set or the reconnect policy is "token".
type SessionConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Secret  string        `mapstructure:"secret" yaml:"secret"`
	Issuer  string        `mapstructure:"issuer" yaml:"issuer"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// JournalConfig points at the SQLite room journal. Empty path disables it.
type JournalConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LiveKitConfig holds credentials for issuing media join tokens.
type LiveKitConfig struct {
	URL       string `mapstructure:"url" yaml:"url"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	APISecret string `mapstructure:"api_secret" yaml:"api_secret"`
}

// Enabled reports whether all LiveKit settings are present.
func (l LiveKitConfig) Enabled() bool {
	return l.URL != "" && l.APIKey != "" && l.APISecret != ""
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":3001",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "https://panger-chat.netlify.app"},
		},
		WS: WSConfig{
			MaxMessageBytes: 1 << 20,
			ClientBuffer:    64,
		},
		Presence: PresenceConfig{ReconnectPolicy: "name"},
		Session: SessionConfig{
			Issuer: "securecomm",
			TTL:    24 * time.Hour,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if len(other.CORS.AllowedOrigins) > 0 {
		c.CORS.AllowedOrigins = other.CORS.AllowedOrigins
	}
	if other.Presence.ReconnectPolicy != "" {
		c.Presence.ReconnectPolicy = other.Presence.ReconnectPolicy
	}
	if other.Journal.Path != "" {
		c.Journal.Path = other.Journal.Path
	}
}

// Validate checks values that cannot be fixed up with a default.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	switch c.Presence.ReconnectPolicy {
	case "", "name", "token":
	default:
		return fmt.Errorf("presence.reconnect_policy: unknown policy %q", c.Presence.ReconnectPolicy)
	}
	if c.WS.MaxMessageBytes < 0 || c.WS.ClientBuffer < 0 || c.WS.RateLimitPerMinute < 0 {
		return fmt.Errorf("ws: limits must not be negative")
	}
	lk := c.LiveKit
	if (lk.URL != "" || lk.APIKey != "" || lk.APISecret != "") && !lk.Enabled() {
		return fmt.Errorf("livekit: url, api_key and api_secret must be set together")
	}
	return nil
}

// SessionsEnabled reports whether reconnect tokens should be issued.
func (c *Config) SessionsEnabled() bool {
	return c.Session.Enabled || c.Presence.ReconnectPolicy == "token"
}
