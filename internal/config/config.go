// Package config loads folio's user configuration from ~/.folio/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/asheshgoplani/folio/internal/logging"
)

// FileName is the TOML config file inside the folio directory.
const FileName = "config.toml"

// Config is the user-facing configuration.
type Config struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	Content ContentSettings `toml:"content"`
	Chat    ChatSettings    `toml:"chat"`
	Web     WebSettings     `toml:"web"`
	Logs    LogSettings     `toml:"logs"`
}

type ContentSettings struct {
	// Dir holds site.toml and posts/. Default: ~/.folio/content
	Dir string `toml:"dir"`

	// Watch reloads content when files change. Default: true
	Watch *bool `toml:"watch"`
}

// ChatSettings tunes the chat panel animation.
type ChatSettings struct {
	// AnimationMatch decides which animation names complete a transition:
	// "prefix" (default) accepts open-pill*/close-pill*, "exact" accepts only
	// the four desktop/mobile ids.
	AnimationMatch string `toml:"animation_match"`

	// OpenMS and CloseMS are the panel animation durations. Default: 320/240
	OpenMS  int `toml:"open_ms"`
	CloseMS int `toml:"close_ms"`

	// OverlayMS is the backdrop fade duration. Default: 200
	OverlayMS int `toml:"overlay_ms"`

	// FPS is the animation frame rate. Default: 30
	FPS int `toml:"fps"`

	// DesktopMinWidth is the terminal width at which the desktop animation
	// variant is used. Default: 100
	DesktopMinWidth int `toml:"desktop_min_width"`
}

type WebSettings struct {
	// Listen is the HTTP listen address. Default: 127.0.0.1:8420
	Listen string `toml:"listen"`

	// Token protects admin and push endpoints. Empty disables them.
	Token string `toml:"token"`

	// Push enables web push notifications for new contact messages.
	Push bool `toml:"push"`

	// PushSubject is the VAPID subject, e.g. "mailto:me@example.com"
	PushSubject string `toml:"push_subject"`

	// ContactPerMinute limits contact submissions per client. Default: 5
	ContactPerMinute int `toml:"contact_per_minute"`

	// TrackVisitors records hashed visitor IPs. Default: true
	TrackVisitors *bool `toml:"track_visitors"`

	// AllowedOrigins extends the websocket origin allowlist.
	AllowedOrigins []string `toml:"allowed_origins"`

	// TrustProxy takes the client address from X-Forwarded-For. Enable only
	// behind a reverse proxy.
	TrustProxy bool `toml:"trust_proxy"`
}

type LogSettings struct {
	// Level is the minimum log level: "debug", "info" (default), "warn", "error"
	Level string `toml:"level"`

	// Format is "json" (default) or "text"
	Format string `toml:"format"`

	// MaxMB is the size in MB at which folio.log rotates. Default: 10
	MaxMB int `toml:"max_mb"`

	// Backups is the number of rotated files kept. Default: 3
	Backups int `toml:"backups"`

	// RetentionDays bounds the age of rotated files. Default: 14
	RetentionDays int `toml:"retention_days"`

	// Compress gzips rotated files.
	Compress bool `toml:"compress"`

	// RingBufferMB is the in-memory buffer dumped on SIGUSR1. Default: 4
	RingBufferMB int `toml:"ring_buffer_mb"`

	// AggregateIntervalSecs batches high-frequency events. Default: 30
	AggregateIntervalSecs int `toml:"aggregate_interval_secs"`

	// PprofAddr serves net/http/pprof when set, e.g. "localhost:6060"
	PprofAddr string `toml:"pprof_addr"`

	// Enabled writes logs to disk without FOLIO_DEBUG.
	Enabled bool `toml:"enabled"`
}

var (
	cache   *Config
	cacheMu sync.RWMutex
)

// Dir returns the folio directory: $FOLIO_HOME, or ~/.folio.
func Dir() (string, error) {
	if home := os.Getenv("FOLIO_HOME"); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".folio"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load returns the cached config, reading it on first use. A missing file
// yields the defaults. A parse error is returned alongside the defaults so
// the caller can report it and carry on.
func Load() (*Config, error) {
	cacheMu.RLock()
	if cache != nil {
		defer cacheMu.RUnlock()
		return cache, nil
	}
	cacheMu.RUnlock()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cache != nil {
		return cache, nil
	}

	path, err := Path()
	if err != nil {
		cache = &Config{}
		return cache, nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		cache = &Config{}
		return cache, err
	}
	cache = cfg
	return cache, nil
}

// LoadFile reads path without touching the cache.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.toml parse error: %w", err)
	}
	return &cfg, nil
}

// Reload drops the cache and reads the file again.
func Reload() (*Config, error) {
	ClearCache()
	return Load()
}

// ClearCache forgets the cached config.
func ClearCache() {
	cacheMu.Lock()
	cache = nil
	cacheMu.Unlock()
}

// ThemeName returns the configured theme, "dark" when unset or unknown.
func (c *Config) ThemeName() string {
	switch c.Theme {
	case "dark", "light", "system":
		return c.Theme
	}
	return "dark"
}

// ResolveTheme resolves "system" to dark or light using the OS setting.
// Detection failures fall back to dark.
func (c *Config) ResolveTheme() string {
	theme := c.ThemeName()
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil || isDark {
		return "dark"
	}
	return "light"
}

// ContentDir returns the content directory with ~ expanded.
func (c *Config) ContentDir() string {
	if c.Content.Dir != "" {
		return expandHome(c.Content.Dir)
	}
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "content")
}

// WatchContent reports whether content changes should be watched.
func (c *Config) WatchContent() bool {
	return c.Content.Watch == nil || *c.Content.Watch
}

// ChatSettings returns chat settings with defaults applied.
func (c *Config) ChatSettings() ChatSettings {
	s := c.Chat
	if s.AnimationMatch == "" {
		s.AnimationMatch = "prefix"
	}
	if s.OpenMS <= 0 {
		s.OpenMS = 320
	}
	if s.CloseMS <= 0 {
		s.CloseMS = 240
	}
	if s.OverlayMS <= 0 {
		s.OverlayMS = 200
	}
	if s.FPS <= 0 {
		s.FPS = 30
	}
	if s.DesktopMinWidth <= 0 {
		s.DesktopMinWidth = 100
	}
	return s
}

// WebSettings returns web settings with defaults applied.
func (c *Config) WebSettings() WebSettings {
	s := c.Web
	if s.Listen == "" {
		s.Listen = "127.0.0.1:8420"
	}
	if s.ContactPerMinute <= 0 {
		s.ContactPerMinute = 5
	}
	if s.TrackVisitors == nil {
		on := true
		s.TrackVisitors = &on
	}
	return s
}

// Logging builds the logging configuration. FOLIO_DEBUG forces debug level.
func (c *Config) Logging() logging.Config {
	s := c.Logs
	debug := os.Getenv("FOLIO_DEBUG") != ""
	cfg := logging.Config{
		Level:                 s.Level,
		Format:                s.Format,
		MaxSizeMB:             s.MaxMB,
		MaxBackups:            s.Backups,
		MaxAgeDays:            s.RetentionDays,
		Compress:              s.Compress,
		RingBufferSize:        s.RingBufferMB * 1024 * 1024,
		AggregateIntervalSecs: s.AggregateIntervalSecs,
		PprofAddr:             s.PprofAddr,
		Debug:                 debug,
	}
	if debug && cfg.Level == "" {
		cfg.Level = "debug"
	}
	if debug || s.Enabled {
		if dir, err := Dir(); err == nil {
			cfg.LogDir = dir
		}
	}
	return cfg
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// CreateExample writes a commented example config if none exists.
func CreateExample() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(exampleConfig), 0o600)
}

const exampleConfig = `# folio configuration
# This file is loaded on startup.

# Color scheme: "dark" (default), "light", or "system"
# theme = "dark"

# [content]
# Directory holding site.toml and posts/*.md
# dir = "~/.folio/content"
# Reload when files change (default: true)
# watch = true

# [chat]
# Which animation names finish a panel transition: "prefix" or "exact"
# animation_match = "prefix"
# open_ms = 320
# close_ms = 240
# overlay_ms = 200
# fps = 30
# Terminal width at which the desktop animation is used
# desktop_min_width = 100

# [web]
# listen = "127.0.0.1:8420"
# Token for admin and push endpoints (empty disables them)
# token = ""
# push = false
# push_subject = "mailto:you@example.com"
# contact_per_minute = 5
# track_visitors = true
# allowed_origins = ["https://example.com"]
# trust_proxy = false

# [logs]
# enabled = false
# level = "info"
# format = "json"
# max_mb = 10
# backups = 3
# retention_days = 14
# ring_buffer_mb = 4
# pprof_addr = "localhost:6060"

# Mail is configured through the environment (or a .env file):
#   FOLIO_MAIL_PROVIDER=resend|smtp|log
#   RESEND_API_KEY, RECIPIENT_EMAIL, FOLIO_MAIL_FROM
#   SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS
`
