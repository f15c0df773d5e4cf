package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName        = "notibus"
	configFileName = "config.toml"
	localFileName  = "notibus.toml"
)

type Config struct {
	Bus          string   `koanf:"bus"`           // "system" (default) or "session"
	AdminGroups  []string `koanf:"admin_groups"`  // groups whose members count as admins (default: sudo)
	AppName      string   `koanf:"app_name"`      // app_name passed to the notification service
	DesktopEntry string   `koanf:"desktop_entry"` // desktop-entry hint
	LogLevel     string   `koanf:"log_level"`     // debug, info, warn, error

	// Receiver delivery log
	History HistoryConfig `koanf:"history"`

	// Sender CLI defaults
	Send SendConfig `koanf:"send"`
}

// HistoryConfig controls the receiver's delivery log.
type HistoryConfig struct {
	Enabled    *bool  `koanf:"enabled"`     // default: true
	Path       string `koanf:"path"`        // default: $XDG_DATA_HOME/notibus/history.db
	MaxEntries int    `koanf:"max_entries"` // rows kept (default: 1000)
}

// SendConfig holds defaults for notibus-send flags.
type SendConfig struct {
	Urgency string `koanf:"urgency"` // default: normal
	Icon    string `koanf:"icon"`    // default: dialog-information
	Timeout *int32 `koanf:"timeout"` // ms (default: 5000)
}

// Load reads configuration. When path is non-empty only that file is read
// and it must exist; otherwise the standard locations are tried in order
// and missing files are skipped.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(expandPath(path)), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else {
		for _, p := range getConfigPaths() {
			if _, err := os.Stat(p); err == nil {
				if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
					return nil, fmt.Errorf("load %s: %w", p, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Bus == "" {
		c.Bus = "system"
	}
	if len(c.AdminGroups) == 0 {
		c.AdminGroups = []string{"sudo"}
	}
	if c.AppName == "" {
		c.AppName = appName
	}
	if c.DesktopEntry == "" {
		c.DesktopEntry = c.AppName
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.History.Enabled == nil {
		enabled := true
		c.History.Enabled = &enabled
	}
	c.History.Path = expandPath(c.History.Path)
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = 1000
	}

	if c.Send.Urgency == "" {
		c.Send.Urgency = "normal"
	}
	if c.Send.Icon == "" {
		c.Send.Icon = "dialog-information"
	}
	if c.Send.Timeout == nil {
		timeout := int32(5000)
		c.Send.Timeout = &timeout
	}
}

// HistoryEnabled reports whether the receiver should keep a delivery log.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// SendTimeout returns the default notification timeout in milliseconds.
func (c *Config) SendTimeout() int32 {
	if c.Send.Timeout == nil {
		return 5000
	}
	return *c.Send.Timeout
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, errors.New("invalid log_level " + c.LogLevel)
	}
	return level, nil
}

// getConfigPaths returns candidate files, lowest priority first.
func getConfigPaths() []string {
	paths := []string{}

	// 1. system-wide: /etc/xdg/notibus/config.toml (last dir first so the
	// most important one wins)
	for i := len(xdg.ConfigDirs) - 1; i >= 0; i-- {
		paths = append(paths, filepath.Join(xdg.ConfigDirs[i], appName, configFileName))
	}

	// 2. ~/.config/notibus/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, configFileName))

	// 3. ./notibus.toml (pwd, highest priority)
	paths = append(paths, localFileName)

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
