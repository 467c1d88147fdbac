// Package config loads bugdrop settings from a YAML file, a .env file and
// BUGDROP_* environment variables, and writes the user-editable subset back.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
// BUGDROP_MONDAY_TOKEN sets monday.token, BUGDROP_BOARD_GROUP_ID sets board.group_id.
const EnvPrefix = "BUGDROP_"

// DefaultServerAddr is where the bridge listens unless configured.
const DefaultServerAddr = "127.0.0.1:7767"

// Config is the resolved configuration.
type Config struct {
	Monday    MondayConfig    `koanf:"monday"`
	Board     BoardConfig     `koanf:"board"`
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	History   HistoryConfig   `koanf:"history"`
	Telemetry TelemetryConfig `koanf:"telemetry"`

	// Path is the settings file the config was read from.
	Path string `koanf:"-"`
}

type MondayConfig struct {
	Token        string        `koanf:"token"`
	Endpoint     string        `koanf:"endpoint"`
	FileEndpoint string        `koanf:"file_endpoint"`
	APIVersion   string        `koanf:"api_version"`
	Timeout      time.Duration `koanf:"timeout"` // zero means no client timeout
}

type BoardConfig struct {
	ID      string `koanf:"id"`
	GroupID string `koanf:"group_id"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // console or json
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type HistoryConfig struct {
	Path string `koanf:"path"` // empty disables history
}

type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
}

// MondayToken returns the configured token. It lets *Config act as an
// auth.SettingsReader.
func (c *Config) MondayToken() string {
	return c.Monday.Token
}

// DefaultPath returns $XDG_CONFIG_HOME/bugdrop/config.yaml, falling back to
// the OS user config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate config directory: %w", err)
		}
	}
	return filepath.Join(dir, "bugdrop", "config.yaml"), nil
}

// DefaultHistoryPath places the history database next to the settings file.
func DefaultHistoryPath(settingsPath string) string {
	return filepath.Join(filepath.Dir(settingsPath), "history.db")
}

// Load reads path (or DefaultPath when empty), then .env, then environment
// overrides. A missing settings file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	// .env is optional and never overrides variables already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	setDefault(k, "monday.api_version", "2024-01")
	setDefault(k, "log.level", "info")
	setDefault(k, "log.format", "console")
	setDefault(k, "server.addr", DefaultServerAddr)
	setDefault(k, "history.path", DefaultHistoryPath(path))

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Path = path

	return &cfg, nil
}

// envKey maps BUGDROP_MONDAY_FILE_ENDPOINT to monday.file_endpoint: the first
// segment is the section, the rest is the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
