package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wrenchat/wren/pkg/logger"
)

const (
	// DefaultPollInterval is the cadence of the per-collection refresh loops.
	DefaultPollInterval = 10 * time.Second
	// DefaultPingInterval is the cadence of the liveness ping while a token
	// is held. The server marks users offline after 60s of silence, so this
	// must stay well below that.
	DefaultPingInterval = 30 * time.Second
)

// Config holds the client configuration.
type Config struct {
	// ServerURL is the base URL of the chat server API.
	ServerURL string
	// WrenHome is the directory where wren stores local state.
	WrenHome string
	// AccessKey is the path to the saved access token file.
	AccessKey string

	// PollInterval is the refresh cadence for the user and message polls.
	PollInterval time.Duration
	// PingInterval is the liveness ping cadence while authenticated.
	PingInterval time.Duration

	// LogLevel is the logger threshold.
	LogLevel logger.Level
	// Debug enables verbose logging (shorthand for LogLevel=debug).
	Debug bool
}

// fileConfig mirrors the optional ~/.wren/config.yaml file.
type fileConfig struct {
	ServerURL    string `yaml:"server_url"`
	PollInterval string `yaml:"poll_interval"`
	PingInterval string `yaml:"ping_interval"`
	LogLevel     string `yaml:"log_level"`
}

// Load loads configuration from defaults, the optional config file, and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	wrenHome := os.Getenv("WREN_HOME_DIR")
	if wrenHome == "" {
		wrenHome = filepath.Join(homeDir, ".wren")
	}
	if err := os.MkdirAll(wrenHome, 0700); err != nil {
		return nil, fmt.Errorf("failed to create wren home: %w", err)
	}

	cfg := &Config{
		ServerURL:    "http://localhost:5000",
		WrenHome:     wrenHome,
		AccessKey:    filepath.Join(wrenHome, "access.key"),
		PollInterval: DefaultPollInterval,
		PingInterval: DefaultPingInterval,
		LogLevel:     logger.LevelInfo,
	}

	if err := cfg.applyFile(filepath.Join(wrenHome, "config.yaml")); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Debug && cfg.LogLevel > logger.LevelDebug {
		cfg.LogLevel = logger.LevelDebug
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.ServerURL != "" {
		c.ServerURL = fc.ServerURL
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval in %s: %w", path, err)
		}
		c.PollInterval = d
	}
	if fc.PingInterval != "" {
		d, err := time.ParseDuration(fc.PingInterval)
		if err != nil {
			return fmt.Errorf("invalid ping_interval in %s: %w", path, err)
		}
		c.PingInterval = d
	}
	if fc.LogLevel != "" {
		level, err := logger.ParseLevel(fc.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log_level in %s: %w", path, err)
		}
		c.LogLevel = level
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WREN_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("WREN_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid WREN_POLL_INTERVAL: %w", err)
		}
		c.PollInterval = d
	}
	if v := os.Getenv("WREN_PING_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid WREN_PING_INTERVAL: %w", err)
		}
		c.PingInterval = d
	}
	if v := os.Getenv("WREN_LOG_LEVEL"); v != "" {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("invalid WREN_LOG_LEVEL: %w", err)
		}
		c.LogLevel = level
	}
	if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		c.Debug = true
	}
	if v := os.Getenv("WREN_DEBUG"); v == "true" || v == "1" {
		c.Debug = true
	}
	return nil
}

// Save ensures the wren home directory exists.
func (c *Config) Save() error {
	return os.MkdirAll(c.WrenHome, 0700)
}
