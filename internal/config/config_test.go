package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wrenchat/wren/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WREN_HOME_DIR", t.TempDir())
	t.Setenv("WREN_SERVER_URL", "")
	t.Setenv("DEBUG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", cfg.ServerURL)
	require.Equal(t, DefaultPollInterval, cfg.PollInterval)
	require.Equal(t, DefaultPingInterval, cfg.PingInterval)
	require.Equal(t, logger.LevelInfo, cfg.LogLevel)
	require.Equal(t, filepath.Join(cfg.WrenHome, "access.key"), cfg.AccessKey)
}

func TestLoadConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("WREN_HOME_DIR", home)
	t.Setenv("WREN_SERVER_URL", "")

	yaml := "server_url: https://chat.example.com\npoll_interval: 5s\nping_interval: 45s\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://chat.example.com", cfg.ServerURL)
	require.Equal(t, 5*time.Second, cfg.PollInterval)
	require.Equal(t, 45*time.Second, cfg.PingInterval)
	require.Equal(t, logger.LevelDebug, cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("WREN_HOME_DIR", home)
	t.Setenv("WREN_SERVER_URL", "http://env.example.com")
	t.Setenv("WREN_POLL_INTERVAL", "2s")

	yaml := "server_url: https://file.example.com\npoll_interval: 5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yaml), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://env.example.com", cfg.ServerURL)
	require.Equal(t, 2*time.Second, cfg.PollInterval)
}

func TestInvalidDurationRejected(t *testing.T) {
	t.Setenv("WREN_HOME_DIR", t.TempDir())
	t.Setenv("WREN_POLL_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
}
