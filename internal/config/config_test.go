package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// chdir moves into an empty directory so a stray .env cannot leak in.
func chdir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "2024-01", cfg.Monday.APIVersion)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, DefaultHistoryPath(path), cfg.History.Path)
	assert.Zero(t, cfg.Monday.Timeout)
	assert.Empty(t, cfg.MondayToken())
}

func TestLoad_File(t *testing.T) {
	chdir(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
monday:
  token: file-token
  endpoint: http://localhost:9000/v2
  timeout: 45s
board:
  id: "1829301"
  group_id: topics
log:
  level: debug
telemetry:
  enabled: true
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.MondayToken())
	assert.Equal(t, "http://localhost:9000/v2", cfg.Monday.Endpoint)
	assert.Equal(t, 45*time.Second, cfg.Monday.Timeout)
	assert.Equal(t, "1829301", cfg.Board.ID)
	assert.Equal(t, "topics", cfg.Board.GroupID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	chdir(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "monday:\n  token: file-token\nboard:\n  group_id: topics\n")

	t.Setenv("BUGDROP_MONDAY_TOKEN", "env-token")
	t.Setenv("BUGDROP_BOARD_GROUP_ID", "triaged")
	t.Setenv("BUGDROP_MONDAY_FILE_ENDPOINT", "http://files.local/v2")
	t.Setenv("BUGDROP_SERVER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Monday.Token)
	assert.Equal(t, "triaged", cfg.Board.GroupID)
	assert.Equal(t, "http://files.local/v2", cfg.Monday.FileEndpoint)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestLoad_DotEnv(t *testing.T) {
	chdir(t)
	writeFile(t, ".env", "BUGDROP_LOG_LEVEL=warn\n")
	t.Cleanup(func() { os.Unsetenv("BUGDROP_LOG_LEVEL") })

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	chdir(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "monday: [unclosed\n")

	_, err := Load(path)

	assert.Error(t, err)
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "bugdrop", "config.yaml"), path)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "monday.token", envKey("BUGDROP_MONDAY_TOKEN"))
	assert.Equal(t, "monday.api_version", envKey("BUGDROP_MONDAY_API_VERSION"))
	assert.Equal(t, "board.group_id", envKey("BUGDROP_BOARD_GROUP_ID"))
	assert.Equal(t, "telemetry.enabled", envKey("BUGDROP_TELEMETRY_ENABLED"))
}
