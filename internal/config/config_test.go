package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Backend.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Upload.Debounce)
	assert.Equal(t, 3*time.Second, cfg.Upload.StatusTTL)
	assert.Equal(t, time.Second, cfg.Upload.RefreshDelay)
	assert.False(t, cfg.Upload.FollowUp)
	assert.Equal(t, 5*time.Minute, cfg.Sidebar.PollInterval)
	assert.True(t, cfg.UI.AltScreen)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docflow.yaml")
	content := []byte("backend:\n  url: http://files.local:8080/\nupload:\n  debounce: 250ms\n  follow_up: true\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("DOCFLOW_SIDEBAR_POLL_INTERVAL", "1m")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://files.local:8080", cfg.Backend.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Upload.Debounce)
	assert.True(t, cfg.Upload.FollowUp)
	assert.Equal(t, time.Minute, cfg.Sidebar.PollInterval)
}

func TestLoadRejectsZeroDebounce(t *testing.T) {
	t.Setenv("DOCFLOW_UPLOAD_DEBOUNCE", "0s")
	_, err := Load(viper.New(), "")
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
