package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)

	require.NoError(t, m.Load())

	// File exists afterwards and parses back to the defaults.
	_, err := os.Stat(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, "png", cfg.Output.Format)
	assert.Equal(t, 90, cfg.Output.Quality)
	assert.Equal(t, 25, cfg.Interaction.MinArea)
	assert.Equal(t, "wayland-capture", cfg.Capture.Binary)
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
output:
  dir: /tmp/shots
  format: jpg
  quality: 70
interaction:
  min_area: 100
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m := NewManager(path)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "/tmp/shots", cfg.Output.Dir)
	assert.Equal(t, "jpg", cfg.Output.Format)
	assert.Equal(t, 70, cfg.Output.Quality)
	assert.Equal(t, 100, cfg.Interaction.MinArea)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Unspecified fields keep their defaults.
	assert.Equal(t, 5, cfg.Interaction.JitterThreshold)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [not a map"), 0o644))

	m := NewManager(path)
	assert.Error(t, m.Load())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHOTFRAME_OUTPUT_DIR", "/var/shots")
	t.Setenv("SHOTFRAME_FORMAT", "jpg")
	t.Setenv("SHOTFRAME_QUALITY", "55")
	t.Setenv("SHOTFRAME_LOG_LEVEL", "warn")

	m := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "/var/shots", cfg.Output.Dir)
	assert.Equal(t, "jpg", cfg.Output.Format)
	assert.Equal(t, 55, cfg.Output.Quality)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestEnvOverrideIgnoresBadQuality(t *testing.T) {
	t.Setenv("SHOTFRAME_QUALITY", "high")

	m := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, m.Load())
	assert.Equal(t, 90, m.Get().Output.Quality)
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)
	require.NoError(t, m.Load())

	cfg := m.Get()
	cfg.Output.Format = "jpg"
	require.NoError(t, m.Update(&cfg))

	m2 := NewManager(path)
	require.NoError(t, m2.Load())
	assert.Equal(t, "jpg", m2.Get().Output.Format)
}
