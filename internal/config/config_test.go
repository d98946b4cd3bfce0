package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sketch.png", cfg.Export.FileName)
	assert.Equal(t, 250.0, cfg.Editor.ImageLeft)
	assert.Equal(t, 0.2, cfg.Editor.ImageScale)
	assert.Equal(t, 3.0, cfg.Editor.BrushWidth)
	assert.Equal(t, 1980, cfg.Catalog.FirstYear)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
catalog:
  base_url: https://catalog.example.com/api
editor:
  zoom_min: 0.5
  zoom_max: 4
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://catalog.example.com/api", cfg.Catalog.BaseURL)
	assert.Equal(t, 0.5, cfg.Editor.ZoomMin)
	assert.Equal(t, 4.0, cfg.Editor.ZoomMax)
	// untouched keys keep defaults
	assert.Equal(t, 0.2, cfg.Editor.ZoomStep)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))
	t.Setenv("TINTCARE_CATALOG_BASE_URL", "http://env.example/api")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/api", cfg.Catalog.BaseURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidZoom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("editor:\n  zoom_min: 5\n  zoom_max: 1\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "zoom bounds")
}
