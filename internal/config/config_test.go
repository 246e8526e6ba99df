package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
project:
  input: ./src
  output: ./out
render:
  mode: frontend
  hide_description: true
  docs_alert: true
scan:
  ignored: [Generated]
  workers: 8
storage:
  path: ops.db
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./src", cfg.Project.Input)
	assert.Equal(t, "./out", cfg.Project.Output)
	assert.Equal(t, ModeFrontend, cfg.Render.Mode)
	assert.True(t, cfg.Render.HideDescription)
	assert.True(t, cfg.Render.DocsAlert)
	assert.False(t, cfg.Render.HTML)
	assert.Equal(t, []string{"Generated"}, cfg.Scan.Ignored)
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.Equal(t, "ops.db", cfg.Storage.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "render:\n  html: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Render.HTML)
	assert.Equal(t, ModeBackend, cfg.Render.Mode)
	assert.Equal(t, 4, cfg.Scan.Workers)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NotNil(t, cfg)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ODATADOC_MODE", "FRONTEND")
	t.Setenv("ODATADOC_WORKERS", "2")
	t.Setenv("ODATADOC_DOCS_ALERT", "true")

	cfg, err := LoadConfig(writeConfig(t, "render:\n  mode: backend\n"))
	require.NoError(t, err)
	assert.Equal(t, ModeFrontend, cfg.Render.Mode)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.True(t, cfg.Render.DocsAlert)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "render: [unclosed\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Render.Mode = "pdf"
	assert.ErrorContains(t, cfg.Validate(), "unknown render mode")

	cfg = Default()
	cfg.Scan.Workers = 0
	assert.ErrorContains(t, cfg.Validate(), "workers")
}
