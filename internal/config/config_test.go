package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTemp(t, "config.yaml", `
releases_dir: schemas
output_dir: build/model
format: yaml
validate: true
parallelism: 4
constraint: ">= 9.0"
log:
  level: debug
  format: json
renames:
  oldRequest: newRequest
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "schemas", cfg.ReleasesDir)
	assert.Equal(t, "build/model", cfg.OutputDir)
	assert.Equal(t, "yaml", cfg.Format)
	assert.True(t, cfg.Validate)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, ">= 9.0", cfg.Constraint)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)

	table := cfg.RenameTable()
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "newRequest", table.Canonical("oldRequest"))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeTemp(t, "empty.yaml", "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "cnpRequest", cfg.RenameTable().Canonical("litleRequest"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XSDFOLD_FORMAT", "yaml")
	t.Setenv("XSDFOLD_LOG_LEVEL", "debug")
	t.Setenv("XSDFOLD_VALIDATE", "true")

	cfg, err := LoadFromFile(writeTemp(t, "config.yaml", "format: json\n"))
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Validate)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile("")
	require.Error(t, err)
	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadRenameTable(t *testing.T) {
	pairs, err := LoadRenameTable(writeTemp(t, "renames.yaml", `
litleRequest: cnpRequest
litleOnlineResponse: cnpOnlineResponse
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"litleRequest":        "cnpRequest",
		"litleOnlineResponse": "cnpOnlineResponse",
	}, pairs)

	_, err = LoadRenameTable(writeTemp(t, "bad.yaml", "- not\n- a map\n"))
	require.Error(t, err)

	_, err = LoadRenameTable(writeTemp(t, "blank.yaml", `oldName: ""`+"\n"))
	require.Error(t, err)
}
