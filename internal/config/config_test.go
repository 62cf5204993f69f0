package config

import (
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mothergeo.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestRead(t *testing.T) {
	path := writeConfig(t, `
version: 1
models:
  - path: models/*.json
database:
  url: postgres://localhost/gis
  schema: gis
package:
  path: internal/entities
`)

	cfg, err := Read(path)
	assert.NoError(t, err)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, []Model{{Path: "models/*.json"}}, cfg.Models)
	assert.Equal(t, "postgres://localhost/gis", cfg.Database.URL)
	assert.Equal(t, "gis", cfg.Database.Schema)
	assert.Equal(t, "internal/entities", cfg.Package.Path)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
}

func TestReadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/gis
server:
  addr: ":9000"
`)

	t.Setenv(EnvDatabaseURL, "")
	t.Setenv(EnvDatabaseSchema, "staging")
	t.Setenv(EnvServerAddr, "127.0.0.1:8081")

	cfg, err := Read(path)
	assert.NoError(t, err)

	assert.Equal(t, "", cfg.Database.URL)
	assert.Equal(t, "staging", cfg.Database.Schema)
	assert.Equal(t, "127.0.0.1:8081", cfg.Server.Addr)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "mothergeo.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestReadInvalidYAML(t *testing.T) {
	_, err := Read(writeConfig(t, "models: {"))
	assert.ErrorContains(t, err, "failed to unmarshal config file")
}
