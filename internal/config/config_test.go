package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Inventory Management API", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "json", cfg.Storage.Driver)
	assert.Equal(t, "inventory.json", cfg.Storage.DatabaseFile)
	assert.Equal(t, "/docs", cfg.Docs.URL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.BanDuration)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	content := `
server:
  port: 9090
  cors_origins:
    - http://localhost:3000
storage:
  database_file: data/catalog.json
rate_limit:
  ban_duration: 1h
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "data/catalog.json", cfg.Storage.DatabaseFile)
	assert.Equal(t, time.Hour, cfg.RateLimit.BanDuration)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("INVENTORY_SERVER_PORT", "7070")
	t.Setenv("INVENTORY_STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/catalog", cfg.Storage.DatabaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Server.Port = 0
	cfg.Storage.Driver = "sqlite"
	cfg.Docs.URL = "docs"
	cfg.RateLimit.RequestsPerSecond = 0
	cfg.Log.Format = "xml"

	err = cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"server.port", "storage.driver", "docs.url", "rate_limit.requests_per_second", "log.format"} {
		assert.Contains(t, err.Error(), key)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
