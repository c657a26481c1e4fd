package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-service/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.GRPCPort)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.Required)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "diary.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  http_port: 8181
database:
  driver: postgres
  url: postgres://file
cache:
  backend: disk
`), 0o644))

	t.Setenv("DIARY_DATABASE_URL", "postgres://env")
	t.Setenv("DIARY_AUTH_REQUIRED", "true")
	t.Setenv("DIARY_AUTH_TOKEN_TTL", "90m")

	cfg, err := config.Load(file)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.HTTPPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://env", cfg.Database.URL)
	assert.Equal(t, "disk", cfg.Cache.Backend)
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DIARY_DATABASE_DRIVER", "mysql")
	_, err := config.Load("")
	assert.ErrorContains(t, err, "database.driver")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvFilesDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DIARY_LOG_LEVEL=debug\nDIARY_SERVER_GRPC_PORT=9999\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("DIARY_SERVER_GRPC_PORT", "7070")
	// Registered so the variable is restored after godotenv sets it.
	t.Setenv("DIARY_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("DIARY_LOG_LEVEL"))

	config.LoadEnvFiles(filepath.Join(dir, ".env.local"), envFile)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7070, cfg.Server.GRPCPort)
}
