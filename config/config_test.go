package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
jwt:
  secret: s3cret
database:
  driver: postgres
  host: db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, 168, cfg.JWT.ExpireHours)
	assert.Equal(t, "skillx:notifications", cfg.Queue.NotificationQueue)
	assert.Equal(t, 5, cfg.Matching.MinCacheSize)
	assert.Equal(t, 10, cfg.Matching.MaxResults)
	assert.Equal(t, 150, cfg.Matching.CandidateSampleSize)
	assert.Equal(t, 100, cfg.Skillcoins.SignupBonus)
	assert.Equal(t, "@hourly", cfg.Cron.MatchCacheSpec)
	assert.Zero(t, cfg.Cron.MatchCacheTTLHours)
}

func TestLoad_LocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "jwt:\n  secret: committed\n")
	writeConfig(t, dir, "config.local.yaml", "jwt:\n  secret: local\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.JWT.Secret)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "server:\n  port: 8080\n")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RepoConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}
