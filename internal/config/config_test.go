package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "postgres://localhost/app"
  migrations: "file:///opt/app/migrations"
server:
  port: ":9090"
llm:
  model: "gpt-4o-mini"
  min_interval_seconds: 1.5
  batch_size: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", cfg.Database.URL)
	assert.Equal(t, "file:///opt/app/migrations", cfg.MigrationsURL())
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.LLM.BatchSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.MinInterval())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestMigrationsURLDefault(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "postgres://localhost/app"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file://migrations", cfg.MigrationsURL())
}
