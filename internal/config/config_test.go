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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
  name: tastelog-messaging
  port: 9090
database:
  host: db.internal
  port: 3306
  user: svc
  password: from-file
  name: tastelog
jwt:
  secret: file-secret
  expires_in: 12h
cors:
  allow_origins: "https://tastelog.app"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, time.Duration(cfg.JWT.ExpiresIn), 12*time.Hour)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: local
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.Duration(cfg.JWT.ExpiresIn), 24*time.Hour)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: file-secret
database:
  password: file-password
`)

	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DB_PASSWORD", "env-password")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env-password", cfg.Database.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
jwt:
  expires_in: soon
`)

	_, err := Load(path)
	assert.Error(t, err)
}
