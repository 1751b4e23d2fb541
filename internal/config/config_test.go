package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9090"
  jwt_signing_key: secret
database:
  driver: sqlite
  sqlite_path: /tmp/contest.db
rate_limit:
  store: memory
  identifier:
    max_attempts: 2
    window: 10m
draw:
  max_attempts: 3
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "secret", conf.API.JWTSigningKey)
	assert.Equal(t, DriverSQLite, conf.Database.Driver)
	assert.Equal(t, StoreMemory, conf.RateLimit.Store)
	assert.Equal(t, 2, conf.RateLimit.Identifier.MaxAttempts)
	assert.Equal(t, 10*time.Minute, conf.RateLimit.Identifier.Window)
	assert.Equal(t, 10, conf.RateLimit.Address.MaxAttempts)
	assert.Equal(t, time.Hour, conf.RateLimit.Address.Window)
	assert.Equal(t, 3, conf.Draw.MaxAttempts)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", conf.API.Port)
	assert.Equal(t, DriverPostgres, conf.Database.Driver)
	assert.Equal(t, 1, conf.RateLimit.Identifier.MaxAttempts)
	assert.Equal(t, 5*time.Minute, conf.RateLimit.Identifier.Window)
	assert.Equal(t, 5, conf.Draw.MaxAttempts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "7070")
	t.Setenv("RATE_LIMIT_ADDRESS_MAX_ATTEMPTS", "25")

	conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "7070", conf.API.Port)
	assert.Equal(t, 25, conf.RateLimit.Address.MaxAttempts)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown store", "rate_limit:\n  store: etcd\n"},
		{"unknown driver", "database:\n  driver: mysql\n"},
		{"negative attempts", "rate_limit:\n  identifier:\n    max_attempts: -1\n"},
		{"zero window", "rate_limit:\n  address:\n    window: 0s\n"},
		{"zero draw attempts", "draw:\n  max_attempts: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
