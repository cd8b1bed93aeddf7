package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "blog_events", cfg.EventsQueue)
	assert.False(t, cfg.RabbitMQEnabled)
	assert.Error(t, cfg.RequireSecret())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("RABBITMQ_ENABLED", "true")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "file::memory:", cfg.DatabaseDSN)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.RabbitMQEnabled)
	assert.NoError(t, cfg.RequireSecret())
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), "wanderlog.yaml")
	require.NoError(t, os.WriteFile(file, []byte("APP_PORT: \":9000\"\nLOG_LEVEL: debug\nEVENTS_QUEUE: from_file\n"), 0o600))
	t.Setenv("EVENTS_QUEUE", "from_env")

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.AppPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from_env", cfg.EventsQueue)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mysql")
		_, err := Load(viper.New(), "")
		assert.ErrorContains(t, err, "DATABASE_DRIVER")
	})
	t.Run("ttl", func(t *testing.T) {
		t.Setenv("JWT_TTL", "forever")
		_, err := Load(viper.New(), "")
		assert.ErrorContains(t, err, "JWT_TTL")
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
