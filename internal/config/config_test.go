package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, int64(65536), cfg.WebSocket.MaxMessageSize)
	assert.Equal(t, "lumendocs", cfg.Auth.Issuer)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "document", cfg.Presence.KeyPrefix)
	assert.Equal(t, 3*time.Second, cfg.Presence.OpTimeout)
	assert.False(t, cfg.Presence.PerConnection)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "document-events", cfg.Kafka.Topic)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "collab-service", cfg.Log.ServiceName)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("REDIS_ADDRESS", "redis:6380")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
	assert.Equal(t, "redis:6380", cfg.Redis.Address)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}
