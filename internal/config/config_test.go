package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APPROVAL_COUNTING", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("PROFILE_CACHE_TTL", "")

	cfg, err := Load(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "sides", cfg.ApprovalCounting)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "league.events", cfg.Kafka.Topic)
	assert.Zero(t, cfg.ProfileCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("APPROVAL_COUNTING", "count")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOCK_TTL", "2s")

	cfg, err := Load(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "count", cfg.ApprovalCounting)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Second, cfg.Redis.LockTTL)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load(logger.Nop())
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("APPROVAL_COUNTING", "majority")
	_, err = Load(logger.Nop())
	assert.Error(t, err)
}
