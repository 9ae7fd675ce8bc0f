package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRead_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DATABASE", "board")
	t.Setenv("POSTGRES_USERNAME", "board")
	t.Setenv("POSTGRES_PASSWORD", "secret")

	cfg := Read()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.ItemsPerPage)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.ViewStateTTL)
	assert.Equal(t, "@every 15m", cfg.ExpirySchedule)
	assert.Equal(t, "host=localhost port=5432 user=board password=secret dbname=board sslmode=disable", cfg.PostgresDSN())
	assert.False(t, cfg.RedisEnabled())
}

func TestRead_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ITEMS_PER_PAGE", "50")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("VIEW_STATE_TTL", "1h")

	cfg := Read()

	assert.Equal(t, 50, cfg.ItemsPerPage)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, time.Hour, cfg.ViewStateTTL)
}
