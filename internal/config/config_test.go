package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	base := Config{StoreDriver: DriverSQLite, DatabasePath: "/tmp/x.db"}

	t.Run("Success - sqlite", func(t *testing.T) {
		cfg := base
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Success - redis", func(t *testing.T) {
		cfg := base
		cfg.StoreDriver = DriverRedis
		cfg.RedisAddr = "localhost:6379"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Failure - empty database path", func(t *testing.T) {
		cfg := base
		cfg.DatabasePath = ""
		assert.ErrorContains(t, cfg.Validate(), "DATABASE_PATH")
	})

	t.Run("Failure - redis without address", func(t *testing.T) {
		cfg := base
		cfg.StoreDriver = DriverRedis
		assert.ErrorContains(t, cfg.Validate(), "REDIS_ADDR")
	})

	t.Run("Failure - unknown driver", func(t *testing.T) {
		cfg := base
		cfg.StoreDriver = "mongo"
		assert.ErrorContains(t, cfg.Validate(), "unknown STORE_DRIVER")
	})

	t.Run("Failure - negative rate limit", func(t *testing.T) {
		cfg := base
		cfg.RateLimitRPS = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"a", "b/c"}, List(" a, ,b/c ,"))
	assert.Nil(t, List(""))
}
