package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":              "dev",
		"DB_USER":              "rental",
		"DB_HOST":              "127.0.0.1",
		"DB_NAME":              "game_rental",
		"JWT_SECRET":           "s3cret",
		"ACCESS_TOKEN_TTL_MIN": "15",
	} {
		t.Setenv(k, v)
	}
}

func TestLoad_DefaultsAndRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "")
	t.Setenv("BCRYPT_COST", "")

	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, 15, c.AccessTTLMin)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.Production())
}

func TestLoad_MissingRequiredIsFatal(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	var msgs []string
	fatalf = func(format string, args ...interface{}) { msgs = append(msgs, fmt.Sprintf(format, args...)) }
	t.Cleanup(func() { fatalf = log.Fatalf })

	Load()
	require.Len(t, msgs, 1)
	assert.Equal(t, "missing required env var: JWT_SECRET", msgs[0])
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GR_TEST_FROM_FILE=file\nGR_TEST_PRESET=file\n"), 0o600))
	t.Setenv("GR_TEST_PRESET", "env")
	t.Setenv("GR_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("GR_TEST_FROM_FILE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "file", os.Getenv("GR_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("GR_TEST_PRESET"), "existing variables win")

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 2*time.Second, c.RefillInterval)
	assert.Equal(t, 10*time.Second, c.TTL)
}

func TestLoadRateLimitConfig_BurstAndRefillEvery(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "4")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")

	c := LoadRateLimitConfig()
	assert.Equal(t, 5, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 500*time.Millisecond, c.RefillInterval)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	t.Setenv("CACHE_TTL", "bogus")
	t.Setenv("CACHE_ENABLED", "off")

	c := LoadCacheConfig()
	assert.False(t, c.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.Equal(t, 30*time.Second, c.TTL)
}

func TestLoadBrokerConfig(t *testing.T) {
	t.Setenv("EVENT_BROKER", "NATS")
	t.Setenv("RENTAL_CONSUMER_ENABLED", "true")
	c := LoadBrokerConfig()
	assert.Equal(t, BrokerNATS, c.Kind)
	assert.False(t, c.ConsumerEnabled, "consumer only runs against rabbitmq")

	t.Setenv("EVENT_BROKER", "kafka")
	assert.Equal(t, BrokerNone, LoadBrokerConfig().Kind)

	t.Setenv("EVENT_BROKER", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
	c = LoadBrokerConfig()
	assert.Equal(t, BrokerRabbitMQ, c.Kind)
	assert.Equal(t, "amqp://u:p@mq:5672/", c.RabbitURL)
	assert.True(t, c.ConsumerEnabled)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}
