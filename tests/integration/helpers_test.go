//go:build integration

package integration

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/redis"
	"github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/typesense"
	"github.com/inkatlas/tattoo-directory/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	cfg := &config.RedisConfig{
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_REDIS_PORT", 6379),
		Password: getEnv("TEST_REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("TEST_REDIS_DB", 0),
	}

	client, err := redis.NewClient(cfg)
	require.NoError(t, err, "Failed to create redis client")
	return client
}

func newTestTypesenseClient(t *testing.T) *typesense.Client {
	t.Helper()

	cfg := &config.TypesenseConfig{
		URL:    getEnv("TEST_TYPESENSE_URL", "http://localhost:8108"),
		APIKey: getEnv("TEST_TYPESENSE_API_KEY", "xyz"),
	}

	client, err := typesense.NewClient(cfg)
	require.NoError(t, err, "Failed to create typesense client")
	return client
}
