package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, existed := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if existed {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	clearEnv(t, "SERVER_ADDRESS", "INDEX_CAPACITY", "INDEX_DEFAULT_RADIUS", "REDIS_ENABLED", "MYSQL_ENABLED")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 1000, cfg.Index.Capacity)
	assert.Equal(t, 10.0, cfg.Index.DefaultRadius)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.MySQL.Enabled)
}

func TestLoad_ReadsOverridesFromEnv(t *testing.T) {
	clearEnv(t, "INDEX_CAPACITY", "BATCH_KEYWORD_THRESHOLD", "CORS_ALLOWED_ORIGINS")
	os.Setenv("INDEX_CAPACITY", "256")
	os.Setenv("BATCH_KEYWORD_THRESHOLD", "0.75")
	os.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Index.Capacity)
	assert.Equal(t, 0.75, cfg.Batch.KeywordThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate_RejectsInvertedIndexBounds(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Address: ":8080"},
		Index:  IndexConfig{MinLat: 10, MaxLat: 5, MinLon: -180, MaxLon: 180, Capacity: 1, DefaultRadius: 1},
		Batch:  BatchConfig{LocationThreshold: 1, KeywordThreshold: 0.5},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsRedisEnabledWithoutURL(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Address: ":8080"},
		Index:  IndexConfig{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180, Capacity: 1, DefaultRadius: 1},
		Batch:  BatchConfig{LocationThreshold: 1, KeywordThreshold: 0.5},
		Redis:  RedisConfig{Enabled: true, URL: ""},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsKeywordThresholdOutOfRange(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Address: ":8080"},
		Index:  IndexConfig{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180, Capacity: 1, DefaultRadius: 1},
		Batch:  BatchConfig{LocationThreshold: 1, KeywordThreshold: 1.5},
	}
	assert.Error(t, cfg.Validate())
}

func TestLogLevel_DefaultsToInfo(t *testing.T) {
	clearEnv(t, "LOG_LEVEL")
	assert.Equal(t, "info", LogLevel())
}

func TestIsDevelopment_FalseByDefault(t *testing.T) {
	clearEnv(t, "APP_ENV")
	assert.False(t, IsDevelopment())
}
