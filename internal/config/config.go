// Package config loads runtime configuration from environment
// variables, in the same env-var-with-defaults style the rest of the
// stack expects (no external config library — see DESIGN.md).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the application's full runtime configuration.
type Config struct {
	Environment string
	Server      ServerConfig
	Index       IndexConfig
	Batch       BatchConfig
	Redis       RedisConfig
	MySQL       MySQLConfig
	CORS        CORSConfig
	Monitoring  MonitoringConfig
	Features    FeaturesConfig
}

// ServerConfig configures the HTTP API (component L).
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// IndexConfig configures a freshly built spatial-textual index
// (component B).
type IndexConfig struct {
	MinLat         float64
	MinLon         float64
	MaxLat         float64
	MaxLon         float64
	Capacity       int
	DefaultRadius  float64
}

// BatchConfig configures the batch query engine's grouping thresholds
// (component E).
type BatchConfig struct {
	LocationThreshold float64
	KeywordThreshold  float64
	MaxClusterSize    int
}

// RedisConfig configures the optional query-result cache
// (component L).
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

// MySQLConfig configures the optional query audit log
// (component L.2, internal/audit).
type MySQLConfig struct {
	Enabled      bool
	DSN          string
	MaxIdleConns int
	MaxOpenConns int
}

// CORSConfig configures the HTTP API's allowed origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// MonitoringConfig configures the Prometheus metrics endpoint
// (component K).
type MonitoringConfig struct {
	MetricsEnabled bool
	MetricsAddress string
}

// FeaturesConfig holds feature flags.
type FeaturesConfig struct {
	EnableMySQLAudit bool
	EnableWSStats    bool
}

// Load reads configuration from the environment, applying the same
// defaults a local/dev run would want.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Address:      getEnv("SERVER_ADDRESS", ":8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Index: IndexConfig{
			MinLat:        getFloat("INDEX_MIN_LAT", -90),
			MinLon:        getFloat("INDEX_MIN_LON", -180),
			MaxLat:        getFloat("INDEX_MAX_LAT", 90),
			MaxLon:        getFloat("INDEX_MAX_LON", 180),
			Capacity:      getInt("INDEX_CAPACITY", 1000),
			DefaultRadius: getFloat("INDEX_DEFAULT_RADIUS", 10.0),
		},
		Batch: BatchConfig{
			LocationThreshold: getFloat("BATCH_LOCATION_THRESHOLD", 10.0),
			KeywordThreshold:  getFloat("BATCH_KEYWORD_THRESHOLD", 0.5),
			MaxClusterSize:    getInt("BATCH_MAX_CLUSTER_SIZE", 0),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", false),
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			TTL:      getDuration("REDIS_CACHE_TTL", 30*time.Second),
		},
		MySQL: MySQLConfig{
			Enabled:      getBool("MYSQL_ENABLED", false),
			DSN:          getEnv("MYSQL_DSN", ""),
			MaxIdleConns: getInt("MYSQL_MAX_IDLE_CONNS", 5),
			MaxOpenConns: getInt("MYSQL_MAX_OPEN_CONNS", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Monitoring: MonitoringConfig{
			MetricsEnabled: getBool("METRICS_ENABLED", true),
			MetricsAddress: getEnv("METRICS_ADDRESS", ":9090"),
		},
		Features: FeaturesConfig{
			EnableMySQLAudit: getBool("ENABLE_MYSQL_AUDIT", false),
			EnableWSStats:    getBool("ENABLE_WS_STATS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field invariants that env-var parsing alone
// can't enforce.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("SERVER_ADDRESS is required")
	}
	if c.Index.MinLat >= c.Index.MaxLat || c.Index.MinLon >= c.Index.MaxLon {
		return fmt.Errorf("INDEX bounds must satisfy min < max on both axes")
	}
	if c.Index.Capacity <= 0 {
		return fmt.Errorf("INDEX_CAPACITY must be positive")
	}
	if c.Index.DefaultRadius <= 0 {
		return fmt.Errorf("INDEX_DEFAULT_RADIUS must be positive")
	}
	if c.Batch.LocationThreshold <= 0 {
		return fmt.Errorf("BATCH_LOCATION_THRESHOLD must be positive")
	}
	if c.Batch.KeywordThreshold < 0 || c.Batch.KeywordThreshold > 1 {
		return fmt.Errorf("BATCH_KEYWORD_THRESHOLD must be between 0 and 1")
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required when REDIS_ENABLED is set")
	}
	if c.MySQL.Enabled && c.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required when MYSQL_ENABLED is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// LogLevel returns the configured log level.
func LogLevel() string {
	return getEnv("LOG_LEVEL", "info")
}

// LogFormat returns the configured log format ("json" or "text").
func LogFormat() string {
	return getEnv("LOG_FORMAT", "json")
}

// IsDevelopment reports whether APP_ENV is "development".
func IsDevelopment() bool {
	return getEnv("APP_ENV", "production") == "development"
}
