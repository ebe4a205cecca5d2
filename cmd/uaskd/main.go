// Command uaskd serves the spatial-keyword query engine over HTTP:
// it loads configuration, builds or restores the index, and starts
// the API server until a shutdown signal arrives.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vjayram/uask/internal/audit"
	"github.com/vjayram/uask/internal/config"
	"github.com/vjayram/uask/internal/httpapi"
	"github.com/vjayram/uask/internal/ingest"
	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/spatial"
	"github.com/vjayram/uask/pkg/utils"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(config.LogLevel(), config.LogFormat())
	logger.WithField("version", Version).Info("starting uaskd")
	metrics.SetAppInfo(Version, "", "")

	idx, err := loadOrBuildIndex(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to load or build index")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		metrics.RedisConnectionStatus.Set(1)
	}

	var auditLogger *audit.Logger
	if cfg.MySQL.Enabled {
		auditLogger, err = audit.Open(cfg.MySQL.DSN, cfg.MySQL.MaxOpenConns, 1000, logger)
		if err != nil {
			logger.WithError(err).Error("failed to open audit log, continuing without it")
		} else {
			defer auditLogger.Close()
		}
	}

	server := httpapi.NewServer(cfg, idx, redisClient, auditLogger, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Info("HTTP server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("error during HTTP server shutdown")
	}

	logger.Info("uaskd stopped")
}

// loadOrBuildIndex restores a persisted index from the directory named
// by the PERSISTENCE_DIRECTORY environment variable when it exists,
// falling back to an empty index built over cfg.Index's bounds (bulk
// ingesting the CSV named by INGEST_CSV, if set).
func loadOrBuildIndex(cfg *config.Config, logger *utils.Logger) (*spatial.Index, error) {
	if dir := os.Getenv("PERSISTENCE_DIRECTORY"); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			idx, err := spatial.Load(dir)
			if err != nil {
				return nil, err
			}
			idx.SetLogger(logger)
			logger.WithField("objects", idx.Len()).Info("loaded persisted index")
			return idx, nil
		}
	}

	bounds := spatial.Rectangle{
		MinLat: cfg.Index.MinLat,
		MinLon: cfg.Index.MinLon,
		MaxLat: cfg.Index.MaxLat,
		MaxLon: cfg.Index.MaxLon,
	}
	idx := spatial.New(bounds, cfg.Index.Capacity)
	idx.SetLogger(logger)

	if csvPath := os.Getenv("INGEST_CSV"); csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		records, err := ingest.LoadCSV(f, logger)
		if err != nil {
			return nil, err
		}
		inserted := idx.AddBatch(records)
		logger.WithField("inserted", inserted).WithField("total", len(records)).Info("ingested CSV corpus")
	}

	metrics.IndexObjectsTotal.Set(float64(idx.Len()))
	return idx, nil
}
