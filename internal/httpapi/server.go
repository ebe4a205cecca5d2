// Package httpapi implements the HTTP API (component L): a gin router
// exposing single-query and batch-query resolution, index stats, a
// live query-streaming websocket, health/readiness checks, and a
// Prometheus metrics endpoint.
package httpapi

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/vjayram/uask/internal/audit"
	"github.com/vjayram/uask/internal/cache"
	"github.com/vjayram/uask/internal/config"
	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/query"
	"github.com/vjayram/uask/internal/spatial"
	"github.com/vjayram/uask/pkg/utils"
)

// Server is the HTTP server fronting a built spatial index.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     *utils.Logger
	config     *config.Config
	rest       *RESTHandler
	ws         *WebSocketHandler
}

// NewServer wires a Server around idx. redisClient and auditLogger may
// be nil when their respective features are disabled in cfg.
func NewServer(cfg *config.Config, idx *spatial.Index, redisClient *redis.Client, auditLogger *audit.Logger, logger *utils.Logger) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(LoggerMiddleware(logger))
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg.CORS))
	router.Use(RateLimitMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(metrics.HTTPMetricsMiddleware())

	var resultCache *cache.Cache
	if cfg.Redis.Enabled && redisClient != nil {
		resultCache = cache.New(redisClient, cfg.Redis.TTL)
	}

	rest := NewRESTHandler(idx, resultCache, auditLogger, logger, cfg.Batch.MaxClusterSize)
	ws := NewWebSocketHandler(query.New(idx), logger, 5*time.Second)

	s := &Server{
		router: router,
		logger: logger,
		config: cfg,
		rest:   rest,
		ws:     ws,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ready", s.readyCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/query", s.rest.PostQuery)
		v1.POST("/batch-query", s.rest.PostBatchQuery)
		v1.GET("/stats", s.rest.GetStats)
	}

	s.router.GET("/ws/v1/stream", s.ws.HandleStream)

	if s.config.Monitoring.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if s.config.Environment == "development" {
		pprofGroup := s.router.Group("/debug/pprof")
		{
			pprofGroup.GET("/", gin.WrapF(pprof.Index))
			pprofGroup.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofGroup.GET("/profile", gin.WrapF(pprof.Profile))
			pprofGroup.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofGroup.GET("/trace", gin.WrapF(pprof.Trace))
			pprofGroup.GET("/heap", gin.WrapH(pprof.Handler("heap")))
			pprofGroup.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		}
		s.logger.Info("pprof profiling endpoints enabled at /debug/pprof/")
	}
}

// Start runs the HTTP server until it is shut down or fails.
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"address": s.config.Server.Address,
		"mode":    gin.Mode(),
	}).Info("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
}

func (s *Server) readyCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "objects": s.rest.index.Len()})
}

// ==================== Middleware ====================

// LoggerMiddleware logs one structured line per completed request.
func LoggerMiddleware(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}).Info("http request completed")
	}
}

// CORSMiddleware configures cross-origin access per cfg.
func CORSMiddleware(corsConfig config.CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     corsConfig.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RateLimitMiddleware applies a token-bucket limit shared across all
// requests to the process.
func RateLimitMiddleware() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(100), 200)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"code": "rate_limit_exceeded", "message": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware sets the same baseline security headers
// the teacher sets on every response.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
