package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vjayram/uask/internal/audit"
	"github.com/vjayram/uask/internal/batchquery"
	"github.com/vjayram/uask/internal/cache"
	"github.com/vjayram/uask/internal/query"
	"github.com/vjayram/uask/internal/spatial"
	"github.com/vjayram/uask/pkg/utils"
)

// RESTHandler serves the query, batch-query, and stats endpoints.
type RESTHandler struct {
	index       *spatial.Index
	queryEngine *query.Engine
	batchEngine *batchquery.Engine
	cache       *cache.Cache // nil disables caching
	audit       *audit.Logger // nil disables audit logging
	logger      *utils.Logger
	timeout     time.Duration
	maxClusterSize int
}

// NewRESTHandler builds a RESTHandler over idx. cache and auditLogger
// may be nil to disable those optional features.
func NewRESTHandler(idx *spatial.Index, c *cache.Cache, auditLogger *audit.Logger, logger *utils.Logger, maxClusterSize int) *RESTHandler {
	return &RESTHandler{
		index:          idx,
		queryEngine:    query.New(idx),
		batchEngine:    batchquery.New(idx),
		cache:          c,
		audit:          auditLogger,
		logger:         logger,
		timeout:        10 * time.Second,
		maxClusterSize: maxClusterSize,
	}
}

// PostQuery handles POST /api/v1/query.
func (h *RESTHandler) PostQuery(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var q query.SpatialQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_body", "message": err.Error()})
		return
	}

	var key string
	if h.cache != nil {
		key = cache.Key(q)
		if cached, ok := h.cache.Get(ctx, key); ok {
			c.JSON(http.StatusOK, gin.H{"query_id": q.QueryID, "results": cached})
			return
		}
	}

	start := time.Now()
	results, err := h.queryEngine.Resolve(q)
	elapsed := time.Since(start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_query", "message": err.Error()})
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx, key, results)
	}
	h.recordAudit(q, "single", results, elapsed)

	c.JSON(http.StatusOK, gin.H{"query_id": q.QueryID, "results": results})
}

// PostBatchQuery handles POST /api/v1/batch-query.
func (h *RESTHandler) PostBatchQuery(c *gin.Context) {
	var queries []query.SpatialQuery
	if err := c.ShouldBindJSON(&queries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_body", "message": err.Error()})
		return
	}

	start := time.Now()
	results := h.batchEngine.ProcessBatch(queries, h.maxClusterSize)
	elapsed := time.Since(start)

	for _, q := range queries {
		h.recordAudit(q, "batch", results[q.QueryID], elapsed)
	}

	c.JSON(http.StatusOK, results)
}

// GetStats handles GET /api/v1/stats.
func (h *RESTHandler) GetStats(c *gin.Context) {
	meta := h.index.Metadata()
	c.JSON(http.StatusOK, gin.H{
		"total_objects": meta.TotalObjects,
		"bounds":        meta.Bounds,
		"created_at":    meta.CreatedAt,
		"updated_at":    meta.UpdatedAt,
	})
}

func (h *RESTHandler) recordAudit(q query.SpatialQuery, kind string, results []query.Result, elapsed time.Duration) {
	if h.audit == nil {
		return
	}
	var topID int64
	if len(results) > 0 {
		topID = results[0].ID
	}
	h.audit.Record(audit.Entry{
		QueryID:      q.QueryID,
		Kind:         kind,
		Lat:          q.Location.Lat,
		Lon:          q.Location.Lon,
		K:            q.K,
		LambdaFactor: q.LambdaFactor,
		ResultCount:  len(results),
		TopResultID:  topID,
		LatencyMS:    elapsed.Milliseconds(),
		RecordedAt:   time.Now(),
	})
}
