package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vjayram/uask/internal/config"
	"github.com/vjayram/uask/pkg/utils"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Environment = "development"
	return cfg
}

func TestNewServer_HealthCheckReturnsOK(t *testing.T) {
	idx := testIndex(t)
	srv := NewServer(testConfig(t), idx, nil, nil, utils.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServer_ReadyCheckReportsObjectCount(t *testing.T) {
	idx := testIndex(t)
	srv := NewServer(testConfig(t), idx, nil, nil, utils.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"objects":3`)
}

func TestNewServer_MetricsEndpointExposesPrometheusFormat(t *testing.T) {
	idx := testIndex(t)
	srv := NewServer(testConfig(t), idx, nil, nil, utils.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uask_")
}

func TestRateLimitMiddleware_EventuallyRejectsBurst(t *testing.T) {
	idx := testIndex(t)
	srv := NewServer(testConfig(t), idx, nil, nil, utils.Default())

	var sawLimited bool
	for i := 0; i < 500; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		srv.router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			sawLimited = true
			break
		}
	}
	assert.True(t, sawLimited, "expected the rate limiter to reject at least one request in a tight burst")
}
