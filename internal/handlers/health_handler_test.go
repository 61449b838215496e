package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/partforge/configurator/internal/health"
	"github.com/partforge/configurator/internal/testutils"
)

func newHealthTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db := testutils.SetupTestDB(t)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })
	redisClient := testutils.SetupTestRedis(t)
	t.Cleanup(func() { testutils.CleanupTestRedis(t, redisClient) })

	checker := health.NewHealthChecker(db, redisClient, "test")
	handler := NewHealthHandler(checker)

	router := gin.New()
	router.GET("/health", handler.SimpleHealthCheck)
	router.GET("/health/live", handler.LivenessCheck)
	router.GET("/health/ready", handler.ReadinessCheck)
	router.GET("/health/detailed", handler.DetailedHealthCheck)

	return router
}

func TestHealthHandler_SimpleHealthCheck(t *testing.T) {
	router := newHealthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "\"uptime\"")
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	router := newHealthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_ReadinessCheck_HealthyWithLiveDependencies(t *testing.T) {
	router := newHealthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_DetailedHealthCheck(t *testing.T) {
	router := newHealthTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "\"checks\"")
}
