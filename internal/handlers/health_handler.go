package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/partforge/configurator/internal/health"
)

// HealthHandler serves the liveness/readiness/detailed health endpoints.
// The enhanced, mesh-aware checker the teacher also wired here had no
// SPEC_FULL.md component to check (no service mesh in this domain), so
// this handler carries only the basic HealthChecker.
type HealthHandler struct {
	healthChecker *health.HealthChecker
	startTime     time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(healthChecker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{healthChecker: healthChecker, startTime: time.Now()}
}

// LivenessCheck handles GET /health/live.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	status := h.healthChecker.CheckLiveness()

	if status.Status == "healthy" {
		c.JSON(http.StatusOK, status)
	} else {
		c.JSON(http.StatusServiceUnavailable, status)
	}
}

// ReadinessCheck handles GET /health/ready.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	status := h.healthChecker.CheckReadiness()

	if status.Status == "healthy" {
		c.JSON(http.StatusOK, status)
	} else {
		c.JSON(http.StatusServiceUnavailable, status)
	}
}

// DetailedHealthCheck handles GET /health/detailed.
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	status := h.healthChecker.CheckDetailed()

	statusCode := http.StatusOK
	if status.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, status)
}

// SimpleHealthCheck handles GET /health, a minimal check for load balancers.
func (h *HealthHandler) SimpleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "configurator",
		"uptime":  time.Since(h.startTime).String(),
	})
}
