package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/grafo"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

const readinessTimeout = 5 * time.Second

// HealthHandler handles liveness and readiness probes.
type HealthHandler struct {
	admin grafo.GraphAdmin
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(admin grafo.GraphAdmin) *HealthHandler {
	return &HealthHandler{admin: admin}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "grafo",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready - probes the graph backend.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "no graph client configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.admin.VerifyConnectivity(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
