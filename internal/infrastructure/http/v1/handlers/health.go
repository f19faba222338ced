package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"penomoran/internal/infrastructure/storage/postgres"
)

// DBPinger is satisfied by *postgres.Pool.
type DBPinger interface {
	Ping(ctx context.Context) error
	Stats() postgres.PoolStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	pool DBPinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool DBPinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe. Numbers cannot be allocated without the
// database, so a failed ping makes the service unready.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
		"pool": h.pool.Stats(),
	})
}
