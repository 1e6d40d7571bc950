package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgcledger/internal/infrastructure/storage/postgres"
)

// Pinger is a dependency the readiness probe checks.
type Pinger func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	pool   *pgxpool.Pool
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler. pool may be nil when the
// ledger runs on the in-memory store.
func NewHealthHandler(pool *pgxpool.Pool, checks map[string]Pinger) *HealthHandler {
	all := make(map[string]Pinger, len(checks)+1)
	for name, p := range checks {
		all[name] = p
	}
	if pool != nil {
		all["database"] = pool.Ping
	}
	return &HealthHandler{pool: pool, checks: all}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = "unhealthy: " + err.Error()
			continue
		}
		results[name] = "healthy"
	}

	body := gin.H{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":     "pgcledger",
		"version": "0.1.0",
	}
	if h.pool != nil {
		body["database"] = postgres.GetPoolStats(h.pool)
	}
	c.JSON(http.StatusOK, body)
}
