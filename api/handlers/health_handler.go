package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

// Version is reported by /health
const Version = "1.0.0"

// EngineVersioner reports the engine version; *infrastructure.YTDLPEngine
// implements it.
type EngineVersioner interface {
	Version(ctx context.Context) (string, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	engine EngineVersioner
}

// NewHealthHandler creates a new health handler. engine may be nil.
func NewHealthHandler(engine EngineVersioner) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Platforms []domain.Platform `json:"platforms"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   Version,
		Platforms: domain.SupportedPlatforms(),
	})
}

// Ready handles GET /ready. The server is ready when the engine answers.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "engine not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	version, err := h.engine.Version(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "engine": version})
}
