package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/hindinewshub/news-api/pkg/logger"
	"github.com/rs/zerolog"
)

// SystemHandler serves health, stats and the category list
type SystemHandler struct {
	services *service.Services
	health   HealthChecker
	log      zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(services *service.Services, health HealthChecker, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		services: services,
		health:   health,
		log:      log.With().Str("handler", "system").Logger(),
	}
}

// Health returns the health status. The store is pinged when a checker is configured.
func (h *SystemHandler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.HealthCheck(ctx); err != nil {
			h.log.Error().Err(err).Msg("Health check failed")
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   logger.ServiceName,
	})
}

// Stats returns row counts
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.services.Stats.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"database":  stats,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Categories returns the fixed category list
func (h *SystemHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, models.Categories)
}
