package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /admin/export/:resource?format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	if !require(c, h.log, authz.ExportContent) {
		return
	}

	resource := param(c, "resource")
	if resource != "articles" && resource != "comments" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource must be one of: articles, comments"})
		return
	}

	format := c.Query("format")
	if format == "" {
		format = "ndjson" // Default to NDJSON for streaming
	}
	if format != "ndjson" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}

	contentType := "application/x-ndjson"
	if format == "json" {
		contentType = "application/json"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename="+resource+"."+format)
	c.Status(http.StatusOK)

	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Msg("Starting streaming export")

	if err := h.services.Export.StreamResource(c.Request.Context(), c.Writer, resource, format); err != nil {
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
