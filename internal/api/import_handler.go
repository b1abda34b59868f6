package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

// maxImportBytes caps an NDJSON import upload
const maxImportBytes = 64 << 20

// ImportHandler handles bulk import endpoints
type ImportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// ImportArticles handles POST /admin/import/articles.
// The body is NDJSON, one article per line; every article is authored by the caller.
func (h *ImportHandler) ImportArticles(c *gin.Context) {
	if !require(c, h.log, authz.CreateArticle) {
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	result, err := h.services.Import.ImportArticles(c.Request.Context(), body)
	if err != nil {
		h.respondAborted(c, result, err)
		return
	}

	h.log.Info().
		Int("total", result.Total).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Msg("Import finished")

	c.JSON(http.StatusOK, result)
}

// respondAborted reports an import that stopped early. Client mistakes carry the partial
// result, since the lines before the failure are already stored.
func (h *ImportHandler) respondAborted(c *gin.Context, result *service.ImportResult, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError || result == nil {
		h.log.Error().Err(err).Msg("Import aborted")
		respondError(c, h.log, err)
		return
	}

	h.log.Warn().Err(err).
		Int("created", result.Created).
		Msg("Import rejected")

	body := apperr.Body(err, "Internal server error")
	body["total"] = result.Total
	body["created"] = result.Created
	body["failed"] = result.Failed
	if len(result.Errors) > 0 {
		body["errors"] = result.Errors
	}
	c.AbortWithStatusJSON(status, body)
}
