package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// ListByArticle handles GET /articles/:id/comments
func (h *CommentHandler) ListByArticle(c *gin.Context) {
	comments, err := h.services.Comment.ListByArticle(c.Request.Context(), param(c, "id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create handles POST /comments
func (h *CommentHandler) Create(c *gin.Context) {
	if !require(c, h.log, authz.Comment) {
		return
	}
	var in models.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.services.Comment.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update handles PATCH /comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	if !require(c, h.log, authz.ModerateComment) {
		return
	}
	var update models.CommentUpdate
	if !bindJSON(c, &update) {
		return
	}
	comment, err := h.services.Comment.Update(c.Request.Context(), param(c, "id"), &update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.services.Comment.Delete(c.Request.Context(), param(c, "id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
