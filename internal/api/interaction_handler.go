package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

// InteractionHandler handles reaction and bookmark endpoints
type InteractionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(services *service.Services, log zerolog.Logger) *InteractionHandler {
	return &InteractionHandler{
		services: services,
		log:      log.With().Str("handler", "interaction").Logger(),
	}
}

// ListReactions handles GET /articles/:id/reactions
func (h *InteractionHandler) ListReactions(c *gin.Context) {
	reactions, err := h.services.Interaction.ListReactions(c.Request.Context(), param(c, "id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reactions)
}

// ReactionCounts handles GET /articles/:id/reactions/counts
func (h *InteractionHandler) ReactionCounts(c *gin.Context) {
	counts, err := h.services.Interaction.ReactionCounts(c.Request.Context(), param(c, "id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// ToggleReaction handles POST /reactions. The body is the new reaction, or null when removed.
func (h *InteractionHandler) ToggleReaction(c *gin.Context) {
	if !require(c, h.log, authz.React) {
		return
	}
	var in models.ReactionInput
	if !bindJSON(c, &in) {
		return
	}
	reaction, err := h.services.Interaction.ToggleReaction(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reaction)
}

// ListBookmarks handles GET /bookmarks
func (h *InteractionHandler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.services.Interaction.ListBookmarks(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}

// ToggleBookmark handles POST /bookmarks. The body is the bookmark, or null when removed.
func (h *InteractionHandler) ToggleBookmark(c *gin.Context) {
	if !require(c, h.log, authz.Bookmark) {
		return
	}
	var in models.BookmarkInput
	if !bindJSON(c, &in) {
		return
	}
	bookmark, err := h.services.Interaction.ToggleBookmark(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, bookmark)
}
