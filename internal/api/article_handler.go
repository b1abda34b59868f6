package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /articles
func (h *ArticleHandler) List(c *gin.Context) {
	q, err := service.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	articles, err := h.services.Article.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Search handles GET /articles/search?q=&category=&region=
func (h *ArticleHandler) Search(c *gin.Context) {
	articles, err := h.services.Article.Search(c.Request.Context(), service.ParseSearchQuery(c.Request.URL.Query()))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Get handles GET /articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.services.Article.Get(c.Request.Context(), param(c, "id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// GetBySlug handles GET /articles/by-slug/:slug
func (h *ArticleHandler) GetBySlug(c *gin.Context) {
	article, err := h.services.Article.GetBySlug(c.Request.Context(), param(c, "slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Create handles POST /articles
func (h *ArticleHandler) Create(c *gin.Context) {
	if !require(c, h.log, authz.CreateArticle) {
		return
	}
	var in models.ArticleInput
	if !bindJSON(c, &in) {
		return
	}
	article, err := h.services.Article.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Update handles PATCH /articles/:id. Only allow-listed fields are applied.
func (h *ArticleHandler) Update(c *gin.Context) {
	if !require(c, h.log, authz.UpdateOwn) {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	patch, err := service.ParseArticlePatch(body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	article, err := h.services.Article.Update(c.Request.Context(), param(c, "id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), param(c, "id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordView handles POST /articles/:id/views
func (h *ArticleHandler) RecordView(c *gin.Context) {
	if err := h.services.Article.RecordView(c.Request.Context(), param(c, "id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Ranking handles GET /articles/rankings/:kind?category=&limit=
func (h *ArticleHandler) Ranking(c *gin.Context) {
	limit, err := service.ParseLimit(c.Query("limit"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ranking, err := h.services.Ranking.Get(c.Request.Context(), models.RankingKind(param(c, "kind")), c.Query("category"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}
