package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hindinewshub/news-api/internal/apperr"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/metrics"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/rs/zerolog"
)

// IdentityResolver verifies the caller of a request. It returns nil for anonymous requests.
type IdentityResolver interface {
	Resolve(ctx context.Context, req *http.Request) (*auth.Identity, error)
}

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router for the long-running server
func NewRouter(services *service.Services, resolver IdentityResolver, health HealthChecker, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	return newEngine(services, resolver, health, routerOptions{
		corsOrigins: cfg.Server.CORSOrigins,
		server:      true,
	}, log)
}

// NewFunctionHandler creates the request-scoped entry point. prefix is stripped from every
// request path before routing; requests outside it are answered 404. Any origin is allowed,
// and /metrics and the /admin routes are not mounted.
func NewFunctionHandler(services *service.Services, resolver IdentityResolver, health HealthChecker, prefix string, log zerolog.Logger) http.Handler {
	engine := newEngine(services, resolver, health, routerOptions{
		corsOrigins: []string{"*"},
	}, log.With().Str("component", "function").Logger())
	return http.StripPrefix(strings.TrimSuffix(prefix, "/"), engine)
}

type routerOptions struct {
	corsOrigins []string
	// server mounts /metrics and /admin and records request metrics
	server bool
}

func newEngine(services *service.Services, resolver IdentityResolver, health HealthChecker, opts routerOptions, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// a redirect would point outside the function prefix
	router.RedirectTrailingSlash = false

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	if opts.server {
		router.Use(metricsMiddleware())
	}
	router.Use(corsMiddleware(opts.corsOrigins))
	router.Use(identityMiddleware(resolver, log))

	// Handlers
	articles := NewArticleHandler(services, log)
	comments := NewCommentHandler(services, log)
	interactions := NewInteractionHandler(services, log)
	users := NewUserHandler(services, log)
	system := NewSystemHandler(services, health, log)

	router.GET("/health", system.Health)
	router.GET("/stats", system.Stats)
	router.GET("/categories", system.Categories)

	group := router.Group("/articles")
	{
		group.GET("", articles.List)
		group.POST("", articles.Create)
		group.GET("/search", articles.Search)
		group.GET("/by-slug/:slug", articles.GetBySlug)
		group.GET("/rankings/:kind", articles.Ranking)
		group.GET("/:id", articles.Get)
		group.PATCH("/:id", articles.Update)
		group.DELETE("/:id", articles.Delete)
		group.POST("/:id/views", articles.RecordView)
		group.GET("/:id/comments", comments.ListByArticle)
		group.GET("/:id/reactions", interactions.ListReactions)
		group.GET("/:id/reactions/counts", interactions.ReactionCounts)
	}

	router.POST("/comments", comments.Create)
	router.PATCH("/comments/:id", comments.Update)
	router.DELETE("/comments/:id", comments.Delete)

	router.POST("/reactions", interactions.ToggleReaction)
	router.GET("/bookmarks", interactions.ListBookmarks)
	router.POST("/bookmarks", interactions.ToggleBookmark)

	router.GET("/auth/user", users.Current)

	if !opts.server {
		return router
	}

	importHandler := NewImportHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	admin := router.Group("/admin")
	{
		admin.POST("/import/articles", importHandler.ImportArticles)
		admin.GET("/export/:resource", exportHandler.StreamExport)
	}

	return router
}

// respondError writes the JSON error body for err. Internal errors are logged and hidden.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, apperr.Body(err, "Internal server error"))
}

// require stops the request unless the caller may perform action
func require(c *gin.Context, log zerolog.Logger, action authz.Action) bool {
	if _, err := service.Require(c.Request.Context(), action); err != nil {
		respondError(c, log, err)
		return false
	}
	return true
}

// bindJSON decodes the request body into dst, answering 400 on failure.
// Bodies over maxBodyBytes are rejected the same way.
func bindJSON(c *gin.Context, dst interface{}) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if id := auth.FromContext(c.Request.Context()); id != nil {
			event = event.Str("user_id", id.UserID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware records Prometheus request metrics labelled by route template
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// corsMiddleware handles CORS. An origins list containing "*" allows any origin.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if allowAll {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if origin := c.GetHeader("Origin"); allowed[origin] {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// identityMiddleware resolves the caller and stores it on the request context.
// A presented but invalid bearer token is rejected outright.
func identityMiddleware(resolver IdentityResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			respondError(c, log, err)
			return
		}
		if id != nil {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}
}

// param returns a trimmed path parameter
func param(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Param(name))
}
