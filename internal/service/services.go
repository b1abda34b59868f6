package service

import (
	"context"
	"io"
	"time"

	"github.com/hindinewshub/news-api/internal/cache"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/validation"
	"github.com/rs/zerolog"
)

// ArticleService defines the interface for article operations. The caller's identity
// is read from the request context.
type ArticleService interface {
	List(ctx context.Context, q ListQuery) ([]*models.Article, error)
	Search(ctx context.Context, q SearchQuery) ([]*models.Article, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Create(ctx context.Context, in *models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, id string, patch *models.ArticlePatch) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	RecordView(ctx context.Context, id string) error
}

// CommentService defines the interface for comment operations
type CommentService interface {
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	Create(ctx context.Context, in *models.CommentInput) (*models.Comment, error)
	Update(ctx context.Context, id string, update *models.CommentUpdate) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// InteractionService defines the interface for reactions and bookmarks.
// Toggles return nil when the row was removed.
type InteractionService interface {
	ListReactions(ctx context.Context, articleID string) ([]*models.Reaction, error)
	ReactionCounts(ctx context.Context, articleID string) (models.ReactionCounts, error)
	ToggleReaction(ctx context.Context, in *models.ReactionInput) (*models.Reaction, error)
	ListBookmarks(ctx context.Context) ([]*models.Bookmark, error)
	ToggleBookmark(ctx context.Context, in *models.BookmarkInput) (*models.Bookmark, error)
}

// UserService defines the interface for user and session management
type UserService interface {
	Current(ctx context.Context) (*models.User, error)
	Upsert(ctx context.Context, in *models.UpsertUser) (*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error
	CreateSession(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error)
}

// RankingService defines the interface for materialized article rankings
type RankingService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	Refresh(ctx context.Context) error
	Invalidate(ctx context.Context)
	Withdraw(ctx context.Context)
	Get(ctx context.Context, kind models.RankingKind, category string, limit int) (*models.Ranking, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamArticles(ctx context.Context, w io.Writer, format string) error
	StreamComments(ctx context.Context, w io.Writer, format string) error
	StreamResource(ctx context.Context, w io.Writer, resource, format string) error
}

// ImportService defines the interface for bulk article import
type ImportService interface {
	ImportArticles(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// StatsService reports row counts
type StatsService interface {
	Get(ctx context.Context) (*models.Stats, error)
}

// ImportResult summarizes one import run
type ImportResult struct {
	Total   int                          `json:"total"`
	Created int                          `json:"created"`
	Failed  int                          `json:"failed"`
	Errors  []validation.ValidationError `json:"errors,omitempty"`
}

// Services holds all service interfaces
type Services struct {
	Article     ArticleService
	Comment     CommentService
	Interaction InteractionService
	User        UserService
	Ranking     RankingService
	Export      ExportService
	Import      ImportService
	Stats       StatsService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, rankings cache.RankingCache, cfg *config.Config, log zerolog.Logger) *Services {
	validator := validation.NewValidator()

	rankingSvc := newRankingService(repos, rankings, cfg.Rankings, log)
	articleSvc := newArticleService(repos, validator, rankingSvc, cfg.Content, log)

	return &Services{
		Article:     articleSvc,
		Comment:     newCommentService(repos, validator, log),
		Interaction: newInteractionService(repos, validator, log),
		User:        newUserService(repos, log),
		Ranking:     rankingSvc,
		Export:      newExportService(repos, log),
		Import:      newImportService(articleSvc, log),
		Stats:       newStatsService(repos),
	}
}
