package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/models"
)

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate: entity already exists")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Upsert(ctx context.Context, user *models.UpsertUser) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) (bool, error)
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	Update(ctx context.Context, id string, patch *models.ArticlePatch) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) (bool, error)
	Top(ctx context.Context, kind models.RankingKind, category string, limit int) ([]*models.Article, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Article) error) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID string, approvedOnly bool) ([]*models.Comment, error)
	Update(ctx context.Context, id string, update *models.CommentUpdate) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Comment) error) error
}

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	Get(ctx context.Context, userID, articleID string) (*models.Reaction, error)
	Toggle(ctx context.Context, userID, articleID string, reactionType models.ReactionType) (*models.Reaction, error)
	ListByArticle(ctx context.Context, articleID string) ([]*models.Reaction, error)
	CountsByArticle(ctx context.Context, articleID string) (models.ReactionCounts, error)
	Count(ctx context.Context) (int, error)
}

// BookmarkRepository defines the interface for bookmark data operations
type BookmarkRepository interface {
	Get(ctx context.Context, userID, articleID string) (*models.Bookmark, error)
	Toggle(ctx context.Context, userID, articleID string) (*models.Bookmark, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Bookmark, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the interface for login session storage
type SessionRepository interface {
	Get(ctx context.Context, sid string) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, sid string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Article  ArticleRepository
	Comment  CommentRepository
	Reaction ReactionRepository
	Bookmark BookmarkRepository
	Session  SessionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Article:  NewArticleRepo(db),
		Comment:  NewCommentRepo(db),
		Reaction: NewReactionRepo(db),
		Bookmark: NewBookmarkRepo(db),
		Session:  NewSessionRepo(db),
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// translate maps driver errors onto repository errors
func translate(db *database.DB, err error) error {
	if err != nil && db.Dialect.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// now returns the write timestamp. Microsecond precision matches PostgreSQL.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Truncate(time.Microsecond)
}
