package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/models"
)

const bookmarkColumns = `id, article_id, user_id, created_at`

// bookmarkRepo is the concrete implementation of BookmarkRepository
type bookmarkRepo struct {
	db *database.DB
}

// NewBookmarkRepo creates a new bookmark repository
func NewBookmarkRepo(db *database.DB) BookmarkRepository {
	return &bookmarkRepo{db: db}
}

// Get returns the user's bookmark for an article, or nil
func (r *bookmarkRepo) Get(ctx context.Context, userID, articleID string) (*models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE user_id = $1 AND article_id = $2`

	bookmark, err := scanBookmark(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), userID, articleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return bookmark, nil
}

// Toggle bookmarks the article, or removes an existing bookmark and returns nil
func (r *bookmarkRepo) Toggle(ctx context.Context, userID, articleID string) (*models.Bookmark, error) {
	existing, err := r.Get(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind("DELETE FROM bookmarks WHERE id = $1"), existing.ID)
		return nil, err
	}

	bookmark := &models.Bookmark{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    userID,
		CreatedAt: now(),
	}
	query := `INSERT INTO bookmarks (id, article_id, user_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err = r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		bookmark.ID, bookmark.ArticleID, bookmark.UserID, bookmark.CreatedAt,
	)
	if err != nil {
		return nil, translate(r.db, err)
	}
	return bookmark, nil
}

// ListByUser returns a user's bookmarks, newest first
func (r *bookmarkRepo) ListByUser(ctx context.Context, userID string) ([]*models.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := make([]*models.Bookmark, 0)
	for rows.Next() {
		bookmark, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, bookmark)
	}
	return bookmarks, rows.Err()
}

// Count returns the total number of bookmarks
func (r *bookmarkRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookmarks").Scan(&count)
	return count, err
}

func scanBookmark(row rowScanner) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	if err := row.Scan(&bookmark.ID, &bookmark.ArticleID, &bookmark.UserID, &bookmark.CreatedAt); err != nil {
		return nil, err
	}
	return &bookmark, nil
}
