package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/models"
)

const commentColumns = `id, article_id, user_id, content, parent_id, status, created_at`

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now()
	}
	if comment.Status == "" {
		comment.Status = models.CommentApproved
	}

	query := `
		INSERT INTO comments (id, article_id, user_id, content, parent_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		comment.ID, comment.ArticleID, comment.UserID, comment.Content,
		comment.ParentID, comment.Status, comment.CreatedAt,
	)
	return translate(r.db, err)
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByArticle returns an article's comments, newest first
func (r *commentRepo) ListByArticle(ctx context.Context, articleID string, approvedOnly bool) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE article_id = $1`
	args := []interface{}{articleID}
	if approvedOnly {
		query += ` AND status = $2`
		args = append(args, models.CommentApproved)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// Update applies a moderation update. It reports whether the comment exists.
func (r *commentRepo) Update(ctx context.Context, id string, update *models.CommentUpdate) (bool, error) {
	var sets []string
	var args []interface{}

	if update.Content != nil {
		args = append(args, *update.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(sets) == 0 {
		comment, err := r.GetByID(ctx, id)
		return comment != nil, err
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE comments SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return rowsAffected(r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), args...))
}

// Delete removes a comment and its replies
func (r *commentRepo) Delete(ctx context.Context, id string) (bool, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Dialect.Rebind("DELETE FROM comments WHERE id = $1"), id))
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

// StreamAll streams all comments for export
func (r *commentRepo) StreamAll(ctx context.Context, callback func(*models.Comment) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return err
		}
		if err := callback(comment); err != nil {
			return err
		}
	}

	return rows.Err()
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var parentID sql.NullString

	err := row.Scan(
		&comment.ID, &comment.ArticleID, &comment.UserID, &comment.Content,
		&parentID, &comment.Status, &comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	comment.ParentID = nullString(parentID)
	return &comment, nil
}
