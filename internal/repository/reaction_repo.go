package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/models"
)

const reactionColumns = `id, article_id, user_id, type, created_at`

// reactionRepo is the concrete implementation of ReactionRepository
type reactionRepo struct {
	db *database.DB
}

// NewReactionRepo creates a new reaction repository
func NewReactionRepo(db *database.DB) ReactionRepository {
	return &reactionRepo{db: db}
}

// Get returns the user's reaction to an article, or nil
func (r *reactionRepo) Get(ctx context.Context, userID, articleID string) (*models.Reaction, error) {
	query := `SELECT ` + reactionColumns + ` FROM reactions WHERE user_id = $1 AND article_id = $2`

	reaction, err := scanReaction(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), userID, articleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reaction, nil
}

// Toggle creates the reaction, removes it when the same type is sent again, or switches
// its type. It returns the resulting reaction, or nil when none remains.
func (r *reactionRepo) Toggle(ctx context.Context, userID, articleID string, reactionType models.ReactionType) (*models.Reaction, error) {
	existing, err := r.Get(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		reaction := &models.Reaction{
			ID:        uuid.New().String(),
			ArticleID: articleID,
			UserID:    userID,
			Type:      reactionType,
			CreatedAt: now(),
		}
		query := `INSERT INTO reactions (id, article_id, user_id, type, created_at) VALUES ($1, $2, $3, $4, $5)`
		_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
			reaction.ID, reaction.ArticleID, reaction.UserID, reaction.Type, reaction.CreatedAt,
		)
		if err != nil {
			return nil, translate(r.db, err)
		}
		return reaction, nil
	}

	if existing.Type == reactionType {
		_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind("DELETE FROM reactions WHERE id = $1"), existing.ID)
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, r.db.Dialect.Rebind("UPDATE reactions SET type = $1 WHERE id = $2"), reactionType, existing.ID)
	if err != nil {
		return nil, err
	}
	existing.Type = reactionType
	return existing, nil
}

// ListByArticle returns all reactions on an article
func (r *reactionRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Reaction, error) {
	query := `SELECT ` + reactionColumns + ` FROM reactions WHERE article_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reactions := make([]*models.Reaction, 0)
	for rows.Next() {
		reaction, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}

// CountsByArticle returns the number of reactions per type. Every type is present.
func (r *reactionRepo) CountsByArticle(ctx context.Context, articleID string) (models.ReactionCounts, error) {
	query := `SELECT type, COUNT(*) FROM reactions WHERE article_id = $1 GROUP BY type`

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := models.ReactionCounts{}
	for t := range models.ValidReactionTypes {
		counts[t] = 0
	}
	for rows.Next() {
		var t models.ReactionType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// Count returns the total number of reactions
func (r *reactionRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reactions").Scan(&count)
	return count, err
}

func scanReaction(row rowScanner) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := row.Scan(&reaction.ID, &reaction.ArticleID, &reaction.UserID, &reaction.Type, &reaction.CreatedAt); err != nil {
		return nil, err
	}
	return &reaction, nil
}
