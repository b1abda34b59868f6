package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/models"
)

// DefaultListLimit applies when a filter carries no limit
const DefaultListLimit = 100

const articleColumns = `id, title, subtitle, slug, content, excerpt, category, region, image_url,
	author_id, status, featured, read_time, views, published_at, created_at, updated_at`

// listOrder puts unpublished rows last on both backends
const listOrder = ` ORDER BY (published_at IS NULL), published_at DESC, created_at DESC`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article. Timestamps are set here when empty.
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	ts := now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = ts
	}
	article.UpdatedAt = ts

	query := `
		INSERT INTO articles (id, title, subtitle, slug, content, excerpt, category, region, image_url,
			author_id, status, featured, read_time, views, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		article.ID, article.Title, article.Subtitle, article.Slug, article.Content, article.Excerpt,
		article.Category, article.Region, article.ImageURL, article.AuthorID, article.Status,
		article.Featured, article.ReadTime, article.Views, utcPtr(article.PublishedAt),
		article.CreatedAt, article.UpdatedAt,
	)
	return translate(r.db, err)
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.getBy(ctx, "id", id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getBy(ctx, "slug", slug)
}

func (r *articleRepo) getBy(ctx context.Context, column, value string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE ` + column + ` = $1`

	article, err := scanArticle(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// SlugExists checks if an article with the given slug exists
func (r *articleRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind("SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)"), slug,
	).Scan(&exists)
	return exists, err
}

// List returns articles matching every non-empty filter field
func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	var conditions []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Region != "" {
		add("region = $%d", filter.Region)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.AuthorID != "" {
		add("author_id = $%d", filter.AuthorID)
	}
	if filter.Featured != nil {
		add("featured = $%d", *filter.Featured)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += listOrder
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	return r.query(ctx, query, args...)
}

// Update applies the set fields of patch and refreshes updated_at.
// It reports whether the article exists.
func (r *articleRepo) Update(ctx context.Context, id string, patch *models.ArticlePatch) (bool, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title.Set {
		set("title", patch.Title.Value)
	}
	if patch.Subtitle.Set {
		set("subtitle", patch.Subtitle.Value)
	}
	if patch.Slug.Set {
		set("slug", patch.Slug.Value)
	}
	if patch.Content.Set {
		set("content", patch.Content.Value)
	}
	if patch.Excerpt.Set {
		set("excerpt", patch.Excerpt.Value)
	}
	if patch.Category.Set {
		set("category", patch.Category.Value)
	}
	if patch.Region.Set {
		set("region", patch.Region.Value)
	}
	if patch.ImageURL.Set {
		set("image_url", patch.ImageURL.Value)
	}
	if patch.Status.Set {
		set("status", patch.Status.Value)
	}
	if patch.Featured.Set {
		set("featured", patch.Featured.Value)
	}
	if patch.ReadTime.Set {
		set("read_time", patch.ReadTime.Value)
	}
	if patch.PublishedAt.Set {
		set("published_at", utcPtr(patch.PublishedAt.Value))
	}
	set("updated_at", now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE articles SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return false, translate(r.db, err)
	}
	return rowsAffected(res, nil)
}

// Delete removes an article. Comments, reactions and bookmarks cascade.
func (r *articleRepo) Delete(ctx context.Context, id string) (bool, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Dialect.Rebind("DELETE FROM articles WHERE id = $1"), id))
}

// IncrementViews adds one view in a single statement so concurrent calls never lose counts
func (r *articleRepo) IncrementViews(ctx context.Context, id string) (bool, error) {
	return rowsAffected(r.db.ExecContext(ctx,
		r.db.Dialect.Rebind("UPDATE articles SET views = views + 1 WHERE id = $1"), id))
}

// Top returns the highest ranked published articles, optionally within one category
func (r *articleRepo) Top(ctx context.Context, kind models.RankingKind, category string, limit int) ([]*models.Article, error) {
	var order string
	switch kind {
	case models.RankingMostRead:
		order = " ORDER BY views DESC, created_at DESC"
	case models.RankingLatest:
		order = " ORDER BY created_at DESC"
	default:
		return nil, fmt.Errorf("unknown ranking kind %q", kind)
	}

	args := []interface{}{models.StatusPublished}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE status = $1`
	if category != "" {
		args = append(args, category)
		query += " AND category = $2"
	}
	args = append(args, limit)
	query += order + fmt.Sprintf(" LIMIT $%d", len(args))

	return r.query(ctx, query, args...)
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// StreamAll streams all articles for export
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return err
		}
		if err := callback(article); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *articleRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var subtitle, excerpt, region, imageURL sql.NullString
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID, &article.Title, &subtitle, &article.Slug, &article.Content, &excerpt,
		&article.Category, &region, &imageURL, &article.AuthorID, &article.Status,
		&article.Featured, &article.ReadTime, &article.Views, &publishedAt,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Subtitle = nullString(subtitle)
	article.Excerpt = nullString(excerpt)
	article.Region = nullString(region)
	article.ImageURL = nullString(imageURL)
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return &article, nil
}
