package models

import (
	"time"
)

// ArticleStatus is the publication state of an article. Any status may be set directly;
// there is no enforced transition order.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusScheduled ArticleStatus = "scheduled"
	StatusPublished ArticleStatus = "published"
)

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[ArticleStatus]bool{
	StatusDraft:     true,
	StatusScheduled: true,
	StatusPublished: true,
}

// Article represents an article in the system
type Article struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Subtitle    *string       `json:"subtitle" db:"subtitle"`
	Slug        string        `json:"slug" db:"slug"`
	Content     string        `json:"content" db:"content"`
	Excerpt     *string       `json:"excerpt" db:"excerpt"`
	Category    string        `json:"category" db:"category"`
	Region      *string       `json:"region" db:"region"`
	ImageURL    *string       `json:"imageUrl" db:"image_url"`
	AuthorID    string        `json:"authorId" db:"author_id"`
	Status      ArticleStatus `json:"status" db:"status"`
	Featured    bool          `json:"featured" db:"featured"`
	ReadTime    int           `json:"readTime" db:"read_time"`
	Views       int           `json:"views" db:"views"`
	PublishedAt *time.Time    `json:"publishedAt" db:"published_at"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsPublished reports whether the article is visible to readers.
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

// ArticleFilter narrows an article listing. Zero-value fields are ignored and the
// remaining conditions are combined with AND.
type ArticleFilter struct {
	Category string
	Region   string
	Status   ArticleStatus
	AuthorID string
	Featured *bool
	Limit    int
	Offset   int
}

// ArticleInput is the body of an article create request.
type ArticleInput struct {
	Title       string        `json:"title" validate:"required,max=300"`
	Subtitle    *string       `json:"subtitle" validate:"omitempty,max=500"`
	Slug        string        `json:"slug" validate:"omitempty,max=200"`
	Content     string        `json:"content" validate:"required"`
	Excerpt     *string       `json:"excerpt" validate:"omitempty,max=1000"`
	Category    string        `json:"category" validate:"required,category"`
	Region      *string       `json:"region" validate:"omitempty,max=100"`
	ImageURL    *string       `json:"imageUrl" validate:"omitempty,url"`
	Status      ArticleStatus `json:"status" validate:"omitempty,oneof=draft scheduled published"`
	Featured    bool          `json:"featured"`
	ReadTime    int           `json:"readTime" validate:"omitempty,min=1,max=600"`
	PublishedAt *time.Time    `json:"publishedAt"`
}

// Field is an optional patch value: Set is true when the key was present in the request.
type Field[T any] struct {
	Set   bool
	Value T
}

// ArticlePatch holds the allow-listed fields of a partial article update.
type ArticlePatch struct {
	Title       Field[string]
	Subtitle    Field[*string]
	Slug        Field[string]
	Content     Field[string]
	Excerpt     Field[*string]
	Category    Field[string]
	Region      Field[*string]
	ImageURL    Field[*string]
	Status      Field[ArticleStatus]
	Featured    Field[bool]
	ReadTime    Field[int]
	PublishedAt Field[*time.Time]
}

// Empty reports whether no field is set.
func (p *ArticlePatch) Empty() bool {
	return !(p.Title.Set || p.Subtitle.Set || p.Slug.Set || p.Content.Set || p.Excerpt.Set ||
		p.Category.Set || p.Region.Set || p.ImageURL.Set || p.Status.Set || p.Featured.Set ||
		p.ReadTime.Set || p.PublishedAt.Set)
}
