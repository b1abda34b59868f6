package models

import (
	"time"
)

// ReactionType is one of the fixed reader reactions
type ReactionType string

const (
	ReactionLike ReactionType = "like"
	ReactionLove ReactionType = "love"
	ReactionFire ReactionType = "fire"
)

// ValidReactionTypes defines allowed reaction types
var ValidReactionTypes = map[ReactionType]bool{
	ReactionLike: true,
	ReactionLove: true,
	ReactionFire: true,
}

// Reaction is a reader's single reaction to an article. There is at most one per (user, article).
type Reaction struct {
	ID        string       `json:"id" db:"id"`
	ArticleID string       `json:"articleId" db:"article_id"`
	UserID    string       `json:"userId" db:"user_id"`
	Type      ReactionType `json:"type" db:"type"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// ReactionInput is the body of a reaction toggle request
type ReactionInput struct {
	ArticleID string       `json:"articleId" validate:"required"`
	Type      ReactionType `json:"type" validate:"required,oneof=like love fire"`
}

// ReactionCounts maps each reaction type to its number of rows for an article
type ReactionCounts map[ReactionType]int

// Bookmark is a reader's saved article. There is at most one per (user, article).
type Bookmark struct {
	ID        string    `json:"id" db:"id"`
	ArticleID string    `json:"articleId" db:"article_id"`
	UserID    string    `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// BookmarkInput is the body of a bookmark toggle request
type BookmarkInput struct {
	ArticleID string `json:"articleId" validate:"required"`
}
