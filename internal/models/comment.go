package models

import (
	"time"
)

// CommentStatus is the moderation state of a comment
type CommentStatus string

const (
	CommentApproved CommentStatus = "approved"
	CommentPending  CommentStatus = "pending"
	CommentRejected CommentStatus = "rejected"
)

// ValidCommentStatuses defines allowed comment statuses
var ValidCommentStatuses = map[CommentStatus]bool{
	CommentApproved: true,
	CommentPending:  true,
	CommentRejected: true,
}

// Comment represents a comment on an article
type Comment struct {
	ID        string        `json:"id" db:"id"`
	ArticleID string        `json:"articleId" db:"article_id"`
	UserID    string        `json:"userId" db:"user_id"`
	Content   string        `json:"content" db:"content"`
	ParentID  *string       `json:"parentId" db:"parent_id"`
	Status    CommentStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

// CommentInput is the body of a comment create request
type CommentInput struct {
	ArticleID string  `json:"articleId" validate:"required"`
	Content   string  `json:"content" validate:"required"`
	ParentID  *string `json:"parentId"`
}

// CommentUpdate is a moderation update. Nil fields are left unchanged.
type CommentUpdate struct {
	Content *string        `json:"content"`
	Status  *CommentStatus `json:"status"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500
