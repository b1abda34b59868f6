package models

import (
	"time"
)

// RankingKind names a materialized article list
type RankingKind string

const (
	RankingMostRead RankingKind = "most-read"
	RankingLatest   RankingKind = "latest"
)

// ValidRankingKinds defines the rankings the processor maintains
var ValidRankingKinds = map[RankingKind]bool{
	RankingMostRead: true,
	RankingLatest:   true,
}

// Ranking is a snapshot of the top published articles for one kind and category.
// An empty Category means all categories.
type Ranking struct {
	Kind        RankingKind `json:"kind"`
	Category    string      `json:"category,omitempty"`
	Articles    []*Article  `json:"articles"`
	GeneratedAt time.Time   `json:"generatedAt"`
}
