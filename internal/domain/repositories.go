package domain

import (
	"context"
)

// Every repository method takes the bearer token explicitly. An empty token
// means the request is sent without an Authorization header.

// ReadRepository provides per-user read tracking for a content domain
type ReadRepository interface {
	// ReadIDs returns the ids the token's user has marked read
	ReadIDs(ctx context.Context, d Domain, token string) ([]int64, error)

	// MarkRead records that the token's user has read an item
	MarkRead(ctx context.Context, d Domain, id int64, token string) error
}

// LikeRepository provides like status and toggling for content items
type LikeRepository interface {
	// LikeStatus returns whether the token's user liked the item and the total count
	LikeStatus(ctx context.Context, d Domain, id int64, token string) (LikeState, error)

	// Like adds the token's user's like
	Like(ctx context.Context, d Domain, id int64, token string) error

	// Unlike removes the token's user's like
	Unlike(ctx context.Context, d Domain, id int64, token string) error
}

// ReviewRepository provides star review scores for content items
type ReviewRepository interface {
	// ReviewScores returns every user's score for an item (public)
	ReviewScores(ctx context.Context, t TargetType, refID int64) ([]ReviewScore, error)

	// MyReviewScore returns the token's user's score, nil when they have none
	MyReviewScore(ctx context.Context, t TargetType, refID int64, token string) (*float64, error)

	// CreateReviewScore records a first review
	CreateReviewScore(ctx context.Context, t TargetType, refID int64, score float64, token string) error

	// UpdateReviewScore replaces an existing review
	UpdateReviewScore(ctx context.Context, t TargetType, refID int64, score float64, token string) error
}

// LikedArticlesRepository lists the articles a user has liked
type LikedArticlesRepository interface {
	LikedArticles(ctx context.Context, token string) ([]LikedArticle, error)
}

// ProcedureRepository provides paginated procedure listings
type ProcedureRepository interface {
	// Procedures returns one backend page (zero-based) of the given size
	Procedures(ctx context.Context, page, size int) (Page[Procedure], error)
}
