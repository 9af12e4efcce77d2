package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mmcdole/lumen/internal/domain"
)

// ReviewScores returns every score recorded for an item. The endpoint is
// public and is always called without a token.
func (c *Client) ReviewScores(ctx context.Context, t domain.TargetType, refID int64) ([]domain.ReviewScore, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/review-scores/%s/%d", t, refID),
	})
	if err != nil {
		return nil, err
	}

	var scores []domain.ReviewScore
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to parse review scores: %w", err)
	}
	return scores, nil
}

// MyReviewScore returns the token's user's score, or nil if they have not
// reviewed the item (404).
func (c *Client) MyReviewScore(ctx context.Context, t domain.TargetType, refID int64, token string) (*float64, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/review-scores/my/%s/%d", t, refID),
		token:  token,
	})
	if errors.Is(err, domain.ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp myScoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse review score: %w", err)
	}
	return resp.Score, nil
}

// CreateReviewScore records a first-time review
func (c *Client) CreateReviewScore(ctx context.Context, t domain.TargetType, refID int64, score float64, token string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/review-scores/%s/%d", t, refID),
		body:   scoreRequest{Score: score},
		token:  token,
	})
	return err
}

// UpdateReviewScore replaces the token's user's existing review
func (c *Client) UpdateReviewScore(ctx context.Context, t domain.TargetType, refID int64, score float64, token string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/review-scores/%s/%d", t, refID),
		body:   scoreRequest{Score: score},
		token:  token,
	})
	return err
}
