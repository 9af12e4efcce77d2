package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/lumen/internal/domain"
)

// ReadIDs returns the ids the token's user has marked read in a domain
func (c *Client) ReadIDs(ctx context.Context, d domain.Domain, token string) ([]int64, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/%s/read/all", d),
		token:  token,
	})
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse read ids: %w", err)
	}
	return ids, nil
}

// MarkRead records a read. The per-item shape is tried first; the batch
// shape is used only when the server rejects the first one for shape
// reasons (400, 401, 403, 404, 405). Server errors are never masked.
func (c *Client) MarkRead(ctx context.Context, d domain.Domain, id int64, token string) error {
	return negotiate(ctx, c.logger, []attempt{
		{
			name: "per-item",
			send: func(ctx context.Context) error {
				_, err := c.do(ctx, request{
					method: http.MethodPost,
					path:   fmt.Sprintf("/api/%s/%d/read", d, id),
					body:   struct{}{},
					token:  token,
				})
				return err
			},
			fallbackOn: shapeRejections,
		},
		{
			name: "batch",
			send: func(ctx context.Context) error {
				_, err := c.do(ctx, request{
					method: http.MethodPost,
					path:   fmt.Sprintf("/api/%s/read", d),
					body:   map[string]int64{d.IDKey(): id},
					token:  token,
				})
				return err
			},
		},
	})
}

// LikeStatus returns the like state of an item. Without a token the backend
// reports the public count and liked=false.
func (c *Client) LikeStatus(ctx context.Context, d domain.Domain, id int64, token string) (domain.LikeState, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/%s/%d/like", d, id),
		token:  token,
	})
	if err != nil {
		return domain.LikeState{}, err
	}

	var resp likeStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.LikeState{}, fmt.Errorf("failed to parse like status: %w", err)
	}
	return domain.LikeState{Liked: resp.Liked, Count: resp.LikeCount}, nil
}

// Like adds the token's user's like to an item
func (c *Client) Like(ctx context.Context, d domain.Domain, id int64, token string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/%s/%d/like", d, id),
		token:  token,
	})
	return err
}

// Unlike removes the token's user's like from an item
func (c *Client) Unlike(ctx context.Context, d domain.Domain, id int64, token string) error {
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/%s/%d/like", d, id),
		token:  token,
	})
	return err
}
