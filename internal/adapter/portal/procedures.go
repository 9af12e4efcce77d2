package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/lumen/internal/domain"
)

// Procedures returns one zero-based backend page of procedures
func (c *Client) Procedures(ctx context.Context, page, size int) (domain.Page[domain.Procedure], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/procedures",
		query:  query,
	})
	if err != nil {
		return domain.Page[domain.Procedure]{}, err
	}

	var resp procedurePageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Page[domain.Procedure]{}, fmt.Errorf("failed to parse procedures page: %w", err)
	}
	return resp, nil
}
