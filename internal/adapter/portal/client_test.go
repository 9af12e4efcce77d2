package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/lumen/internal/adapter"
	"github.com/mmcdole/lumen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded is one request seen by the fake backend.
type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// fakePortal routes requests by "METHOD /path" and records them in order.
type fakePortal struct {
	t      *testing.T
	mu     sync.Mutex
	seen   []recorded
	routes map[string]http.HandlerFunc
}

func newFakePortal(t *testing.T, routes map[string]http.HandlerFunc) (*fakePortal, *Client) {
	t.Helper()
	fp := &fakePortal{t: t, routes: routes}
	srv := httptest.NewServer(fp)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, Options{MaxRetries: -1}, slog.New(slog.DiscardHandler))
	return fp, c
}

func (fp *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	fp.mu.Lock()
	fp.seen = append(fp.seen, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	fp.mu.Unlock()

	h, ok := fp.routes[r.Method+" "+r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (fp *fakePortal) requests() []recorded {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]recorded(nil), fp.seen...)
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
}

func jsonBody(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func TestMarkRead_PerItemAccepted(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"POST /api/articles/12/read": status(http.StatusNoContent),
	})

	require.NoError(t, c.MarkRead(context.Background(), domain.DomainArticles, 12, "tok"))

	reqs := fp.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/articles/12/read", reqs[0].Path)
	assert.Equal(t, "Bearer tok", reqs[0].Auth)
	assert.JSONEq(t, `{}`, reqs[0].Body)
}

func TestMarkRead_FallsBackOnShapeRejection(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 405} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			fp, c := newFakePortal(t, map[string]http.HandlerFunc{
				"POST /api/articles/12/read": status(code),
				"POST /api/articles/read":    status(http.StatusOK),
			})

			require.NoError(t, c.MarkRead(context.Background(), domain.DomainArticles, 12, "tok"))

			reqs := fp.requests()
			require.Len(t, reqs, 2)
			assert.Equal(t, "/api/articles/read", reqs[1].Path)
			assert.JSONEq(t, `{"articleId": 12}`, reqs[1].Body)
			assert.Equal(t, "Bearer tok", reqs[1].Auth)
		})
	}
}

func TestMarkRead_BatchUsesDomainIDKey(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"POST /api/syntaxes/read": status(http.StatusOK),
	})

	require.NoError(t, c.MarkRead(context.Background(), domain.DomainSyntaxes, 3, "tok"))

	reqs := fp.requests()
	require.Len(t, reqs, 2)
	assert.JSONEq(t, `{"syntaxId": 3}`, reqs[1].Body)
}

func TestMarkRead_ServerErrorIsNotMasked(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"POST /api/articles/12/read": status(http.StatusInternalServerError),
		"POST /api/articles/read":    status(http.StatusOK),
	})

	err := c.MarkRead(context.Background(), domain.DomainArticles, 12, "tok")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Len(t, fp.requests(), 1, "no fallback after a 5xx")
}

func TestMarkRead_FallbackFailureSurfaces(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"POST /api/articles/12/read": status(http.StatusNotFound),
		"POST /api/articles/read":    status(http.StatusBadRequest),
	})

	err := c.MarkRead(context.Background(), domain.DomainArticles, 12, "tok")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Len(t, fp.requests(), 2)
}

func TestReadIDs(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"GET /api/procedures/read/all": jsonBody([]int64{4, 8, 15}),
	})

	ids, err := c.ReadIDs(context.Background(), domain.DomainProcedures, "tok")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 8, 15}, ids)
	assert.Equal(t, "Bearer tok", fp.requests()[0].Auth)
}

func TestUnauthorizedMatchesAuthFailed(t *testing.T) {
	_, c := newFakePortal(t, map[string]http.HandlerFunc{
		"GET /api/articles/read/all": status(http.StatusUnauthorized),
	})

	_, err := c.ReadIDs(context.Background(), domain.DomainArticles, "stale")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.NotErrorIs(t, err, domain.ErrItemNotFound)
}

func TestLikeEndpoints(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"GET /api/syntaxes/7/like":    jsonBody(map[string]any{"liked": true, "likeCount": 9}),
		"POST /api/syntaxes/7/like":   status(http.StatusOK),
		"DELETE /api/syntaxes/7/like": status(http.StatusNoContent),
	})
	ctx := context.Background()

	state, err := c.LikeStatus(ctx, domain.DomainSyntaxes, 7, "")
	require.NoError(t, err)
	assert.Equal(t, domain.LikeState{Liked: true, Count: 9}, state)

	require.NoError(t, c.Like(ctx, domain.DomainSyntaxes, 7, "tok"))
	require.NoError(t, c.Unlike(ctx, domain.DomainSyntaxes, 7, "tok"))

	reqs := fp.requests()
	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[0].Auth, "anonymous status check sends no bearer")
	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, http.MethodDelete, reqs[2].Method)
}

func TestReviewScores_PublicAndMine(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"GET /api/review-scores/ARTICLE/5": jsonBody([]map[string]any{
			{"id": 1, "userId": "a", "score": 4.5},
			{"id": 2, "userId": "b", "score": 3},
		}),
		"GET /api/review-scores/my/ARTICLE/5": jsonBody(map[string]any{"score": 4.5}),
	})
	ctx := context.Background()

	scores, err := c.ReviewScores(ctx, domain.TargetArticle, 5)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "b", scores[1].UserID)

	mine, err := c.MyReviewScore(ctx, domain.TargetArticle, 5, "tok")
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.InDelta(t, 4.5, *mine, 1e-9)

	reqs := fp.requests()
	assert.Empty(t, reqs[0].Auth)
	assert.Equal(t, "Bearer tok", reqs[1].Auth)
}

func TestMyReviewScore_NotFoundMeansNone(t *testing.T) {
	_, c := newFakePortal(t, nil)

	mine, err := c.MyReviewScore(context.Background(), domain.TargetProcedure, 5, "tok")
	require.NoError(t, err)
	assert.Nil(t, mine)
}

func TestSubmitReviewScore_Methods(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"POST /api/review-scores/SYNTAX/2": status(http.StatusCreated),
		"PUT /api/review-scores/SYNTAX/2":  status(http.StatusOK),
	})
	ctx := context.Background()

	require.NoError(t, c.CreateReviewScore(ctx, domain.TargetSyntax, 2, 3.5, "tok"))
	require.NoError(t, c.UpdateReviewScore(ctx, domain.TargetSyntax, 2, 5, "tok"))

	reqs := fp.requests()
	require.Len(t, reqs, 2)
	assert.JSONEq(t, `{"score": 3.5}`, reqs[0].Body)
	assert.Equal(t, http.MethodPut, reqs[1].Method)
	assert.JSONEq(t, `{"score": 5}`, reqs[1].Body)
}

func TestProcedures_PageQuery(t *testing.T) {
	fp, c := newFakePortal(t, map[string]http.HandlerFunc{
		"GET /api/procedures": jsonBody(map[string]any{
			"content":    []map[string]any{{"id": 1, "title": "Boot", "stepNumber": "1-02"}},
			"totalPages": 3,
		}),
	})

	page, err := c.Procedures(context.Background(), 2, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "1-02", page.Content[0].StepNumber)
	assert.Equal(t, "page=2&size=50", fp.requests()[0].Query)
}

func TestRetriesGetOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode([]int64{1})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, Options{MaxRetries: 1}, slog.New(slog.DiscardHandler))
	ids, err := c.ReadIDs(context.Background(), domain.DomainArticles, "tok")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
	assert.EqualValues(t, 2, calls.Load())
}

func TestServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, Options{MaxRetries: -1}, slog.New(slog.DiscardHandler))
	_, err := c.ReadIDs(context.Background(), domain.DomainArticles, "tok")
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestCanceledContextIsReturnedAsIs(t *testing.T) {
	_, c := newFakePortal(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReadIDs(ctx, domain.DomainArticles, "tok")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewClientFromConfig(t *testing.T) {
	_, err := NewClientFromConfig(nil, nil)
	assert.Error(t, err)

	cfg := &adapter.Config{}
	_, err = NewClientFromConfig(cfg, nil)
	assert.Error(t, err)

	cfg.Server.URL = "http://portal.local:8080/"
	c, err := NewClientFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://portal.local:8080", c.baseURL)
}
