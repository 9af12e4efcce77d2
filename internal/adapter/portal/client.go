package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/lumen/internal/adapter"
	"github.com/mmcdole/lumen/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	baseRetryDelay    = 500 * time.Millisecond
)

// Options tunes the HTTP behavior of a Client.
type Options struct {
	Timeout           time.Duration // Per-request timeout; 0 uses the default
	MaxRetries        int           // Retries for GET on 5xx; negative disables
	RequestsPerSecond float64       // Client-side throttle; 0 disables
	HTTPClient        *http.Client  // Overrides Timeout when set
}

// Client talks to the portal REST backend. It holds no credentials: every
// call receives the bearer token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *slog.Logger
}

// NewClient creates a new portal API client
func NewClient(baseURL string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		burst := max(int(opts.RequestsPerSecond*2), 1)
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// NewClientFromConfig creates a Client from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Server.URL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.Server.URL); err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	return NewClient(cfg.Server.URL, Options{
		Timeout:           cfg.Client.Timeout,
		MaxRetries:        cfg.Client.MaxRetries,
		RequestsPerSecond: cfg.Client.RequestsPerSecond,
	}, logger), nil
}

// request describes one backend call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any    // JSON-encoded when non-nil
	token  string // Bearer token; empty sends no Authorization header
}

// do performs a request and returns the response body for 2xx statuses.
// Non-2xx statuses come back as *StatusError. GET requests are retried with
// exponential backoff on 5xx; other methods are sent exactly once.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	retries := 0
	if r.method == http.MethodGet {
		retries = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", r.path)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.send(ctx, r.method, reqURL, payload, r.token)
		if err == nil {
			return body, nil
		}

		var se *StatusError
		if errors.As(err, &se) && se.Code >= 500 {
			lastErr = err
			c.logger.Warn("portal server error",
				"status", se.Code,
				"method", r.method,
				"path", r.path,
				"attempt", attempt,
				"maxRetries", retries,
			)
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

// send issues a single HTTP exchange.
func (c *Client) send(ctx context.Context, method, reqURL string, payload []byte, token string) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("portal request", "method", method, "url", reqURL, "requestID", requestID, "auth", token != "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("portal request failed", "error", err, "requestID", requestID)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Method: method,
			Path:   req.URL.Path,
			Body:   truncate(string(body), 200),
		}
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
