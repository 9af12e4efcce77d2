package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/lifecycle"
)

// LikedSnapshot is a consistent copy of a LikedArticles list.
type LikedSnapshot struct {
	Articles []domain.LikedArticle
	Loading  bool
	Err      string
}

// LikedArticles holds the signed-in user's liked-articles list.
type LikedArticles struct {
	notifier

	repo   domain.LikedArticlesRepository
	logger *slog.Logger

	mu       sync.Mutex
	fetch    lifecycle.Slot
	articles []domain.LikedArticle
	loading  bool
	errMsg   string
}

// NewLikedArticles creates a list backed by repo
func NewLikedArticles(repo domain.LikedArticlesRepository, logger *slog.Logger) *LikedArticles {
	if logger == nil {
		logger = slog.Default()
	}
	return &LikedArticles{repo: repo, logger: logger}
}

// Refresh replaces the list with the server's. Anonymous identities and
// rejected tokens resolve to an empty list.
func (l *LikedArticles) Refresh(ctx context.Context, id domain.Identity) error {
	ev := Event{Kind: KindLiked, Domain: domain.DomainArticles}

	l.mu.Lock()
	fetchCtx, gen := l.fetch.Begin(ctx)
	if !id.SignedIn() {
		l.fetch.End(gen)
		l.articles = nil
		l.loading = false
		l.errMsg = ""
		l.mu.Unlock()
		l.notify(ev)
		return nil
	}
	l.loading = true
	l.mu.Unlock()

	articles, err := l.repo.LikedArticles(fetchCtx, id.Token)

	l.mu.Lock()
	switch l.fetch.Settle(ctx, gen, err) {
	case lifecycle.Superseded:
		l.mu.Unlock()
		return nil
	case lifecycle.Canceled:
		l.loading = false
		l.mu.Unlock()
		return ctx.Err()
	}

	l.loading = false
	switch {
	case err == nil:
		l.articles = articles
		l.errMsg = ""
	case errors.Is(err, domain.ErrAuthFailed):
		l.articles = nil
		l.errMsg = ""
		err = nil
	default:
		l.logger.Error("failed to fetch liked articles", "error", err)
		l.articles = nil
		l.errMsg = domain.Describe("load liked articles", err)
		err = fmt.Errorf("fetch liked articles: %w", err)
	}
	l.mu.Unlock()

	l.notify(ev)
	return err
}

// Articles returns a copy of the current list
func (l *LikedArticles) Articles() []domain.LikedArticle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.articles)
}

// Snapshot returns a copy of the list's state
func (l *LikedArticles) Snapshot() LikedSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LikedSnapshot{
		Articles: slices.Clone(l.articles),
		Loading:  l.loading,
		Err:      l.errMsg,
	}
}

// Close cancels any in-flight fetch
func (l *LikedArticles) Close() {
	l.mu.Lock()
	l.fetch.Stop()
	l.loading = false
	l.mu.Unlock()
}
