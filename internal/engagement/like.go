package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/lifecycle"
)

// LikeSnapshot is a consistent copy of a LikeTracker's state.
type LikeSnapshot struct {
	domain.LikeState
	Loading bool
	Pending bool // A toggle is waiting for the server
	Err     string
}

// LikeTracker owns the like state of a single content item.
type LikeTracker struct {
	notifier

	repo   domain.LikeRepository
	domain domain.Domain
	itemID int64
	logger *slog.Logger

	mu      sync.Mutex
	load    lifecycle.Slot
	state   domain.LikeState
	loading bool
	pending bool
	errMsg  string
}

// NewLikeTracker creates a tracker for item itemID in d
func NewLikeTracker(repo domain.LikeRepository, d domain.Domain, itemID int64, logger *slog.Logger) *LikeTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LikeTracker{
		repo:   repo,
		domain: d,
		itemID: itemID,
		logger: logger,
	}
}

func (t *LikeTracker) event() Event {
	return Event{Kind: KindLike, Domain: t.domain, ItemID: t.itemID}
}

// Load fetches the current like state. Anonymous callers still get the
// public count, with Liked false. While a toggle is pending the toggle owns
// the state and Load does nothing.
func (t *LikeTracker) Load(ctx context.Context, id domain.Identity) error {
	t.mu.Lock()
	if t.pending {
		t.mu.Unlock()
		t.logger.Debug("like status load skipped, toggle pending", "domain", t.domain, "id", t.itemID)
		return nil
	}
	loadCtx, gen := t.load.Begin(ctx)
	t.loading = true
	t.mu.Unlock()

	state, err := t.repo.LikeStatus(loadCtx, t.domain, t.itemID, id.Token)

	t.mu.Lock()
	switch t.load.Settle(ctx, gen, err) {
	case lifecycle.Superseded:
		t.mu.Unlock()
		return nil
	case lifecycle.Canceled:
		t.loading = false
		t.mu.Unlock()
		return ctx.Err()
	}

	t.loading = false
	if err != nil {
		t.errMsg = domain.Describe("load likes", err)
		t.mu.Unlock()
		t.logger.Error("failed to fetch like status", "domain", t.domain, "id", t.itemID, "error", err)
		t.notify(t.event())
		return fmt.Errorf("fetch %s %d like status: %w", t.domain.Singular(), t.itemID, err)
	}

	if !id.SignedIn() {
		state.Liked = false
	}
	t.state = state
	t.errMsg = ""
	t.mu.Unlock()

	t.notify(t.event())
	return nil
}

// Toggle flips the like optimistically. The new state is committed and
// observed before the request goes out; if the request fails the exact
// previous state is restored. It returns the state in effect afterwards.
func (t *LikeTracker) Toggle(ctx context.Context, id domain.Identity) (domain.LikeState, error) {
	if !id.SignedIn() {
		return t.State(), domain.ErrNotSignedIn
	}

	t.mu.Lock()
	if t.pending {
		state := t.state
		t.mu.Unlock()
		return state, ErrToggleInFlight
	}
	prev := t.state
	next := prev.Toggled()
	t.state = next
	t.pending = true
	t.errMsg = ""
	// A status fetch landing now would overwrite the optimistic value.
	t.load.Stop()
	t.loading = false
	t.mu.Unlock()

	t.notify(t.event())

	var err error
	if next.Liked {
		err = t.repo.Like(ctx, t.domain, t.itemID, id.Token)
	} else {
		err = t.repo.Unlike(ctx, t.domain, t.itemID, id.Token)
	}

	t.mu.Lock()
	t.pending = false
	if err != nil {
		t.state = prev
		if !errors.Is(err, context.Canceled) {
			t.errMsg = domain.Describe("update your like", err)
		}
		t.mu.Unlock()
		t.logger.Error("like toggle failed, rolled back", "domain", t.domain, "id", t.itemID, "error", err)
		t.notify(t.event())
		return prev, fmt.Errorf("toggle like on %s %d: %w", t.domain.Singular(), t.itemID, err)
	}
	t.mu.Unlock()

	return next, nil
}

// State returns the current like state
func (t *LikeTracker) State() domain.LikeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot returns a copy of the tracker's state
func (t *LikeTracker) Snapshot() LikeSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return LikeSnapshot{
		LikeState: t.state,
		Loading:   t.loading,
		Pending:   t.pending,
		Err:       t.errMsg,
	}
}

// Close cancels any in-flight status fetch
func (t *LikeTracker) Close() {
	t.mu.Lock()
	t.load.Stop()
	t.loading = false
	t.mu.Unlock()
}
