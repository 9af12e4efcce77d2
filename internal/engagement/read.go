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

// ReadSnapshot is a consistent copy of a ReadTracker's state.
type ReadSnapshot struct {
	Domain  domain.Domain
	IDs     domain.ReadSet
	Loading bool
	Err     string
}

// ReadTracker holds the signed-in user's read set for one domain at a time.
type ReadTracker struct {
	notifier

	repo   domain.ReadRepository
	logger *slog.Logger

	mu      sync.Mutex
	fetch   lifecycle.Slot
	domain  domain.Domain
	ids     domain.ReadSet
	loading bool
	errMsg  string
}

// NewReadTracker creates a tracker backed by repo
func NewReadTracker(repo domain.ReadRepository, logger *slog.Logger) *ReadTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadTracker{
		repo:   repo,
		logger: logger,
		ids:    domain.ReadSet{},
	}
}

// Refresh replaces the read set with the server's list for d. A call made
// while another is in flight cancels the earlier one, whose result is then
// discarded. Anonymous identities get an empty set without a request, and a
// rejected token (401) is treated the same way.
func (t *ReadTracker) Refresh(ctx context.Context, d domain.Domain, id domain.Identity) error {
	t.mu.Lock()
	fetchCtx, gen := t.fetch.Begin(ctx)
	if t.domain != d {
		t.domain = d
		t.ids = domain.ReadSet{}
	}

	if !id.SignedIn() {
		t.fetch.End(gen)
		t.ids = domain.ReadSet{}
		t.loading = false
		t.errMsg = ""
		t.mu.Unlock()
		t.notify(Event{Kind: KindRead, Domain: d})
		return nil
	}

	t.loading = true
	t.mu.Unlock()

	ids, err := t.repo.ReadIDs(fetchCtx, d, id.Token)

	t.mu.Lock()
	switch t.fetch.Settle(ctx, gen, err) {
	case lifecycle.Superseded:
		t.mu.Unlock()
		t.logger.Debug("read status fetch superseded", "domain", d)
		return nil
	case lifecycle.Canceled:
		t.loading = false
		t.mu.Unlock()
		return ctx.Err()
	}

	t.loading = false
	switch {
	case err == nil:
		t.ids = domain.NewReadSet(ids)
		t.errMsg = ""
	case errors.Is(err, domain.ErrAuthFailed):
		t.logger.Info("read status rejected token, treating as signed out", "domain", d)
		t.ids = domain.ReadSet{}
		t.errMsg = ""
		err = nil
	default:
		t.logger.Error("failed to fetch read status", "domain", d, "error", err)
		t.ids = domain.ReadSet{}
		t.errMsg = domain.Describe("load read status", err)
		err = fmt.Errorf("fetch %s read status: %w", d.Singular(), err)
	}
	t.mu.Unlock()

	t.notify(Event{Kind: KindRead, Domain: d})
	return err
}

// MarkRead records that the user read item itemID in d. On success the id
// joins the held set when d is the tracked domain.
func (t *ReadTracker) MarkRead(ctx context.Context, d domain.Domain, itemID int64, id domain.Identity) error {
	if !id.SignedIn() {
		return domain.ErrNotSignedIn
	}

	if err := t.repo.MarkRead(ctx, d, itemID, id.Token); err != nil {
		t.logger.Error("failed to mark read", "domain", d, "id", itemID, "error", err)
		return fmt.Errorf("mark %s %d read: %w", d.Singular(), itemID, err)
	}

	t.mu.Lock()
	changed := t.domain == d && !t.ids.Has(itemID)
	if changed {
		t.ids[itemID] = struct{}{}
	}
	t.mu.Unlock()

	if changed {
		t.notify(Event{Kind: KindRead, Domain: d, ItemID: itemID})
	}
	return nil
}

// IsRead reports whether itemID is in the current read set
func (t *ReadTracker) IsRead(itemID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ids.Has(itemID)
}

// Snapshot returns a copy of the tracker's state
func (t *ReadTracker) Snapshot() ReadSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ReadSnapshot{
		Domain:  t.domain,
		IDs:     t.ids.Clone(),
		Loading: t.loading,
		Err:     t.errMsg,
	}
}

// Close cancels any in-flight fetch. Its result will be discarded.
func (t *ReadTracker) Close() {
	t.mu.Lock()
	t.fetch.Stop()
	t.loading = false
	t.mu.Unlock()
}
