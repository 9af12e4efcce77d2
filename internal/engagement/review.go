package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/lifecycle"
	"golang.org/x/sync/errgroup"
)

// Score bounds for submissions. Scores move in half-star steps.
const (
	MinScore  = 0.5
	MaxScore  = 5.0
	ScoreStep = 0.5
)

// ValidScore reports whether s is a score the portal accepts
func ValidScore(s float64) bool {
	if math.IsNaN(s) || s < MinScore || s > MaxScore {
		return false
	}
	steps := s / ScoreStep
	return steps == math.Trunc(steps)
}

// ReviewState is every score for one item plus the caller's own.
type ReviewState struct {
	Scores  []domain.ReviewScore
	MyScore *float64
}

// Average is the mean of Scores rounded to two decimals, nil when there
// are no scores.
func (r ReviewState) Average() *float64 {
	if len(r.Scores) == 0 {
		return nil
	}
	var sum float64
	for _, s := range r.Scores {
		sum += s.Score
	}
	avg := math.Round(sum/float64(len(r.Scores))*100) / 100
	return &avg
}

// ReviewSnapshot is a consistent copy of a ReviewBoard's state.
type ReviewSnapshot struct {
	ReviewState
	Target  domain.TargetType
	RefID   int64
	Loading bool
	Err     string
}

// ReviewBoard tracks review scores for one item at a time. The public score
// list and the caller's own score are fetched independently, each through
// its own slot.
type ReviewBoard struct {
	notifier

	repo   domain.ReviewRepository
	logger *slog.Logger

	mu          sync.Mutex
	allSlot     lifecycle.Slot
	mineSlot    lifecycle.Slot
	target      domain.TargetType
	refID       int64
	state       ReviewState
	loadingAll  bool
	loadingMine bool
	errMsg      string
}

// NewReviewBoard creates a board backed by repo
func NewReviewBoard(repo domain.ReviewRepository, logger *slog.Logger) *ReviewBoard {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewBoard{repo: repo, logger: logger}
}

func (b *ReviewBoard) event() Event {
	return Event{Kind: KindReview, ItemID: b.refID}
}

// Load fetches both halves of the review state for target/refID
// concurrently. Calling it again, for the same or another item, cancels
// both in-flight fetches.
func (b *ReviewBoard) Load(ctx context.Context, target domain.TargetType, refID int64, id domain.Identity) error {
	b.mu.Lock()
	if b.target != target || b.refID != refID {
		b.target = target
		b.refID = refID
		b.state = ReviewState{}
		b.errMsg = ""
	}
	// Both slots move to the new generation under the same lock as the
	// reset, so nothing from the previous item can commit after it.
	allCtx, allGen := b.allSlot.Begin(ctx)
	mineCtx, mineGen := b.mineSlot.Begin(ctx)
	b.loadingAll = true
	signedIn := id.SignedIn()
	if !signedIn {
		b.mineSlot.End(mineGen)
		b.state.MyScore = nil
	}
	b.loadingMine = signedIn
	b.mu.Unlock()

	if !signedIn {
		b.notify(b.event())
	}

	var g errgroup.Group
	g.Go(func() error { return b.loadAll(ctx, allCtx, allGen, target, refID) })
	if signedIn {
		g.Go(func() error { return b.loadMine(ctx, mineCtx, mineGen, target, refID, id.Token) })
	}
	return g.Wait()
}

// loadAll fetches the public score list for generation gen of allSlot.
// ctx is the caller's context and fetchCtx the one the slot handed out.
func (b *ReviewBoard) loadAll(ctx, fetchCtx context.Context, gen uint64, target domain.TargetType, refID int64) error {
	scores, err := b.repo.ReviewScores(fetchCtx, target, refID)

	b.mu.Lock()
	switch b.allSlot.Settle(ctx, gen, err) {
	case lifecycle.Superseded:
		b.mu.Unlock()
		return nil
	case lifecycle.Canceled:
		b.loadingAll = false
		b.mu.Unlock()
		return ctx.Err()
	}

	b.loadingAll = false
	if err != nil {
		b.state.Scores = nil
		b.errMsg = domain.Describe("load reviews", err)
		b.mu.Unlock()
		b.logger.Error("failed to fetch review scores", "target", target, "refID", refID, "error", err)
		b.notify(b.event())
		return fmt.Errorf("fetch review scores for %s %d: %w", target, refID, err)
	}

	b.state.Scores = scores
	b.mu.Unlock()

	b.notify(b.event())
	return nil
}

// loadMine fetches the caller's own score for generation gen of mineSlot.
// A rejected token resolves to no score without an error.
func (b *ReviewBoard) loadMine(ctx, fetchCtx context.Context, gen uint64, target domain.TargetType, refID int64, token string) error {
	mine, err := b.repo.MyReviewScore(fetchCtx, target, refID, token)

	b.mu.Lock()
	switch b.mineSlot.Settle(ctx, gen, err) {
	case lifecycle.Superseded:
		b.mu.Unlock()
		return nil
	case lifecycle.Canceled:
		b.loadingMine = false
		b.mu.Unlock()
		return ctx.Err()
	}

	b.loadingMine = false
	if err != nil && errors.Is(err, domain.ErrAuthFailed) {
		mine, err = nil, nil
	}
	if err != nil {
		b.state.MyScore = nil
		b.errMsg = domain.Describe("load your review", err)
		b.mu.Unlock()
		b.logger.Error("failed to fetch own review score", "target", target, "refID", refID, "error", err)
		b.notify(b.event())
		return fmt.Errorf("fetch own review score for %s %d: %w", target, refID, err)
	}

	b.state.MyScore = mine
	b.mu.Unlock()

	b.notify(b.event())
	return nil
}

// Submit records score for the loaded item: a create when the caller has no
// score yet, an update otherwise. On success the caller's score is set and
// the public list is fetched again.
func (b *ReviewBoard) Submit(ctx context.Context, score float64, id domain.Identity) error {
	if !ValidScore(score) {
		return ErrInvalidScore
	}
	if !id.SignedIn() {
		return domain.ErrNotSignedIn
	}

	b.mu.Lock()
	target, refID := b.target, b.refID
	hasMine := b.state.MyScore != nil
	b.mu.Unlock()

	if target == "" {
		return ErrNoReviewTarget
	}

	var err error
	if hasMine {
		err = b.repo.UpdateReviewScore(ctx, target, refID, score, id.Token)
	} else {
		err = b.repo.CreateReviewScore(ctx, target, refID, score, id.Token)
	}
	if err != nil {
		b.mu.Lock()
		if b.target == target && b.refID == refID {
			b.errMsg = domain.Describe("save your review", err)
		}
		b.mu.Unlock()
		b.logger.Error("failed to submit review", "target", target, "refID", refID, "update", hasMine, "error", err)
		b.notify(b.event())
		return fmt.Errorf("submit review for %s %d: %w", target, refID, err)
	}

	b.mu.Lock()
	if b.target != target || b.refID != refID {
		b.mu.Unlock()
		return nil
	}
	mine := score
	b.state.MyScore = &mine
	b.errMsg = ""
	// An own-score fetch still in flight would predate this submit.
	b.mineSlot.Stop()
	b.loadingMine = false
	fetchCtx, gen := b.allSlot.Begin(ctx)
	b.loadingAll = true
	b.mu.Unlock()
	b.notify(b.event())

	return b.loadAll(ctx, fetchCtx, gen, target, refID)
}

// State returns the current review state
func (b *ReviewBoard) State() ReviewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyState()
}

func (b *ReviewBoard) copyState() ReviewState {
	out := ReviewState{Scores: append([]domain.ReviewScore(nil), b.state.Scores...)}
	if b.state.MyScore != nil {
		mine := *b.state.MyScore
		out.MyScore = &mine
	}
	return out
}

// Snapshot returns a copy of the board's state
func (b *ReviewBoard) Snapshot() ReviewSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ReviewSnapshot{
		ReviewState: b.copyState(),
		Target:      b.target,
		RefID:       b.refID,
		Loading:     b.loadingAll || b.loadingMine,
		Err:         b.errMsg,
	}
}

// Close cancels both in-flight fetches
func (b *ReviewBoard) Close() {
	b.mu.Lock()
	b.allSlot.Stop()
	b.mineSlot.Stop()
	b.loadingAll = false
	b.loadingMine = false
	b.mu.Unlock()
}
