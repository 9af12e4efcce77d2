package engagement

import (
	"context"
	"sync"
	"testing"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoresOf(values ...float64) []domain.ReviewScore {
	out := make([]domain.ReviewScore, len(values))
	for i, v := range values {
		out[i] = domain.ReviewScore{ID: int64(i + 1), UserID: "u", Score: v}
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func TestReviewState_Average(t *testing.T) {
	tests := []struct {
		name   string
		scores []domain.ReviewScore
		want   *float64
	}{
		{"three", scoresOf(3, 4, 5), ptr(4.0)},
		{"single half star", scoresOf(3.5), ptr(3.5)},
		{"empty", nil, nil},
		{"rounds to two places", scoresOf(4, 4, 5), ptr(4.33)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReviewState{Scores: tt.scores}.Average()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestValidScore(t *testing.T) {
	for _, s := range []float64{0.5, 1, 2.5, 5} {
		assert.True(t, ValidScore(s), "%v", s)
	}
	for _, s := range []float64{0, 0.25, 5.5, -1, 3.7} {
		assert.False(t, ValidScore(s), "%v", s)
	}
}

func TestReviewBoard_AnonymousLoadSkipsMine(t *testing.T) {
	repo := &fakeRepo{
		scores: func(_ context.Context, _ int, tt domain.TargetType, refID int64) ([]domain.ReviewScore, error) {
			assert.Equal(t, domain.TargetArticle, tt)
			assert.EqualValues(t, 9, refID)
			return scoresOf(4, 5), nil
		},
	}
	board := NewReviewBoard(repo, nil)

	require.NoError(t, board.Load(context.Background(), domain.TargetArticle, 9, anonymous))

	assert.Equal(t, []string{"scores"}, repo.callLog())
	state := board.State()
	assert.Nil(t, state.MyScore)
	assert.Len(t, state.Scores, 2)
	assert.InDelta(t, 4.5, *state.Average(), 1e-9)
}

func TestReviewBoard_UnauthorizedMineIsNil(t *testing.T) {
	repo := &fakeRepo{
		mine: func(context.Context, domain.TargetType, int64) (*float64, error) {
			return nil, domain.ErrAuthFailed
		},
	}
	board := NewReviewBoard(repo, nil)

	require.NoError(t, board.Load(context.Background(), domain.TargetSyntax, 1, signedIn))
	assert.Nil(t, board.State().MyScore)
	assert.Empty(t, board.Snapshot().Err)
}

func TestReviewBoard_SubmitCreatesThenUpdates(t *testing.T) {
	var created, updated []float64
	stored := []float64{}
	repo := &fakeRepo{
		scores: func(context.Context, int, domain.TargetType, int64) ([]domain.ReviewScore, error) {
			return scoresOf(stored...), nil
		},
		create: func(s float64) error {
			created = append(created, s)
			stored = append(stored, s)
			return nil
		},
		update: func(s float64) error {
			updated = append(updated, s)
			stored[0] = s
			return nil
		},
	}
	board := NewReviewBoard(repo, nil)
	ctx := context.Background()
	require.NoError(t, board.Load(ctx, domain.TargetProcedure, 3, signedIn))

	require.NoError(t, board.Submit(ctx, 4, signedIn))
	require.NoError(t, board.Submit(ctx, 2.5, signedIn))

	assert.Equal(t, []float64{4}, created)
	assert.Equal(t, []float64{2.5}, updated)

	state := board.State()
	require.NotNil(t, state.MyScore)
	assert.InDelta(t, 2.5, *state.MyScore, 1e-9)
	assert.Len(t, state.Scores, 1)

	calls := repo.callLog()
	assert.Equal(t, []string{"create", "scores", "update", "scores"}, calls[2:])
}

func TestReviewBoard_SubmitValidation(t *testing.T) {
	repo := &fakeRepo{}
	board := NewReviewBoard(repo, nil)
	ctx := context.Background()

	assert.ErrorIs(t, board.Submit(ctx, 4, signedIn), ErrNoReviewTarget)
	assert.ErrorIs(t, board.Submit(ctx, 6, signedIn), ErrInvalidScore)
	assert.ErrorIs(t, board.Submit(ctx, 4, anonymous), domain.ErrNotSignedIn)
	assert.Empty(t, repo.callLog())
}

func TestReviewBoard_SwitchingTargetDiscardsOldResults(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	repo := &fakeRepo{
		scores: func(_ context.Context, n int, _ domain.TargetType, refID int64) ([]domain.ReviewScore, error) {
			if n == 1 {
				close(started)
				<-release
				return scoresOf(1, 1, 1), nil
			}
			return scoresOf(5), nil
		},
	}
	board := NewReviewBoard(repo, nil)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- board.Load(ctx, domain.TargetArticle, 1, anonymous) }()
	<-started

	require.NoError(t, board.Load(ctx, domain.TargetArticle, 2, anonymous))
	close(release)
	require.NoError(t, <-firstDone)

	snap := board.Snapshot()
	assert.EqualValues(t, 2, snap.RefID)
	assert.InDelta(t, 5.0, *snap.Average(), 1e-9)
	assert.False(t, snap.Loading)
}

// The old item's scores land right after the switch to item 2 is announced
// and before item 2's own fetch has gone out.
func TestReviewBoard_OldScoresLandingDuringSwitchAreDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	repo := &fakeRepo{
		scores: func(_ context.Context, n int, _ domain.TargetType, refID int64) ([]domain.ReviewScore, error) {
			if refID == 1 {
				close(started)
				<-release
				return scoresOf(1, 1, 1), nil
			}
			return nil, nil
		},
	}
	board := NewReviewBoard(repo, nil)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- board.Load(ctx, domain.TargetArticle, 1, anonymous) }()
	<-started

	var (
		once      sync.Once
		duringSet ReviewSnapshot
	)
	board.SetObserver(ObserverFunc(func(ev Event) {
		if ev.ItemID != 2 {
			return
		}
		once.Do(func() {
			close(release)
			assert.NoError(t, <-firstDone)
			duringSet = board.Snapshot()
		})
	}))

	require.NoError(t, board.Load(ctx, domain.TargetArticle, 2, anonymous))

	assert.EqualValues(t, 2, duringSet.RefID)
	assert.Empty(t, duringSet.Scores, "item 1 scores committed under item 2")

	snap := board.Snapshot()
	assert.EqualValues(t, 2, snap.RefID)
	assert.Empty(t, snap.Scores)
	assert.Nil(t, snap.Average())
}

func TestReviewBoard_OldOwnScoreDoesNotLeakIntoNewTarget(t *testing.T) {
	mineStarted := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	var once sync.Once
	repo := &fakeRepo{
		scores: func(_ context.Context, _ int, _ domain.TargetType, refID int64) ([]domain.ReviewScore, error) {
			if refID == 2 {
				// Let item 1's own score come back while item 2 is loading.
				once.Do(func() {
					close(release)
					assert.NoError(t, <-firstDone)
				})
			}
			return nil, nil
		},
		mine: func(_ context.Context, _ domain.TargetType, refID int64) (*float64, error) {
			if refID == 1 {
				close(mineStarted)
				<-release
				return ptr(4.5), nil
			}
			return nil, nil
		},
	}
	board := NewReviewBoard(repo, nil)
	ctx := context.Background()

	go func() { firstDone <- board.Load(ctx, domain.TargetProcedure, 1, signedIn) }()
	<-mineStarted

	require.NoError(t, board.Load(ctx, domain.TargetProcedure, 2, signedIn))

	snap := board.Snapshot()
	assert.EqualValues(t, 2, snap.RefID)
	assert.Nil(t, snap.MyScore, "item 1 own score leaked into item 2")

	// With no own score for item 2 the next submit must create, not update.
	require.NoError(t, board.Submit(ctx, 3, signedIn))
	assert.Contains(t, repo.callLog(), "create")
	assert.NotContains(t, repo.callLog(), "update")
}
