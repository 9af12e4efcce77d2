package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/lumen/internal/catalog"
	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/engagement"
)

// Command factories for async operations

// RefreshCatalogCmd reloads the whole procedure listing
func RefreshCatalogCmd(ctx context.Context, svc *catalog.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 60*time.Second) // Every backend page
		defer cancel()

		return CatalogLoadedMsg{Err: svc.Refresh(ctx)}
	}
}

// RefreshReadsCmd refetches the read set for procedures
func RefreshReadsCmd(ctx context.Context, reads *engagement.ReadTracker, id domain.Identity) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		return ReadsLoadedMsg{Err: reads.Refresh(ctx, domain.DomainProcedures, id)}
	}
}

// ListenEngagementCmd waits for the next committed store change
func ListenEngagementCmd(ch <-chan engagement.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return EngagementChangedMsg{Event: ev}
	}
}

// LoadLikeCmd fetches like state for the tracker's item
func LoadLikeCmd(ctx context.Context, like *engagement.LikeTracker, itemID int64, id domain.Identity, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		// Failures are kept in the tracker's snapshot for the inspector
		if err := like.Load(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("like status unavailable", "id", itemID, "error", err)
		}
		return DetailsLoadedMsg{ItemID: itemID}
	}
}

// LoadReviewsCmd points the review board at a procedure
func LoadReviewsCmd(ctx context.Context, reviews *engagement.ReviewBoard, itemID int64, id domain.Identity, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := reviews.Load(ctx, domain.TargetProcedure, itemID, id); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("review scores unavailable", "id", itemID, "error", err)
		}
		return DetailsLoadedMsg{ItemID: itemID}
	}
}

// MarkReadCmd marks a procedure read
func MarkReadCmd(ctx context.Context, reads *engagement.ReadTracker, entry catalog.Entry, id domain.Identity) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := reads.MarkRead(ctx, domain.DomainProcedures, entry.Value.ID, id); err != nil {
			return ErrMsg{Err: err, Context: "mark this procedure read"}
		}
		return MarkedReadMsg{ItemID: entry.Value.ID, Title: entry.Value.Title}
	}
}

// ToggleLikeCmd flips the like on the tracker's item
func ToggleLikeCmd(ctx context.Context, like *engagement.LikeTracker, itemID int64, id domain.Identity) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		state, err := like.Toggle(ctx, id)
		if errors.Is(err, engagement.ErrToggleInFlight) {
			return StatusMsg{Message: "Still saving your last like…"}
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "update your like"}
		}
		return LikeToggledMsg{ItemID: itemID, Liked: state.Liked}
	}
}

// SubmitScoreCmd saves the caller's review score for the board's target
func SubmitScoreCmd(ctx context.Context, reviews *engagement.ReviewBoard, itemID int64, score float64, id domain.Identity) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := reviews.Submit(ctx, score, id); err != nil {
			return ErrMsg{Err: err, Context: "save your score"}
		}
		return ScoreSubmittedMsg{ItemID: itemID, Score: score}
	}
}

// OpenPageCmd launches the browser on pageURL
func OpenPageCmd(opener Opener, pageURL string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(pageURL); err != nil {
			return ErrMsg{Err: err, Context: "open the page"}
		}
		return PageOpenedMsg{URL: pageURL}
	}
}

// ClearStatusCmd clears the status bar after d
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
