package tui

import "github.com/mmcdole/lumen/internal/engagement"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CatalogLoadedMsg signals that a catalog refresh finished. The listing
// itself is read back from the catalog.
type CatalogLoadedMsg struct {
	Err error
}

// ReadsLoadedMsg signals that the read set was refetched
type ReadsLoadedMsg struct {
	Err error
}

// EngagementChangedMsg carries a committed store change
type EngagementChangedMsg struct {
	Event engagement.Event
}

// DetailsLoadedMsg signals that like and review state for an item arrived
type DetailsLoadedMsg struct {
	ItemID int64
}

// MarkedReadMsg signals that an item was marked read
type MarkedReadMsg struct {
	ItemID int64
	Title  string
}

// LikeToggledMsg signals that a like toggle settled
type LikeToggledMsg struct {
	ItemID int64
	Liked  bool
}

// ScoreSubmittedMsg signals that a review score was saved
type ScoreSubmittedMsg struct {
	ItemID int64
	Score  float64
}

// PageOpenedMsg signals that the browser was launched
type PageOpenedMsg struct {
	URL string
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
