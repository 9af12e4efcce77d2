package engagement

import "errors"

var (
	// ErrToggleInFlight is returned when a like toggle is requested while the
	// previous one has not settled
	ErrToggleInFlight = errors.New("a like toggle is already in progress")

	// ErrInvalidScore is returned for scores outside 0.5-5 or off the half-star grid
	ErrInvalidScore = errors.New("score must be between 0.5 and 5 in steps of 0.5")

	// ErrNoReviewTarget is returned by Submit before any Load
	ErrNoReviewTarget = errors.New("no review target loaded")
)
