package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for engagement operations
var (
	// ErrNotSignedIn indicates a mutation was attempted without a bearer token
	ErrNotSignedIn = errors.New("sign in required")

	// ErrServerOffline indicates the portal backend is unreachable
	ErrServerOffline = errors.New("portal backend is unreachable")

	// ErrAuthFailed indicates the backend rejected the bearer token
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrItemNotFound indicates the requested content item does not exist
	ErrItemNotFound = errors.New("content item not found")
)

// HTTPStatus extracts the status code from errors that carry one, or 0.
func HTTPStatus(err error) int {
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return 0
}

// Describe turns a failure into the short string shown to users.
// action reads as a verb phrase, e.g. "load read status".
func Describe(action string, err error) string {
	switch {
	case errors.Is(err, ErrServerOffline):
		return "Can't reach the portal right now. Try again later."
	case errors.Is(err, ErrAuthFailed):
		return "Your session has expired. Sign in again."
	case errors.Is(err, ErrNotSignedIn):
		return "Sign in to " + action + "."
	case errors.Is(err, ErrItemNotFound):
		return fmt.Sprintf("Couldn't %s: item not found.", action)
	}
	if code := HTTPStatus(err); code != 0 {
		return fmt.Sprintf("Couldn't %s (status %d).", action, code)
	}
	return fmt.Sprintf("Couldn't %s.", action)
}
