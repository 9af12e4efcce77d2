package portal

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mmcdole/lumen/internal/domain"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code   int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d - %s", e.Method, e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// HTTPStatus lets packages that do not import portal read the status.
func (e *StatusError) HTTPStatus() int { return e.Code }

// Is lets callers match 401 and 404 against the domain sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case domain.ErrAuthFailed:
		return e.Code == http.StatusUnauthorized
	case domain.ErrItemNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0 if err carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
