package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// shapeRejections are statuses that mean "this endpoint shape is not the one
// the server speaks" rather than "the server failed to process the request".
var shapeRejections = map[int]bool{
	http.StatusBadRequest:       true,
	http.StatusUnauthorized:     true,
	http.StatusForbidden:        true,
	http.StatusNotFound:         true,
	http.StatusMethodNotAllowed: true,
}

// attempt is one request shape in a negotiation.
type attempt struct {
	name       string
	send       func(ctx context.Context) error
	fallbackOn map[int]bool // Statuses that move on to the next attempt
}

// negotiate runs attempts in order until one succeeds. A failure advances to
// the next attempt only when its status is in that attempt's fallbackOn set;
// any other failure, or a failure of the last attempt, is returned as is.
// Each attempt is sent at most once.
func negotiate(ctx context.Context, logger *slog.Logger, attempts []attempt) error {
	if len(attempts) == 0 {
		return errors.New("no request shapes to try")
	}

	var err error
	for i, a := range attempts {
		err = a.send(ctx)
		if err == nil {
			logger.Debug("request shape accepted", "shape", a.name, "attempt", i)
			return nil
		}

		last := i == len(attempts)-1
		var se *StatusError
		if last || !errors.As(err, &se) || !a.fallbackOn[se.Code] {
			break
		}

		logger.Info("request shape rejected, trying next",
			"shape", a.name,
			"status", se.Code,
			"next", attempts[i+1].name,
		)
	}

	logger.Debug("no request shape accepted", "error", err)
	return err
}
