package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable covers transport failures, 5xx responses and an open
	// circuit breaker. It is retried with backoff.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrRecalculating is the upstream's "game is being updated" window
	// between gameweeks. It is never retried.
	ErrRecalculating = errors.New("upstream is recalculating")
	// ErrNotFound is a 404 for an unknown entry, league or gameweek.
	ErrNotFound = errors.New("upstream resource not found")
)

// recalculatingMarker appears in the 503 body during the update window.
const recalculatingMarker = "The game is being updated"

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("GET %s failed: %d body=%s", e.Path, e.Code, body)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return ErrNotFound
	case e.Code >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrRecalculating) && !errors.Is(err, errBreakerOpen)
}

var errBreakerOpen = errors.New("circuit breaker open")
