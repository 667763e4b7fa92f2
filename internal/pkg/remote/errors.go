package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/store"
)

var (
	// ErrUnavailable means the server could not be reached or did not answer in time.
	ErrUnavailable = errors.New("remote store unavailable")
	// ErrNotFound is matched by a 404 StatusError. It also matches store.ErrNotFound.
	ErrNotFound = fmt.Errorf("remote %w", store.ErrNotFound)
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote returned %d", e.StatusCode)
	}
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return e.StatusCode == http.StatusNotFound && (target == ErrNotFound || target == store.ErrNotFound)
}

// IsRetryable reports whether a later attempt of the same call can succeed:
// connectivity failures, timeouts, throttling and 5xx answers.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode >= 500:
			return true
		case statusErr.StatusCode == http.StatusRequestTimeout, statusErr.StatusCode == http.StatusTooManyRequests:
			return true
		}
	}
	return false
}
