package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches any *APIError with status 404.
	ErrNotFound = errors.New("resource not found")
	// ErrUnavailable is returned without calling out while the breaker for a
	// backend is open.
	ErrUnavailable = errors.New("remote service unavailable")
)

// APIError is a non-2xx answer from a backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// isClientError reports 4xx answers, which say nothing about backend health.
func isClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
