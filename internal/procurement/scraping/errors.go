package scraping

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFetchFailed wraps every failed page fetch
	ErrFetchFailed = errors.New("fetch failed")
	// ErrUnexpectedStatus is matched by StatusError
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrNoPair is returned when a URL has no counterpart in the other locale
	ErrNoPair = errors.New("no counterpart URL")
	// ErrPageTooLarge is returned for bodies over MaxPageSize
	ErrPageTooLarge = errors.New("page too large")
)

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes StatusError match ErrUnexpectedStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Retryable reports whether the server may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
