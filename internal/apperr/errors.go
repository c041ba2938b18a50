// Package apperr defines the error kinds shared across the service.
// Handlers and callers branch on these with errors.Is instead of matching
// message text.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates malformed or missing caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEncoding indicates the text encoder failed to produce a vector.
	ErrEncoding = errors.New("encoding failed")

	// ErrIndexUnavailable indicates the vector index backend cannot be reached.
	ErrIndexUnavailable = errors.New("similarity index unavailable")

	// ErrIndexQuery indicates the index rejected a query it did receive.
	ErrIndexQuery = errors.New("similarity index query failed")

	// ErrSearchFailed wraps any encoder or index failure inside the
	// retrieval pipeline.
	ErrSearchFailed = errors.New("search failed")

	// ErrMissingAPIKey indicates the generation API key is absent or still
	// a placeholder. Detected before any network call.
	ErrMissingAPIKey = errors.New("generation API key missing or placeholder")

	// ErrAuth indicates the generation API rejected the credentials.
	ErrAuth = errors.New("generation API rejected credentials")

	// ErrRateLimited indicates the generation API returned a rate limit.
	ErrRateLimited = errors.New("generation API rate limit exceeded")

	// ErrBlocked indicates the generation API returned no usable candidate
	// (content filtered or empty generation).
	ErrBlocked = errors.New("generation blocked or empty")

	// ErrUpstream indicates a server-side error from the generation API.
	ErrUpstream = errors.New("generation API server error")

	// ErrNetwork indicates a transport failure reaching the generation API.
	ErrNetwork = errors.New("network error reaching generation API")
)

// UpstreamError carries the HTTP status the generation API returned so the
// proxy can propagate it.
type UpstreamError struct {
	StatusCode int
	Kind       error
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

// UpstreamStatus extracts the upstream HTTP status from err, if present.
func UpstreamStatus(err error) (int, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode, true
	}
	return 0, false
}
