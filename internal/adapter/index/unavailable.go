package index

import (
	"context"
	"fmt"

	"jfinder/internal/apperr"
	"jfinder/internal/port"
)

// Unavailable is the index handle used when the backend could not be
// reached at startup. Every operation fails with ErrIndexUnavailable
// wrapping the original connect error, so the process starts cleanly and
// callers get a consistent, catchable failure instead of a crash.
type Unavailable struct {
	cause error
}

// NewUnavailable creates an Unavailable index recording why the real
// backend could not be connected.
func NewUnavailable(cause error) *Unavailable {
	return &Unavailable{cause: cause}
}

func (u *Unavailable) Upsert(context.Context, []port.IndexItem) error {
	return u.err()
}

func (u *Unavailable) Query(context.Context, []float32, int) ([]port.IndexResult, error) {
	return nil, u.err()
}

func (u *Unavailable) Count(context.Context) (int, error) {
	return 0, u.err()
}

func (u *Unavailable) err() error {
	return fmt.Errorf("%w: not connected: %v", apperr.ErrIndexUnavailable, u.cause)
}
