package tms570

import (
	"errors"
	"fmt"
)

var (
	ErrPreloadRange = errors.New("watchdog preload out of range")
	ErrChannel      = errors.New("invalid interrupt channel")
	ErrClock        = errors.New("watchdog clock is zero")
)

// PreloadError reports an expiration time the watchdog cannot represent.
type PreloadError struct {
	Expire  uint32
	Preload int64
}

func (e *PreloadError) Error() string {
	return fmt.Sprintf("%v: expire %dus gives preload %d, want 0..%d", ErrPreloadRange, e.Expire, e.Preload, MaxPreload-1)
}

func (e *PreloadError) Unwrap() error {
	return ErrPreloadRange
}
