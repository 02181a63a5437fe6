package agent

import (
	"context"
	"errors"
)

var (
	// ErrPortUnavailable marks a classifier or generator call that failed,
	// timed out or exhausted its retries.
	ErrPortUnavailable = errors.New("port unavailable")

	ErrUnknownProvider = errors.New("unknown provider")
	ErrProviderExists  = errors.New("provider already registered")
	ErrEmptyProvider   = errors.New("provider name cannot be empty")
)

// Retryable reports whether a completer error is worth another attempt.
// Errors opt in by implementing Retryable() bool; deadline errors from an
// attempt's own timeout are retried as well.
func Retryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
