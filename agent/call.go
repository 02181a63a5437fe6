package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/router/core/protocol"
	"github.com/tailored-agentic-units/router/observability"
)

const (
	EventCallRetry   observability.EventType = "agent.call.retry"
	EventCallFailure observability.EventType = "agent.call.failure"
)

// call runs one completer request with a per-attempt timeout, retrying
// retryable failures with linear backoff.
func (a *Agent) call(ctx context.Context, op string, messages []protocol.Message) (string, error) {
	timeout := a.cfg.Timeout.Std()
	backoff := a.cfg.RetryBackoff.Std()

	retries := max(a.cfg.MaxRetries, 0)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			wait := backoff * time.Duration(attempt)
			observability.Emit(ctx, a.observer, EventCallRetry, observability.LevelWarning, "agent", map[string]any{
				"op":      op,
				"attempt": attempt,
				"wait":    wait,
				"error":   lastErr,
			})

			select {
			case <-ctx.Done():
				return "", a.unavailable(ctx, op, attempt, ctx.Err())
			case <-time.After(wait):
			}
		}

		reply, err := a.attempt(ctx, timeout, messages)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if ctx.Err() != nil || !Retryable(err) {
			return "", a.unavailable(ctx, op, attempt+1, err)
		}
	}

	return "", a.unavailable(ctx, op, retries+1, lastErr)
}

func (a *Agent) attempt(ctx context.Context, timeout time.Duration, messages []protocol.Message) (string, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return a.completer.Complete(callCtx, messages)
}

func (a *Agent) unavailable(ctx context.Context, op string, attempts int, err error) error {
	observability.Emit(ctx, a.observer, EventCallFailure, observability.LevelError, "agent", map[string]any{
		"op":       op,
		"attempts": attempts,
		"error":    err,
	})
	return fmt.Errorf("%w: %s after %d attempt(s): %w", ErrPortUnavailable, op, attempts, err)
}
