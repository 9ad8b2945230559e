package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/valet/pkg/prompt"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = 2 * time.Second
)

// RetryingEngine retries rate-limited calls with a counted loop and fixed
// backoff. It is a loop rather than self-recursion so the attempt count and
// stack depth stay auditable. Non-rate-limit failures pass through untouched
// on the first attempt.
type RetryingEngine struct {
	inner    Engine
	attempts int
	backoff  time.Duration

	sleep func(context.Context, time.Duration) error
}

func NewRetryingEngine(inner Engine, attempts int, backoff time.Duration) *RetryingEngine {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	return &RetryingEngine{
		inner:    inner,
		attempts: attempts,
		backoff:  backoff,
		sleep:    sleepCtx,
	}
}

var _ Engine = (*RetryingEngine)(nil)

func (e *RetryingEngine) Generate(ctx context.Context, bundle *prompt.Bundle) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		text, err := e.inner.Generate(ctx, bundle)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return "", err
		}
		lastErr = err
		if attempt == e.attempts {
			break
		}
		log.Warn().
			Int("attempt", attempt).
			Int("max_attempts", e.attempts).
			Dur("backoff", e.backoff).
			Msg("engine: rate limited, backing off")
		if err := e.sleep(ctx, e.backoff); err != nil {
			return "", err
		}
	}
	return "", errors.Wrapf(lastErr, "giving up after %d attempts", e.attempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
