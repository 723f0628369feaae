// Package retry implements the exponential-backoff policy applied to
// transient remote-service failures.
package retry

import (
	"context"
	"time"

	"github.com/cvbridge/ticketing/internal/core/domain"
)

// Policy describes a capped exponential backoff. The zero value is unusable;
// use Default or build one from configuration.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// Default is the policy applied when configuration provides none.
var Default = Policy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, Multiplier: 2.0}

// Do runs fn up to MaxAttempts times, sleeping BaseDelay*Multiplier^n
// between attempts. Only transient-class errors are retried; authorization
// and validation failures surface immediately. The last error is returned
// when all attempts fail.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if sleepErr := sleep(ctx, delay); sleepErr != nil {
				return err
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		if !domain.Transient(err) {
			return err
		}
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
