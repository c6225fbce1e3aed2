// Package retrier provides bounded retry for units of work that open their
// own DB-session per attempt
package retrier

import (
	"context"
	"time"

	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/wb-go/wbf/retry"
)

// DefaultStrategy - 3 попытки всего; задержка только чтобы не долбить
// упавший сервис в ту же миллисекунду
var DefaultStrategy = retry.Strategy{
	Attempts: 3,
	Delay:    200 * time.Millisecond,
	Backoff:  2,
}

// Do runs fn up to strategy.Attempts times. Client-input errors are
// deterministic, so they stop the loop on the first attempt. The last
// error is returned unchanged - callers match it with errors.Is.
//
// fn must be self-contained: it opens a fresh session, rolls back and
// releases it on failure, so a next attempt starts from a clean slate.
func Do(ctx context.Context, strategy retry.Strategy, fn func(ctx context.Context) error) error {
	attempts := strategy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	delay := strategy.Delay
	var err error

	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if model.IsClientErr(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * strategy.Backoff)
	}

	return err
}
