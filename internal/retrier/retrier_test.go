package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Quickstand/PhotoVault/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

var testStrategy = retry.Strategy{Attempts: 3, Delay: time.Millisecond, Backoff: 1}

// SUCCESS - FIRST ATTEMPT
func TestDo_FirstAttemptOK(t *testing.T) {
	calls := 0

	err := Do(context.Background(), testStrategy, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

// SUCCESS - AFTER TRANSIENT FAULT
func TestDo_RecoversAfterFault(t *testing.T) {
	calls := 0

	err := Do(context.Background(), testStrategy, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("db down")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

// EXHAUSTION - LAST ERROR UNCHANGED
func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("still down")

	err := Do(context.Background(), testStrategy, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("down")
		}
		return last
	})

	require.ErrorIs(t, err, last)
	require.Equal(t, 3, calls)
}

// CLIENT ERROR - NO RETRY
func TestDo_ClientErrorShortCircuits(t *testing.T) {
	calls := 0

	err := Do(context.Background(), testStrategy, func(ctx context.Context) error {
		calls++
		return model.ErrNoSuchUser
	})

	require.ErrorIs(t, err, model.ErrNoSuchUser)
	require.Equal(t, 1, calls)
}

// WRAPPED CLIENT ERROR - STILL NO RETRY
func TestDo_WrappedClientError(t *testing.T) {
	calls := 0

	err := Do(context.Background(), testStrategy, func(ctx context.Context) error {
		calls++
		return errors.Join(errors.New("lookup failed"), model.ErrNoSuchAsset)
	})

	require.ErrorIs(t, err, model.ErrNoSuchAsset)
	require.Equal(t, 1, calls)
}

// CANCELED CONTEXT - NO FURTHER ATTEMPTS
func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, testStrategy, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}
