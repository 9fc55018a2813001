package engine

import (
	"context"
	"database/sql/driver"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxTries       uint
	InitialWait    time.Duration
	MaxWait        time.Duration
	MaxElapsedTime time.Duration
}

// DefaultRetryConfig is suitable for opening database connections at startup.
var DefaultRetryConfig = RetryConfig{
	MaxTries:       5,
	InitialWait:    500 * time.Millisecond,
	MaxWait:        5 * time.Second,
	MaxElapsedTime: 30 * time.Second,
}

// RetryDo calls fn with exponential backoff until it succeeds, returns a
// non-retryable error, or the retry budget is spent.
func RetryDo[T any](ctx context.Context, rc RetryConfig, op string, fn func(context.Context) (T, error)) (T, error) {
	operation := func() (T, error) {
		v, err := fn(ctx)
		if err != nil && !isRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = rc.InitialWait
	bo.MaxInterval = rc.MaxWait

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(rc.MaxTries),
		backoff.WithMaxElapsedTime(rc.MaxElapsedTime),
		backoff.WithNotify(func(err error, wait time.Duration) {
			slog.Warn("retrying", slog.String("op", op), slog.Duration("wait", wait), slog.Any("error", err))
		}),
	)
}

// isRetryable returns true for transient connection errors worth retrying.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	// Connection errors (dial failures, connection refused, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// Timeout errors (net.Error includes OpError, so check after OpError)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
