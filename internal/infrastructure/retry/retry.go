package retry

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// ErrRateLimited can be wrapped by upstream adapters to flag a throttled call
var ErrRateLimited = errors.New("rate limited")

// Policy configures Do. The zero value performs a single attempt.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration

	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry is called before each wait with the 1-based retry number
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns 3 retries starting at one second
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
	}
}

// Do runs op and retries it while it fails with a rate-limit error.
// The delay doubles after every wait. Other errors, and the last rate-limit
// error once the budget is spent, are returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	delay := p.InitialDelay
	retries := p.MaxRetries

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if retries <= 0 || !IsRateLimited(err) {
			return result, err
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}

		if serr := sleep(ctx, delay); serr != nil {
			var zero T
			return zero, serr
		}

		delay *= 2
		retries--
	}
}

// IsRateLimited reports whether err signals upstream throttling (HTTP 429)
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == http.StatusTooManyRequests {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, http.StatusText(http.StatusTooManyRequests))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
