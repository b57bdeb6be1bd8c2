package helper

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"
)

type RetryableFunc[T any] func() (T, bool, error)

func RetryWithBackoff[T any](operation RetryableFunc[T], maxRetries int, baseDelay time.Duration) (T, error) {
	var err error
	var result T
	var shouldRetry bool

	for i := 0; i <= maxRetries; i++ {
		result, shouldRetry, err = operation()

		if err == nil {
			return result, nil
		}

		if !shouldRetry {
			return result, err
		}

		if i == maxRetries {
			break
		}

		delay := baseDelay * time.Duration(math.Pow(2, float64(i)))
		slog.Warn("Operation failed, retrying...", "attempt", i+1, "delay", delay, "error", err)
		time.Sleep(delay)
	}

	return result, fmt.Errorf("operation failed after %d attempts: %w", maxRetries+1, err)
}

// ShouldRetryHTTP reports whether an HTTP attempt is worth repeating.
// Transport errors always are; response statuses only for server-side
// failures and throttling.
func ShouldRetryHTTP(status int, err error) bool {
	if err != nil {
		return true
	}
	return status >= 500 || status == http.StatusTooManyRequests
}
