package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// backoff is the retry schedule for remote embedding calls
type backoff struct {
	attempts int
	initial  time.Duration
	ceiling  time.Duration
	factor   float64
}

func defaultBackoff() backoff {
	return backoff{
		attempts: MaxRetries,
		initial:  time.Duration(InitialBackoffMs) * time.Millisecond,
		ceiling:  time.Duration(MaxBackoffMs) * time.Millisecond,
		factor:   BackoffMultiplier,
	}
}

// next returns the delay that follows d
func (b backoff) next(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * b.factor)
	return min(d, b.ceiling)
}

// httpStatusError is a non-200 reply from an embedding endpoint
type httpStatusError struct {
	code int
	body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.code, e.body)
}

// retryable reports whether err may succeed on a later attempt. Client
// errors other than rate limiting fail immediately: a bad key or an
// unknown model will not fix itself.
func retryable(err error) bool {
	code := 0
	var se *httpStatusError
	var ae *openai.APIError
	var re *openai.RequestError
	switch {
	case errors.As(err, &se):
		code = se.code
	case errors.As(err, &ae):
		code = ae.HTTPStatusCode
	case errors.As(err, &re):
		code = re.HTTPStatusCode
	}
	if code == 0 || code == http.StatusTooManyRequests {
		return true
	}
	return code < 400 || code >= 500
}

// withRetry calls fn until it succeeds, fails permanently, ctx ends or
// the attempts run out. It returns the attempt count with the result.
func withRetry[T any](ctx context.Context, b backoff, fn func() (T, error)) (T, int, error) {
	var zero T
	delay := b.initial
	attempts := max(b.attempts, 1)

	for n := 1; ; n++ {
		result, err := fn()
		if err == nil {
			return result, n, nil
		}
		if ctx.Err() != nil {
			return zero, n, ctx.Err()
		}
		if n == attempts || !retryable(err) {
			return zero, n, err
		}

		select {
		case <-ctx.Done():
			return zero, n, ctx.Err()
		case <-time.After(delay):
			delay = b.next(delay)
		}
	}
}
