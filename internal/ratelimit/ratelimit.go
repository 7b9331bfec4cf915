// Package ratelimit shares a request quota between concurrent callers of an
// external capability. Limits are a token bucket with an optional backoff
// window opened by 429 responses.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is used when a 429 response carries no Retry-After.
const DefaultBackoff = 60 * time.Second

// Config holds rate limiting configuration for one capability.
type Config struct {
	// RequestsPerSecond is the sustained rate limit. Zero or less disables limiting.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size. Defaults to the ceiling of RequestsPerSecond.
	BurstSize int
}

// TooManyRequestsError is returned by adapters when a service answers 429.
type TooManyRequestsError struct {
	// RetryAfter is how long the service asked callers to wait.
	RetryAfter time.Duration
}

func (e *TooManyRequestsError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// FromResponse builds a TooManyRequestsError from a 429 response,
// honouring a Retry-After header given in seconds or as an HTTP date.
func FromResponse(resp *http.Response) *TooManyRequestsError {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return &TooManyRequestsError{}
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return &TooManyRequestsError{RetryAfter: time.Duration(secs) * time.Second}
	}
	if at, err := http.ParseTime(header); err == nil {
		return &TooManyRequestsError{RetryAfter: time.Until(at)}
	}
	return &TooManyRequestsError{}
}

// Limiter gates requests to one capability.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter. A non-positive rate yields an unlimited limiter
// that still honours backoff.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RequestsPerSecond))
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window of the given length.
func (l *Limiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if at := time.Now().Add(retryAfter); at.After(l.retryAt) {
		l.retryAt = at
	}
}

// Allow reports whether a request can be made immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}

	return l.limiter.Allow()
}

// observe opens a backoff window when err reports a 429.
func (l *Limiter) observe(err error) {
	var tooMany *TooManyRequestsError
	if errors.As(err, &tooMany) {
		l.RecordRateLimitError(tooMany.RetryAfter)
	}
}
