// Package ratelimit throttles the public read endpoints per client IP with
// a sliding window.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"zns/pkg/platform/circuit"
	"zns/pkg/platform/httputil"
	"zns/pkg/platform/middleware/metadata"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the number of whole seconds until the window frees a slot.
func (r Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}

// Store counts requests per key.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Limiter is HTTP middleware enforcing limit requests per window per IP.
type Limiter struct {
	store    Store
	fallback Store
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithFallback counts in fallback while breaker is open. The primary store
// is still consulted on every request so the breaker can close again.
func WithFallback(fallback Store, breaker *circuit.Breaker) Option {
	return func(l *Limiter) {
		l.fallback = fallback
		l.breaker = breaker
	}
}

// New creates a Limiter. logger may be nil.
func New(store Store, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{store: store, limit: limit, window: window, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Middleware rejects requests over the limit with 429. Responses served from
// the fallback carry X-RateLimit-Status: degraded. With no usable store the
// request goes through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := metadata.GetClientIP(ctx)
		if ip == "" {
			ip = metadata.ClientIPFromRequest(r)
		}
		res, degraded, err := l.allow(ctx, "ip:"+ip)
		if err != nil {
			if l.logger != nil {
				l.logger.WarnContext(ctx, "rate limit check failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		if degraded {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
		if !res.Allowed {
			retry := res.RetryAfter(time.Now())
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"retry_after": retry,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) allow(ctx context.Context, key string) (Result, bool, error) {
	res, err := l.store.Allow(ctx, key, l.limit, l.window)
	if l.breaker == nil {
		return res, false, err
	}

	var usePrimary bool
	var change circuit.StateChange
	if err != nil {
		var useFallback bool
		useFallback, change = l.breaker.RecordFailure()
		usePrimary = !useFallback
	} else {
		usePrimary, change = l.breaker.RecordSuccess()
	}
	if l.logger != nil {
		switch {
		case change.Opened:
			l.logger.WarnContext(ctx, "rate limit store unavailable, using fallback", "breaker", l.breaker.Name(), "error", err)
		case change.Closed:
			l.logger.InfoContext(ctx, "rate limit store recovered", "breaker", l.breaker.Name())
		}
	}
	if usePrimary {
		return res, false, err
	}
	res, err = l.fallback.Allow(ctx, key, l.limit, l.window)
	return res, true, err
}
