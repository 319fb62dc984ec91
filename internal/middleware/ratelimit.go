package middleware

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limit exceeded")

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

// RateLimitConfig holds the per-user token bucket settings.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate (tokens added per second).
	RequestsPerSecond float64
	// Burst is the bucket size.
	Burst int
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated user.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu        sync.Mutex
	users     map[string]*userLimiter
	lastSweep time.Time
}

// NewRateLimiter creates a limiter with cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:   cfg,
		now:   time.Now,
		users: make(map[string]*userLimiter),
	}
}

// Allow reports whether userID may make a call now. When it may not, the
// returned duration is how long until it may.
func (l *RateLimiter) Allow(userID string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) > limiterSweepEvery {
		for id, u := range l.users {
			if now.Sub(u.lastSeen) > limiterIdleTTL {
				delete(l.users, id)
			}
		}
		l.lastSweep = now
	}
	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.users[userID] = u
	}
	u.lastSeen = now
	l.mu.Unlock()

	reservation := u.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Interceptor rejects calls over the limit with resource_exhausted. It must
// run after RequireAuth; calls without a user share one bucket.
func (l *RateLimiter) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ok, retryAfter := l.Allow(GetUserID(ctx))
			if !ok {
				connectErr := connect.NewError(connect.CodeResourceExhausted, ErrRateLimited)
				if retryAfter > 0 {
					connectErr.Meta().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				}
				return nil, connectErr
			}
			return next(ctx, req)
		}
	}
}
