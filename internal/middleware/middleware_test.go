package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/expensecmd/internal/auth"
	"github.com/mmynk/expensecmd/internal/models"
)

type ping struct{}

func captureUser(seen *context.Context) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		*seen = ctx
		return connect.NewResponse(&ping{}), nil
	}
}

func TestRequireAuth(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour)
	token, err := m.Generate(&models.User{ID: "user-1", Email: "u@example.com", TimeZone: "UTC"})
	require.NoError(t, err)

	t.Run("valid token populates context", func(t *testing.T) {
		var seen context.Context
		req := connect.NewRequest(&ping{})
		req.Header().Set("Authorization", "Bearer "+token)

		_, err := RequireAuth(m)(captureUser(&seen))(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", GetUserID(seen))
		assert.Equal(t, "u@example.com", GetEmail(seen))
		assert.Equal(t, time.UTC, GetLocation(seen))
	})

	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"empty":      "Bearer ",
		"bad token":  "Bearer nope",
	} {
		t.Run(name, func(t *testing.T) {
			var seen context.Context
			req := connect.NewRequest(&ping{})
			if header != "" {
				req.Header().Set("Authorization", header)
			}
			_, err := RequireAuth(m)(captureUser(&seen))(context.Background(), req)
			assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
			assert.Nil(t, seen)
		})
	}
}

func TestGetLocation_DefaultsToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, GetLocation(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("alice")
	assert.True(t, ok)
	ok, _ = l.Allow("alice")
	assert.True(t, ok)

	ok, retry := l.Allow("alice")
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))

	ok, _ = l.Allow("bob")
	assert.True(t, ok, "users have separate buckets")

	now = now.Add(time.Second)
	ok, _ = l.Allow("alice")
	assert.True(t, ok, "bucket refills over time")
}

func TestRateLimiter_SweepsIdleUsers(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	l.now = func() time.Time { return now }

	l.Allow("alice")
	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("bob")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.users, "alice")
	assert.Contains(t, l.users, "bob")
}

func TestRateLimiter_Interceptor(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})
	ctx := WithUser(context.Background(), "alice", "", nil)
	var seen context.Context
	call := l.Interceptor()(captureUser(&seen))

	_, err := call(ctx, connect.NewRequest(&ping{}))
	require.NoError(t, err)

	_, err = call(ctx, connect.NewRequest(&ping{}))
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	var connectErr *connect.Error
	require.ErrorAs(t, err, &connectErr)
	assert.NotEmpty(t, connectErr.Meta().Get("Retry-After"))
}
