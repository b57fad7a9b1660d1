package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerHour(t *testing.T) {
	limit := PerHour(5)
	assert.Equal(t, 5, limit.Rate)
	assert.Equal(t, 5, limit.Burst)
	assert.Equal(t, time.Hour, limit.Period)
}

func TestLocalLimiterEnforcesBurst(t *testing.T) {
	l := newLocalLimiter()
	limit := PerHour(3)

	for i := 0; i < 3; i++ {
		res, err := l.allow("ip:1.2.3.4", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d within burst must pass", i+1)
	}

	res, err := l.allow("ip:1.2.3.4", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestLocalLimiterKeysAreIndependent(t *testing.T) {
	l := newLocalLimiter()
	limit := PerHour(1)

	res, err := l.allow("ip:1.1.1.1", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.allow("ip:1.1.1.1", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed, "same key is exhausted")

	res, err = l.allow("ip:2.2.2.2", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "a different key has its own bucket")
}
