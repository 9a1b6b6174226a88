package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBucket(t *testing.T, rate, capacity int64) (*TokenBucketLimiter, *time.Time) {
	t.Helper()

	tb, err := NewTokenBucketLimiter(rate, capacity)
	require.NoError(t, err)

	clock := tb.lastUpdate
	tb.now = func() time.Time { return clock }
	return tb, &clock
}

func TestTokenBucketBurstAndRefill(t *testing.T) {
	ctx := context.Background()
	tb, clock := newTestBucket(t, 10, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(ctx), "token %d", i)
	}
	assert.False(t, tb.Allow(ctx))

	*clock = clock.Add(50 * time.Millisecond)
	assert.False(t, tb.Allow(ctx))

	*clock = clock.Add(50 * time.Millisecond)
	assert.True(t, tb.Allow(ctx))
	assert.False(t, tb.Allow(ctx))

	*clock = clock.Add(time.Hour)
	assert.True(t, tb.AllowN(ctx, 3))
	assert.False(t, tb.Allow(ctx))
}

func TestTokenBucketWaitTime(t *testing.T) {
	tb, clock := newTestBucket(t, 10, 1)

	_, ok := tb.take(1)
	require.True(t, ok)

	*clock = clock.Add(30 * time.Millisecond)
	wait, ok := tb.take(1)
	assert.False(t, ok)
	assert.Equal(t, 70*time.Millisecond, wait)
}

func TestTokenBucketWait(t *testing.T) {
	tb, err := NewTokenBucketLimiter(1000, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, tb.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 3*time.Millisecond)
}

func TestTokenBucketWaitCanceled(t *testing.T) {
	tb, err := NewTokenBucketLimiter(1, 1)
	require.NoError(t, err)
	require.True(t, tb.Allow(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)
	assert.ErrorIs(t, tb.WaitN(context.Background(), 2), ErrInvalidRequest)
}

func TestNew(t *testing.T) {
	l, err := New(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "unlimited", l.Name())
	assert.True(t, l.AllowN(context.Background(), 1<<20))

	l, err = New(100, 0)
	require.NoError(t, err)
	assert.Equal(t, "token-bucket", l.Name())

	_, err = NewTokenBucketLimiter(-1, 1)
	assert.ErrorIs(t, err, ErrInvalidRate)
}
