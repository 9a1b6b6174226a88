package interceptor_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecstasoy/msgbus/pkg/interceptor"
	"github.com/ecstasoy/msgbus/pkg/ratelimiter"
)

func echo(_ context.Context, payload []byte) ([]byte, error) {
	return payload, nil
}

func tag(name string, trace *[]string) interceptor.Interceptor {
	return func(ctx context.Context, payload []byte, next interceptor.Handler) ([]byte, error) {
		*trace = append(*trace, name+":in")
		reply, err := next(ctx, payload)
		*trace = append(*trace, name+":out")
		return reply, err
	}
}

func TestChainOrder(t *testing.T) {
	var trace []string
	chain := interceptor.NewChain(tag("a", &trace), tag("b", &trace))

	reply, err := chain.Intercept(context.Background(), []byte("x"), echo)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), reply)
	assert.Equal(t, []string{"a:in", "b:in", "b:out", "a:out"}, trace)
}

func TestEmptyChain(t *testing.T) {
	reply, err := interceptor.NewChain().Intercept(context.Background(), []byte("x"), echo)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), reply)
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	handler := interceptor.NewChain(interceptor.Recovery(zerolog.New(&logs))).Then(
		func(context.Context, []byte) ([]byte, error) {
			panic("boom")
		},
	)

	reply, err := handler(context.Background(), []byte("x"))
	assert.Nil(t, reply)
	require.ErrorIs(t, err, interceptor.ErrPanic)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	chain := interceptor.NewChain(interceptor.Logging(logger))

	_, err := chain.Intercept(context.Background(), []byte("abc"), echo)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"message":"handler succeeded"`)
	assert.Contains(t, logs.String(), `"reply_bytes":3`)

	logs.Reset()
	_, err = chain.Intercept(context.Background(), []byte("abc"), func(context.Context, []byte) ([]byte, error) {
		return nil, errors.New("bad request")
	})
	require.Error(t, err)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "bad request")
}

type handlerRecorder struct {
	ok, failed int
}

func (r *handlerRecorder) ObserveHandler(_ time.Duration, err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func TestMetrics(t *testing.T) {
	rec := &handlerRecorder{}
	chain := interceptor.NewChain(interceptor.Metrics(rec))

	_, _ = chain.Intercept(context.Background(), []byte("x"), echo)
	_, _ = chain.Intercept(context.Background(), []byte("x"), func(context.Context, []byte) ([]byte, error) {
		return nil, errors.New("nope")
	})

	assert.Equal(t, 1, rec.ok)
	assert.Equal(t, 1, rec.failed)
}

func TestRateLimit(t *testing.T) {
	limiter, err := ratelimiter.NewTokenBucketLimiter(1, 2)
	require.NoError(t, err)
	chain := interceptor.NewChain(interceptor.RateLimit(limiter))

	for i := 0; i < 2; i++ {
		_, err := chain.Intercept(context.Background(), []byte("x"), echo)
		require.NoError(t, err)
	}

	_, err = chain.Intercept(context.Background(), []byte("x"), echo)
	assert.ErrorIs(t, err, ratelimiter.ErrRateLimitExceeded)
}
