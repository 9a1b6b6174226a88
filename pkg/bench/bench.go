// Kunhua Huang 2026

package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecstasoy/msgbus/pkg/codec"
	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/ratelimiter"
)

var ErrNoMessages = errors.New("message count must be positive")

// Caller performs one request/reply round trip.
type Caller interface {
	Call(ctx context.Context, payload []byte) ([]byte, error)
}

// Runner measures the latency of Count round trips over Client.
type Runner struct {
	Client  Caller
	Count   int
	Payload []byte
	Limiter ratelimiter.RateLimiter
	Logger  zerolog.Logger
}

func NewRunner(client Caller, count int, payload []byte) *Runner {
	return &Runner{
		Client:  client,
		Count:   count,
		Payload: payload,
		Limiter: ratelimiter.Unlimited{},
		Logger:  log.Logger.With().Str("module", "bench").Logger(),
	}
}

// Run performs the round trips one after another. Failed calls are counted
// and skipped. If ctx ends early the partial report is returned with
// ctx's error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.Count <= 0 {
		return nil, ErrNoMessages
	}

	limiter := r.Limiter
	if limiter == nil {
		limiter = ratelimiter.Unlimited{}
	}

	report := &Report{RunID: uuid.NewString()}
	latencies := make([]time.Duration, 0, r.Count)
	logger := r.Logger.With().Str("run_id", report.RunID).Logger()

	logger.Info().Int("count", r.Count).Str("limiter", limiter.Name()).Msg("benchmark started")

	var runErr error
	start := time.Now()
	for i := 0; i < r.Count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			runErr = err
			break
		}

		callStart := time.Now()
		_, err := r.Client.Call(ctx, r.Payload)
		elapsed := time.Since(callStart)

		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			report.Errors++
			logger.Debug().Err(err).Int("index", i).Msg("call failed")
			continue
		}
		latencies = append(latencies, elapsed)
	}
	report.Total = time.Since(start)
	report.summarize(latencies)

	logger.Info().
		Int("count", report.Count).
		Int("errors", report.Errors).
		Dur("total", report.Total).
		Dur("mean", report.Mean).
		Msg("benchmark finished")

	return report, runErr
}

type Report struct {
	RunID  string
	Count  int // successful round trips
	Errors int

	Total time.Duration
	Mean  time.Duration
	Min   time.Duration
	Max   time.Duration
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration

	Throughput float64 // round trips per second
}

func (rp *Report) summarize(latencies []time.Duration) {
	rp.Count = len(latencies)
	if rp.Count == 0 {
		return
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	rp.Mean = sum / time.Duration(rp.Count)
	rp.Min = latencies[0]
	rp.Max = latencies[rp.Count-1]
	rp.P50 = percentile(latencies, 0.50)
	rp.P90 = percentile(latencies, 0.90)
	rp.P99 = percentile(latencies, 0.99)

	if rp.Total > 0 {
		rp.Throughput = float64(rp.Count) / rp.Total.Seconds()
	}
}

// percentile uses the nearest-rank method on sorted latencies.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func (rp *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", rp.RunID)
	fmt.Fprintf(&b, "Messages: %d (%d errors)\n", rp.Count, rp.Errors)
	fmt.Fprintf(&b, "Total time: %.2f seconds\n", rp.Total.Seconds())
	fmt.Fprintf(&b, "Average latency: %.3f ms\n", float64(rp.Mean)/float64(time.Millisecond))
	fmt.Fprintf(&b, "Latency min/p50/p90/p99/max: %v / %v / %v / %v / %v\n", rp.Min, rp.P50, rp.P90, rp.P99, rp.Max)
	fmt.Fprintf(&b, "Throughput: %.0f msg/s", rp.Throughput)
	return b.String()
}

// Payload serializes the sample message {"key": "value"} with the given
// codec. The raw codec sends its JSON text.
func Payload(codecType protocol.CodecType) ([]byte, error) {
	message := map[string]any{"key": "value"}

	if codecType == protocol.CodecTypeRaw {
		codecType = protocol.CodecTypeJSON
	}

	c := codec.Get(codecType)
	if c == nil {
		return nil, fmt.Errorf("no codec registered for %s", codecType)
	}

	payload, err := c.Encode(message)
	if err != nil {
		return nil, fmt.Errorf("encode sample message: %w", err)
	}
	return payload, nil
}
