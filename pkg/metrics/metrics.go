// Kunhua Huang 2026

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ecstasoy/msgbus/pkg/channel"
)

// Metrics collects channel traffic, client round trips and server handler
// outcomes. One value can observe any number of channels.
type Metrics struct {
	framesTotal     *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	frameDuration   *prometheus.HistogramVec
	roundTrip       *prometheus.HistogramVec
	handlerTotal    *prometheus.CounterVec
	handlerDuration prometheus.Histogram
}

var _ channel.Observer = (*Metrics)(nil)

func New(namespace string) *Metrics {
	return &Metrics{
		framesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of frames sent and received",
			},
			[]string{"role", "direction", "status"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payload_bytes_total",
				Help:      "Total payload bytes sent and received",
			},
			[]string{"role", "direction"},
		),
		frameDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_duration_seconds",
				Help:      "Time spent writing or waiting for a frame",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"role", "direction"},
		),
		roundTrip: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "round_trip_seconds",
				Help:      "Latency of one request and its reply",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 20),
			},
			[]string{"status"},
		),
		handlerTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_calls_total",
				Help:      "Total number of requests handled by the replier",
			},
			[]string{"status"},
		),
		handlerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handler_duration_seconds",
				Help:      "Duration of request handling in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.framesTotal,
		m.bytesTotal,
		m.frameDuration,
		m.roundTrip,
		m.handlerTotal,
		m.handlerDuration,
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveSend(role channel.Role, bytes int, elapsed time.Duration, err error) {
	m.observeFrame(role, "send", bytes, elapsed, err)
}

func (m *Metrics) ObserveReceive(role channel.Role, bytes int, elapsed time.Duration, err error) {
	m.observeFrame(role, "receive", bytes, elapsed, err)
}

func (m *Metrics) observeFrame(role channel.Role, direction string, bytes int, elapsed time.Duration, err error) {
	r := role.String()
	m.framesTotal.WithLabelValues(r, direction, status(err)).Inc()
	m.frameDuration.WithLabelValues(r, direction).Observe(elapsed.Seconds())
	if err == nil {
		m.bytesTotal.WithLabelValues(r, direction).Add(float64(bytes))
	}
}

func (m *Metrics) ObserveRoundTrip(elapsed time.Duration, err error) {
	m.roundTrip.WithLabelValues(status(err)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHandler(elapsed time.Duration, err error) {
	m.handlerTotal.WithLabelValues(status(err)).Inc()
	m.handlerDuration.Observe(elapsed.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
