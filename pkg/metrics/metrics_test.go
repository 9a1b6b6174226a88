package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecstasoy/msgbus/pkg/channel"
)

func TestFrameCounters(t *testing.T) {
	m := New("test")

	m.ObserveSend(channel.Requester, 10, time.Millisecond, nil)
	m.ObserveSend(channel.Requester, 5, time.Millisecond, nil)
	m.ObserveReceive(channel.Replier, 0, time.Millisecond, errors.New("eof"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("requester", "send", "success")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.bytesTotal.WithLabelValues("requester", "send")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesTotal.WithLabelValues("replier", "receive", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.bytesTotal.WithLabelValues("replier", "receive")))
}

func TestHandlerAndRoundTrip(t *testing.T) {
	m := New("test")

	m.ObserveHandler(time.Millisecond, nil)
	m.ObserveHandler(time.Millisecond, errors.New("bad"))
	m.ObserveRoundTrip(2*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.handlerTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handlerTotal.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.roundTrip))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := New("msgbus")

	require.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg))

	m.ObserveRoundTrip(time.Millisecond, nil)
	m.ObserveHandler(time.Millisecond, nil)
	m.ObserveSend(channel.Requester, 1, time.Millisecond, nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "msgbus_round_trip_seconds")
	assert.Contains(t, names, "msgbus_handler_calls_total")
	assert.Contains(t, names, "msgbus_frames_total")
}
