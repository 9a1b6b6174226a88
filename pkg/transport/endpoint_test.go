package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		addr string
		want Endpoint
	}{
		{"tcp://localhost:5555", Endpoint{Scheme: "tcp", Host: "localhost", Port: 5555}},
		{"TCP://127.0.0.1:0", Endpoint{Scheme: "tcp", Host: "127.0.0.1", Port: 0}},
		{"tcp://*:5555", Endpoint{Scheme: "tcp", Host: "", Port: 5555}},
		{"tcp://[::1]:7000", Endpoint{Scheme: "tcp", Host: "::1", Port: 7000}},
		{"ipc:///tmp/msgbus.sock", Endpoint{Scheme: "ipc", Path: "/tmp/msgbus.sock"}},
		{"ws://localhost:8080", Endpoint{Scheme: "ws", Host: "localhost", Port: 8080, Path: "/"}},
		{"ws://localhost:8080/bus", Endpoint{Scheme: "ws", Host: "localhost", Port: 8080, Path: "/bus"}},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			ep, err := ParseEndpoint(tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ep)
		})
	}
}

func TestParseEndpointInvalid(t *testing.T) {
	for _, addr := range []string{
		"",
		"localhost:5555",
		"tcp://",
		"tcp://localhost",
		"tcp://localhost:http",
		"tcp://localhost:70000",
		"://localhost:1",
	} {
		t.Run(addr, func(t *testing.T) {
			_, err := ParseEndpoint(addr)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}

	_, err := ParseEndpoint("udp://localhost:5555")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestEndpointString(t *testing.T) {
	for _, addr := range []string{
		"tcp://localhost:5555",
		"ipc:///tmp/msgbus.sock",
		"ws://localhost:8080/bus",
	} {
		ep, err := ParseEndpoint(addr)
		require.NoError(t, err)
		assert.Equal(t, addr, ep.String())
	}

	ep, err := ParseEndpoint("ipc:///tmp/x.sock")
	require.NoError(t, err)
	assert.Equal(t, "unix", ep.Network())
	assert.Equal(t, "/tmp/x.sock", ep.HostPort())
}

func TestDialUnknownScheme(t *testing.T) {
	_, err := Dial(testContext(t), "udp://localhost:1")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

// testContext stands in for testing.T.Context (Go 1.24+): a context
// canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
