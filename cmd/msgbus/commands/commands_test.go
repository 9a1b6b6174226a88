package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecstasoy/msgbus/pkg/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "msgbus dev (protocol v1")
}

func TestLoopback(t *testing.T) {
	tests := [][]string{
		{"loopback", "-n", "50", "--log-level", "error"},
		{"loopback", "-n", "20", "--log-level", "error", "--codec", "protobuf", "--compress", "snappy"},
		{"loopback", "-n", "20", "--log-level", "error", "--bind", "ws://127.0.0.1:0/bus", "--rate", "1000"},
		{"loopback", "-n", "20", "--log-level", "error", "--bind", "ipc://" + filepath.Join(t.TempDir(), "loop.sock")},
	}

	for _, args := range tests {
		out, err := run(t, args...)
		require.NoError(t, err, args)
		assert.Contains(t, out, "Total time:")
		assert.Contains(t, out, "Average latency:")
		assert.Contains(t, out, "(0 errors)")
	}
}

func TestConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msgbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bench:\n  count: 7\nchannel:\n  codec: json\nlog:\n  level: error\n"), 0o600))

	out, err := run(t, "--config", path, "loopback", "--codec", "raw")
	require.NoError(t, err)
	assert.Contains(t, out, "Messages: 7 (0 errors)")
	assert.Equal(t, "raw", cfg.Channel.Codec)
	assert.Equal(t, 7, cfg.Bench.Count)
}

func TestInvalidSettings(t *testing.T) {
	_, err := run(t, "version", "--compress", "lz4")
	assert.ErrorContains(t, err, "unknown compressor")

	_, err = run(t, "ping", "-n", "1", "--log-level", "error", "--connect", "tcp://127.0.0.1:1")
	assert.Error(t, err)
}

func TestDialable(t *testing.T) {
	assert.Equal(t, "tcp://127.0.0.1:5555", dialable("tcp://[::]:5555"))
	assert.Equal(t, "ws://127.0.0.1:80/bus", dialable("ws://0.0.0.0:80/bus"))
	assert.Equal(t, "tcp://10.1.1.1:5555", dialable("tcp://10.1.1.1:5555"))
	assert.Equal(t, "ipc:///tmp/x.sock", dialable("ipc:///tmp/x.sock"))
}

func TestSetupLogging(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, setupLogging(config.LogConfig{Level: "info", Format: "json"}, &out))
	assert.Error(t, setupLogging(config.LogConfig{Level: "loud"}, &out))
}
