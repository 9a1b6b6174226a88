package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ecstasoy/msgbus/pkg/protocol"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "msgbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOverDefaults(t *testing.T) {
	path := writeFile(t, `
channel:
  connect: ws://10.0.0.2:8080/bus
  codec: protobuf
  call_timeout: 250ms
transport:
  max_frame_size: 65536
bench:
  rate: 500
log:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://10.0.0.2:8080/bus", cfg.Channel.Connect)
	assert.Equal(t, "tcp://*:5555", cfg.Channel.Bind)
	assert.Equal(t, 250*time.Millisecond, cfg.Channel.CallTimeout.Duration)
	assert.Equal(t, uint32(65536), cfg.Transport.MaxFrameSize)
	assert.Equal(t, 5*time.Second, cfg.Transport.DialTimeout.Duration)
	assert.Equal(t, int64(500), cfg.Bench.Rate)
	assert.Equal(t, 10000, cfg.Bench.Count)
	assert.Equal(t, "json", cfg.Log.Format)

	codec, err := cfg.Channel.CodecType()
	require.NoError(t, err)
	assert.Equal(t, protocol.CodecTypeProtobuf, codec)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "channel:\n  call_timeout: soon\n"))
	assert.ErrorContains(t, err, "invalid duration")

	_, err = Load(writeFile(t, "channel:\n  codec: xml\n  compress: lz4\n"))
	assert.ErrorContains(t, err, `unknown codec "xml"`)
	assert.ErrorContains(t, err, `unknown compressor "lz4"`)
}

func TestOverride(t *testing.T) {
	cfg := Default()

	v := viper.New()
	v.Set(KeyCodec, "protobuf")
	v.Set(KeyCallTimeout, "2s")
	v.Set(KeyBenchCount, 42)
	v.Set(KeyMaxFrameSize, 1024)

	require.NoError(t, cfg.Override(v))
	assert.Equal(t, "protobuf", cfg.Channel.Codec)
	assert.Equal(t, 2*time.Second, cfg.Channel.CallTimeout.Duration)
	assert.Equal(t, 42, cfg.Bench.Count)
	assert.Equal(t, uint32(1024), cfg.Transport.MaxFrameSize)
	assert.Equal(t, "none", cfg.Channel.Compress)

	v.Set(KeyLogFormat, "xml")
	assert.ErrorContains(t, cfg.Override(v), "unknown log format")
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("MSGBUS_CHANNEL_COMPRESS", "snappy")

	cfg := Default()
	require.NoError(t, cfg.Override(NewViper()))
	assert.Equal(t, "snappy", cfg.Channel.Compress)
}

func TestDurationMarshal(t *testing.T) {
	out, err := yaml.Marshal(Default().Channel)
	require.NoError(t, err)
	assert.Contains(t, string(out), "call_timeout: 5s")
}

func TestTransportOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.Transport.ClientOptions(), 5)
	assert.Len(t, cfg.Transport.ServerOptions(), 4)
}
