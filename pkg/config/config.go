// Kunhua Huang 2026

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ecstasoy/msgbus/pkg/protocol"
	"github.com/ecstasoy/msgbus/pkg/transport"
)

type Config struct {
	Channel   ChannelConfig   `yaml:"channel"`
	Transport TransportConfig `yaml:"transport"`
	Bench     BenchConfig     `yaml:"bench"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ChannelConfig struct {
	Bind           string   `yaml:"bind"`
	Connect        string   `yaml:"connect"`
	Codec          string   `yaml:"codec"`    // raw/json/protobuf
	Compress       string   `yaml:"compress"` // none/gzip/snappy
	CallTimeout    Duration `yaml:"call_timeout"`
	HandlerTimeout Duration `yaml:"handler_timeout"`
}

type TransportConfig struct {
	DialTimeout      Duration `yaml:"dial_timeout"`
	WriteTimeout     Duration `yaml:"write_timeout"`
	KeepAlive        bool     `yaml:"keep_alive"`
	KeepAlivePeriod  Duration `yaml:"keep_alive_period"`
	ReadBufferSize   int      `yaml:"read_buffer_size"`
	WriteBufferSize  int      `yaml:"write_buffer_size"`
	MaxFrameSize     uint32   `yaml:"max_frame_size"`
	HandshakeTimeout Duration `yaml:"handshake_timeout"`
}

type BenchConfig struct {
	Count int   `yaml:"count"`
	Rate  int64 `yaml:"rate"` // messages per second, 0 = unpaced
	Burst int64 `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console/json
}

type MetricsConfig struct {
	Addr      string `yaml:"addr"` // empty disables the /metrics listener
	Namespace string `yaml:"namespace"`
}

type Duration struct{ time.Duration }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func Default() *Config {
	return &Config{
		Channel: ChannelConfig{
			Bind:           "tcp://*:5555",
			Connect:        "tcp://localhost:5555",
			Codec:          "json",
			Compress:       "none",
			CallTimeout:    Duration{5 * time.Second},
			HandlerTimeout: Duration{10 * time.Second},
		},
		Transport: TransportConfig{
			DialTimeout:      Duration{5 * time.Second},
			KeepAlive:        true,
			KeepAlivePeriod:  Duration{30 * time.Second},
			ReadBufferSize:   32 * 1024,
			WriteBufferSize:  32 * 1024,
			MaxFrameSize:     transport.DefaultMaxFrameSize,
			HandshakeTimeout: Duration{5 * time.Second},
		},
		Bench: BenchConfig{
			Count: 10000,
			Burst: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Namespace: "msgbus",
		},
	}
}

// Load reads a yaml file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Channel.CodecType(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Channel.CompressType(); err != nil {
		errs = append(errs, err)
	}
	if c.Transport.MaxFrameSize == 0 {
		errs = append(errs, errors.New("transport.max_frame_size must be positive"))
	}
	if c.Bench.Count < 0 {
		errs = append(errs, errors.New("bench.count must not be negative"))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func (c *ChannelConfig) CodecType() (protocol.CodecType, error) {
	return protocol.ParseCodecType(c.Codec)
}

func (c *ChannelConfig) CompressType() (protocol.CompressType, error) {
	return protocol.ParseCompressType(c.Compress)
}

func (t *TransportConfig) ClientOptions() []transport.ClientOption {
	return []transport.ClientOption{
		transport.WithDialTimeout(t.DialTimeout.Duration),
		transport.WithWriteTimeout(t.WriteTimeout.Duration),
		transport.WithKeepAlive(t.KeepAlive, t.KeepAlivePeriod.Duration),
		transport.WithBufferSize(t.ReadBufferSize, t.WriteBufferSize),
		transport.WithMaxFrameSize(t.MaxFrameSize),
	}
}

func (t *TransportConfig) ServerOptions() []transport.ServerOption {
	return []transport.ServerOption{
		transport.WithServerWriteTimeout(t.WriteTimeout.Duration),
		transport.WithHandshakeTimeout(t.HandshakeTimeout.Duration),
		transport.WithServerBufferSize(t.ReadBufferSize, t.WriteBufferSize),
		transport.WithServerMaxFrameSize(t.MaxFrameSize),
	}
}
