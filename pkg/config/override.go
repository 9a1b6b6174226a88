package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Keys shared by flags, environment variables (MSGBUS_CHANNEL_CODEC, ...)
// and the yaml file.
const (
	KeyBind           = "channel.bind"
	KeyConnect        = "channel.connect"
	KeyCodec          = "channel.codec"
	KeyCompress       = "channel.compress"
	KeyCallTimeout    = "channel.call_timeout"
	KeyHandlerTimeout = "channel.handler_timeout"
	KeyDialTimeout    = "transport.dial_timeout"
	KeyWriteTimeout   = "transport.write_timeout"
	KeyMaxFrameSize   = "transport.max_frame_size"
	KeyBenchCount     = "bench.count"
	KeyBenchRate      = "bench.rate"
	KeyBenchBurst     = "bench.burst"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyMetricsAddr    = "metrics.addr"
)

// Override copies every key that v has explicitly set onto c. Unset flags
// and absent environment variables leave c untouched.
func (c *Config) Override(v *viper.Viper) error {
	setString(v, KeyBind, &c.Channel.Bind)
	setString(v, KeyConnect, &c.Channel.Connect)
	setString(v, KeyCodec, &c.Channel.Codec)
	setString(v, KeyCompress, &c.Channel.Compress)
	setDuration(v, KeyCallTimeout, &c.Channel.CallTimeout)
	setDuration(v, KeyHandlerTimeout, &c.Channel.HandlerTimeout)
	setDuration(v, KeyDialTimeout, &c.Transport.DialTimeout)
	setDuration(v, KeyWriteTimeout, &c.Transport.WriteTimeout)
	if v.IsSet(KeyMaxFrameSize) {
		c.Transport.MaxFrameSize = v.GetUint32(KeyMaxFrameSize)
	}
	if v.IsSet(KeyBenchCount) {
		c.Bench.Count = v.GetInt(KeyBenchCount)
	}
	if v.IsSet(KeyBenchRate) {
		c.Bench.Rate = v.GetInt64(KeyBenchRate)
	}
	if v.IsSet(KeyBenchBurst) {
		c.Bench.Burst = v.GetInt64(KeyBenchBurst)
	}
	setString(v, KeyLogLevel, &c.Log.Level)
	setString(v, KeyLogFormat, &c.Log.Format)
	setString(v, KeyMetricsAddr, &c.Metrics.Addr)

	return c.Validate()
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setDuration(v *viper.Viper, key string, dst *Duration) {
	if v.IsSet(key) {
		dst.Duration = v.GetDuration(key)
	}
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// NewViper returns a viper reading MSGBUS_* environment variables for the
// keys above.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("msgbus")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	return v
}
