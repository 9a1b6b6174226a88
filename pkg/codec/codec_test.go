package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ecstasoy/msgbus/pkg/protocol"
)

func TestRegistryHasBuiltins(t *testing.T) {
	assert.Equal(t, "raw", Get(protocol.CodecTypeRaw).Name())
	assert.Equal(t, "json", Get(protocol.CodecTypeJSON).Name())
	assert.Equal(t, "protobuf", Get(protocol.CodecTypeProtobuf).Name())
	assert.Equal(t, "raw", GetOrDefault(protocol.CodecType(0x7F)).Name())
	assert.Len(t, List(), 3)
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(protocol.CodecTypeJSON, NewJSONCodec())
	})
}

func TestJSONCodec(t *testing.T) {
	c := NewJSONCodec()

	data, err := c.Encode(map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"value"}`, string(data))

	var out map[string]string
	require.NoError(t, c.Decode(data, &out))
	assert.Equal(t, "value", out["key"])

	assert.Error(t, c.Decode([]byte("{"), &out))
}

func TestProtobufCodecStruct(t *testing.T) {
	c := NewProtobufCodec()

	data, err := c.Encode(map[string]string{"key": "value"})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, c.Decode(data, &out))
	assert.Equal(t, map[string]any{"key": "value"}, out)

	var s structpb.Struct
	require.NoError(t, c.Decode(data, &s))
	assert.Equal(t, "value", s.Fields["key"].GetStringValue())
}

func TestProtobufCodecMessage(t *testing.T) {
	c := NewProtobufCodec()

	data, err := c.Encode(wrapperspb.Bytes([]byte{0x01, 0x02, 0x03}))
	require.NoError(t, err)

	var out wrapperspb.BytesValue
	require.NoError(t, c.Decode(data, &out))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, out.GetValue())

	_, err = c.Encode(42)
	assert.Error(t, err)
}

func TestRawCodec(t *testing.T) {
	c := NewRawCodec()

	data, err := c.Encode("hello")
	require.NoError(t, err)

	var b []byte
	require.NoError(t, c.Decode(data, &b))
	assert.Equal(t, []byte("hello"), b)

	_, err = c.Encode(3.14)
	assert.Error(t, err)
}

func TestCompressorsRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("msgbus payload "), 64)

	for _, typ := range []protocol.CompressType{
		protocol.CompressTypeNone,
		protocol.CompressTypeGzip,
		protocol.CompressTypeSnappy,
	} {
		t.Run(typ.String(), func(t *testing.T) {
			c := GetCompressor(typ)
			require.NotNil(t, c)
			assert.Equal(t, typ.String(), c.Name())

			compressed, err := c.Compress(payload)
			require.NoError(t, err)
			if typ != protocol.CompressTypeNone {
				assert.Less(t, len(compressed), len(payload))
			}

			out, err := c.Decompress(compressed, 0)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestDecompressGarbage(t *testing.T) {
	_, err := GetCompressor(protocol.CompressTypeGzip).Decompress([]byte("not gzip"), 0)
	assert.Error(t, err)

	_, err = GetCompressor(protocol.CompressTypeSnappy).Decompress([]byte{0xFF, 0xFF, 0xFF}, 0)
	assert.Error(t, err)

	assert.Nil(t, GetCompressor(protocol.CompressType(0x7F)))
	assert.Equal(t, "none", GetCompressorOrNone(protocol.CompressType(0x7F)).Name())
}

func TestDecompressLimit(t *testing.T) {
	payload := make([]byte, 1<<20)

	for _, typ := range []protocol.CompressType{
		protocol.CompressTypeNone,
		protocol.CompressTypeGzip,
		protocol.CompressTypeSnappy,
	} {
		t.Run(typ.String(), func(t *testing.T) {
			c := GetCompressor(typ)

			compressed, err := c.Compress(payload)
			require.NoError(t, err)

			_, err = c.Decompress(compressed, 1024)
			assert.ErrorIs(t, err, ErrDecompressedTooLarge)

			out, err := c.Decompress(compressed, uint32(len(payload)))
			require.NoError(t, err)
			assert.Len(t, out, len(payload))
		})
	}
}
