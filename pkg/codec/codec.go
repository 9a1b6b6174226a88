// Kunhua Huang 2026

package codec

import (
	"fmt"
	"sync"

	"github.com/ecstasoy/msgbus/pkg/protocol"
)

// Codec turns structured messages into payload bytes and back.
// Payloads carry no framing; the transport frames them.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

var registry = struct {
	codecs map[protocol.CodecType]Codec
	sync.RWMutex
}{
	codecs: make(map[protocol.CodecType]Codec),
}

func Register(typ protocol.CodecType, codec Codec) {
	registry.Lock()
	defer registry.Unlock()

	if codec == nil {
		panic(fmt.Sprintf("codec: Register codec is nil for type %s", typ))
	}

	if _, exists := registry.codecs[typ]; exists {
		panic(fmt.Sprintf("codec: Register called twice for type %s", typ))
	}

	registry.codecs[typ] = codec
}

func Get(typ protocol.CodecType) Codec {
	registry.RLock()
	defer registry.RUnlock()

	return registry.codecs[typ]
}

func GetOrDefault(typ protocol.CodecType) Codec {
	codec := Get(typ)
	if codec == nil {
		codec = Get(protocol.CodecTypeRaw)
	}
	return codec
}

func List() []protocol.CodecType {
	registry.RLock()
	defer registry.RUnlock()

	types := make([]protocol.CodecType, 0, len(registry.codecs))
	for typ := range registry.codecs {
		types = append(types, typ)
	}
	return types
}

func init() {
	Register(protocol.CodecTypeRaw, NewRawCodec())
	Register(protocol.CodecTypeJSON, NewJSONCodec())
	Register(protocol.CodecTypeProtobuf, NewProtobufCodec())
}
