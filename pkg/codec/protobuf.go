// Kunhua Huang 2026

package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtobufCodec marshals proto.Message values. Plain maps are carried as
// structpb.Struct so structured messages need no generated code.
type ProtobufCodec struct{}

var _ Codec = (*ProtobufCodec)(nil)

func NewProtobufCodec() Codec {
	return &ProtobufCodec{}
}

func (c *ProtobufCodec) Encode(v any) ([]byte, error) {
	switch msg := v.(type) {
	case proto.Message:
		return proto.Marshal(msg)
	case map[string]any:
		s, err := structpb.NewStruct(msg)
		if err != nil {
			return nil, fmt.Errorf("protobuf codec: convert map to struct failed: %w", err)
		}
		return proto.Marshal(s)
	case map[string]string:
		fields := make(map[string]any, len(msg))
		for k, val := range msg {
			fields[k] = val
		}
		return c.Encode(fields)
	default:
		return nil, fmt.Errorf("protobuf codec: unsupported type %T", v)
	}
}

func (c *ProtobufCodec) Decode(data []byte, v any) error {
	switch out := v.(type) {
	case proto.Message:
		if err := proto.Unmarshal(data, out); err != nil {
			return fmt.Errorf("protobuf codec: unmarshal failed: %w", err)
		}
		return nil
	case *map[string]any:
		s := &structpb.Struct{}
		if err := proto.Unmarshal(data, s); err != nil {
			return fmt.Errorf("protobuf codec: unmarshal struct failed: %w", err)
		}
		*out = s.AsMap()
		return nil
	default:
		return fmt.Errorf("protobuf codec: unsupported type %T", v)
	}
}

func (c *ProtobufCodec) Name() string {
	return "protobuf"
}
