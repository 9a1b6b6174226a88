package codec

import "fmt"

// RawCodec passes byte slices through untouched.
type RawCodec struct{}

var _ Codec = (*RawCodec)(nil)

func NewRawCodec() Codec {
	return &RawCodec{}
}

func (c *RawCodec) Encode(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, fmt.Errorf("raw codec: unsupported type %T", v)
	}
}

func (c *RawCodec) Decode(data []byte, v any) error {
	switch out := v.(type) {
	case *[]byte:
		*out = append((*out)[:0], data...)
		return nil
	case *string:
		*out = string(data)
		return nil
	default:
		return fmt.Errorf("raw codec: unsupported type %T", v)
	}
}

func (c *RawCodec) Name() string {
	return "raw"
}
