// Kunhua Huang 2026

package codec

import (
	"encoding/json"
	"fmt"
)

type JSONCodec struct{}

var _ Codec = (*JSONCodec)(nil)

func NewJSONCodec() Codec {
	return &JSONCodec{}
}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: encode failed: %w", err)
	}
	return data, nil
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: decode failed: %w", err)
	}
	return nil
}

func (c *JSONCodec) Name() string {
	return "json"
}
