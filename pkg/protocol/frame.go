// Kunhua Huang 2026

package protocol

import "fmt"

// Frame is one discrete message on the wire. Body is always the
// uncompressed payload; compression is applied by the frame codec.
type Frame struct {
	Type     MessageType
	Codec    CodecType
	Sequence uint64
	Body     []byte
}

func NewRequestFrame(sequence uint64, codec CodecType, body []byte) *Frame {
	return &Frame{
		Type:     MsgTypeRequest,
		Codec:    codec,
		Sequence: sequence,
		Body:     body,
	}
}

func NewReplyFrame(sequence uint64, codec CodecType, body []byte) *Frame {
	return &Frame{
		Type:     MsgTypeReply,
		Codec:    codec,
		Sequence: sequence,
		Body:     body,
	}
}

// NewErrorFrame answers the request with the given sequence with an error
// message instead of a reply payload.
func NewErrorFrame(sequence uint64, message string) *Frame {
	return &Frame{
		Type:     MsgTypeError,
		Codec:    CodecTypeRaw,
		Sequence: sequence,
		Body:     []byte(message),
	}
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{Type=%s, Codec=%s, Seq=%d, Len=%d}", f.Type, f.Codec, f.Sequence, len(f.Body))
}
