// Kunhua Huang 2026

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	HeaderLength         = 20
	ProtocolMagic        = 0xB05E
	ProtocolVersion byte = 0x01
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
	ErrUnknownMessageType = errors.New("unknown message type")
)

type MessageType byte

const (
	MsgTypeRequest MessageType = 0x01
	MsgTypeReply   MessageType = 0x02
	MsgTypeError   MessageType = 0x03
)

func (t MessageType) String() string {
	switch t {
	case MsgTypeRequest:
		return "request"
	case MsgTypeReply:
		return "reply"
	case MsgTypeError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

func (t MessageType) Valid() bool {
	return t == MsgTypeRequest || t == MsgTypeReply || t == MsgTypeError
}

// CodecType is a hint describing how the payload was serialized.
// The channel carries it but never interprets it.
type CodecType byte

const (
	CodecTypeRaw      CodecType = 0x00
	CodecTypeJSON     CodecType = 0x01
	CodecTypeProtobuf CodecType = 0x02
)

func (t CodecType) String() string {
	switch t {
	case CodecTypeRaw:
		return "raw"
	case CodecTypeJSON:
		return "json"
	case CodecTypeProtobuf:
		return "protobuf"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

func ParseCodecType(s string) (CodecType, error) {
	switch s {
	case "", "raw":
		return CodecTypeRaw, nil
	case "json":
		return CodecTypeJSON, nil
	case "protobuf", "proto":
		return CodecTypeProtobuf, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", s)
	}
}

type CompressType byte

const (
	CompressTypeNone   CompressType = 0x00
	CompressTypeGzip   CompressType = 0x01
	CompressTypeSnappy CompressType = 0x02
)

func (t CompressType) String() string {
	switch t {
	case CompressTypeNone:
		return "none"
	case CompressTypeGzip:
		return "gzip"
	case CompressTypeSnappy:
		return "snappy"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

func ParseCompressType(s string) (CompressType, error) {
	switch s {
	case "", "none":
		return CompressTypeNone, nil
	case "gzip":
		return CompressTypeGzip, nil
	case "snappy":
		return CompressTypeSnappy, nil
	default:
		return 0, fmt.Errorf("unknown compressor %q", s)
	}
}

// Header Structure
// Fixed length: 20 bytes
//
// Byte layout:
//   0  1  2  3  4  5  6  7  8  9  10 11 12 13 14 15 16 17 18 19
//  +--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//  |Magic |Ver|Typ|Cod|Cmp|Reserv |     Sequence      |BodyLen |
//  +--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+

type Header struct {
	Magic      uint16
	Version    byte
	MsgType    MessageType
	Codec      CodecType
	Compress   CompressType
	Reserved   [2]byte
	Sequence   uint64
	BodyLength uint32
}

func NewHeader(msgType MessageType, codec CodecType, sequence uint64, bodyLen uint32) *Header {
	return &Header{
		Magic:      ProtocolMagic,
		Version:    ProtocolVersion,
		MsgType:    msgType,
		Codec:      codec,
		Compress:   CompressTypeNone,
		Reserved:   [2]byte{0, 0},
		Sequence:   sequence,
		BodyLength: bodyLen,
	}
}

func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderLength)
	h.EncodeTo(buf)
	return buf
}

// EncodeTo writes the header into the first HeaderLength bytes of buf.
func (h *Header) EncodeTo(buf []byte) {
	binary.BigEndian.PutUint16(buf[0:2], h.Magic)

	buf[2] = h.Version
	buf[3] = byte(h.MsgType)
	buf[4] = byte(h.Codec)
	buf[5] = byte(h.Compress)
	buf[6] = h.Reserved[0]
	buf[7] = h.Reserved[1]

	binary.BigEndian.PutUint64(buf[8:16], h.Sequence)
	binary.BigEndian.PutUint32(buf[16:20], h.BodyLength)
}

func (h *Header) Decode(buf []byte) error {
	if len(buf) < HeaderLength {
		return fmt.Errorf("invalid header length: %d, expected: %d", len(buf), HeaderLength)
	}

	h.Magic = binary.BigEndian.Uint16(buf[0:2])
	if h.Magic != ProtocolMagic {
		return fmt.Errorf("%w: 0x%X, expected: 0x%X", ErrInvalidMagic, h.Magic, ProtocolMagic)
	}

	h.Version = buf[2]
	if h.Version != ProtocolVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	h.MsgType = MessageType(buf[3])
	if !h.MsgType.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMessageType, buf[3])
	}

	h.Codec = CodecType(buf[4])
	h.Compress = CompressType(buf[5])
	h.Reserved[0] = buf[6]
	h.Reserved[1] = buf[7]
	h.Sequence = binary.BigEndian.Uint64(buf[8:16])
	h.BodyLength = binary.BigEndian.Uint32(buf[16:20])

	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf(
		"Header{Magic=0x%X, Version=%d, Type=%s, Codec=%s, Compress=%s, Seq=%d, BodyLen=%d}",
		h.Magic,
		h.Version,
		h.MsgType,
		h.Codec,
		h.Compress,
		h.Sequence,
		h.BodyLength,
	)
}
