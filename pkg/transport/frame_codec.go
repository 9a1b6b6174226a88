// Kunhua Huang 2026

package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ecstasoy/msgbus/pkg/codec"
	"github.com/ecstasoy/msgbus/pkg/protocol"
)

// FrameCodec handles framing with protocol.Header.
//
// Framing responsibility:
//   - FrameCodec: 20-byte fixed header + BodyLength, body compression
//   - codec.Codec: payload serialization (never seen here)
//
// Stream transports call ReadFrame; message transports that already
// delimit frames call Decode on each message.
type FrameCodec struct {
	compressor   codec.Compressor
	compressType protocol.CompressType
	maxFrameSize uint32
}

func NewFrameCodec(compressType protocol.CompressType, maxFrameSize uint32) *FrameCodec {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	return &FrameCodec{
		compressor:   codec.GetCompressorOrNone(compressType),
		compressType: compressType,
		maxFrameSize: maxFrameSize,
	}
}

func (fc *FrameCodec) MaxFrameSize() uint32 {
	return fc.maxFrameSize
}

func (fc *FrameCodec) Encode(frame *protocol.Frame) ([]byte, error) {
	if uint64(len(frame.Body)) > uint64(fc.maxFrameSize) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(frame.Body), fc.maxFrameSize)
	}

	body, err := fc.compressor.Compress(frame.Body)
	if err != nil {
		return nil, fmt.Errorf("compress body error: %w", err)
	}

	// incompressible bodies can grow past the limit the peer enforces on read
	if uint64(len(body)) > uint64(fc.maxFrameSize) {
		return nil, fmt.Errorf("%w: compressed %d > %d", ErrFrameTooLarge, len(body), fc.maxFrameSize)
	}

	header := protocol.NewHeader(frame.Type, frame.Codec, frame.Sequence, uint32(len(body)))
	header.Compress = fc.compressType

	result := make([]byte, protocol.HeaderLength+len(body))
	header.EncodeTo(result)
	copy(result[protocol.HeaderLength:], body)

	return result, nil
}

func (fc *FrameCodec) ReadFrame(r io.Reader) (*protocol.Frame, error) {
	headerBytes := make([]byte, protocol.HeaderLength)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("read header error: %w", err)
	}

	header := &protocol.Header{}
	if err := header.Decode(headerBytes); err != nil {
		return nil, fmt.Errorf("decode header error: %w", err)
	}

	if header.BodyLength > fc.maxFrameSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, header.BodyLength, fc.maxFrameSize)
	}

	bodyBytes := make([]byte, header.BodyLength)
	if _, err := io.ReadFull(r, bodyBytes); err != nil {
		return nil, fmt.Errorf("read body error: %w", err)
	}

	return fc.finish(header, bodyBytes)
}

// Decode parses one complete frame held in buf.
func (fc *FrameCodec) Decode(buf []byte) (*protocol.Frame, error) {
	r := bytes.NewReader(buf)

	frame, err := fc.ReadFrame(r)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrUnexpectedFrame, r.Len())
	}

	return frame, nil
}

func (fc *FrameCodec) finish(header *protocol.Header, body []byte) (*protocol.Frame, error) {
	compressor := codec.GetCompressor(header.Compress)
	if compressor == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompressor, header.Compress)
	}

	decompressed, err := compressor.Decompress(body, fc.maxFrameSize)
	if errors.Is(err, codec.ErrDecompressedTooLarge) {
		return nil, fmt.Errorf("%w: %w", ErrFrameTooLarge, err)
	}
	if err != nil {
		return nil, fmt.Errorf("decompress body error: %w", err)
	}

	return &protocol.Frame{
		Type:     header.MsgType,
		Codec:    header.Codec,
		Sequence: header.Sequence,
		Body:     decompressed,
	}, nil
}
