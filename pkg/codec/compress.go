// Kunhua Huang 2026

package codec

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/ecstasoy/msgbus/pkg/protocol"

	"github.com/golang/snappy"
)

// ErrDecompressedTooLarge is returned when a body would inflate past the
// caller's limit. Decompression stops before the excess is allocated.
var ErrDecompressedTooLarge = errors.New("decompressed body exceeds limit")

// Compressor transforms frame bodies. Decompress never returns more than
// limit bytes; a limit of 0 means unbounded.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, limit uint32) ([]byte, error)
	Name() string
}

type NoneCompressor struct{}

var _ Compressor = (*NoneCompressor)(nil)

func NewNoneCompressor() Compressor {
	return &NoneCompressor{}
}

func (c *NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (c *NoneCompressor) Decompress(data []byte, limit uint32) ([]byte, error) {
	if limit > 0 && uint64(len(data)) > uint64(limit) {
		return nil, fmt.Errorf("%w: %d > %d", ErrDecompressedTooLarge, len(data), limit)
	}
	return data, nil
}

func (c *NoneCompressor) Name() string {
	return "none"
}

// ------------------ Gzip Compressor ------------------

type GzipCompressor struct {
	Level int
}

var _ Compressor = (*GzipCompressor)(nil)

func NewGzipCompressor(level int) Compressor {
	return &GzipCompressor{Level: level}
}

func (c *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, c.Level)
	if err != nil {
		return nil, fmt.Errorf("create gzip writer failed: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("gzip write failed: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip close failed: %w", err)
	}

	return buf.Bytes(), nil
}

func (c *GzipCompressor) Decompress(data []byte, limit uint32) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader failed: %w", err)
	}
	defer reader.Close()

	var src io.Reader = reader
	if limit > 0 {
		src = io.LimitReader(reader, int64(limit)+1)
	}

	decompressed, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("gzip read failed: %w", err)
	}

	if limit > 0 && uint64(len(decompressed)) > uint64(limit) {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDecompressedTooLarge, limit)
	}

	return decompressed, nil
}

func (c *GzipCompressor) Name() string {
	return "gzip"
}

// ------------------ Snappy Compressor ------------------

type SnappyCompressor struct{}

var _ Compressor = (*SnappyCompressor)(nil)

func NewSnappyCompressor() Compressor {
	return &SnappyCompressor{}
}

func (c *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (c *SnappyCompressor) Decompress(data []byte, limit uint32) ([]byte, error) {
	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode failed: %w", err)
	}
	if limit > 0 && uint64(n) > uint64(limit) {
		return nil, fmt.Errorf("%w: %d > %d", ErrDecompressedTooLarge, n, limit)
	}

	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode failed: %w", err)
	}
	return decoded, nil
}

func (c *SnappyCompressor) Name() string {
	return "snappy"
}

// ----------------- Registry -----------------

var compressorRegistry = make(map[protocol.CompressType]Compressor)

func RegisterCompressor(typ protocol.CompressType, compressor Compressor) {
	if compressor == nil {
		panic(fmt.Sprintf("compressor: Register compressor is nil for type %s", typ))
	}

	if _, exists := compressorRegistry[typ]; exists {
		panic(fmt.Sprintf("compressor: Register called twice for type %s", typ))
	}

	compressorRegistry[typ] = compressor
}

func GetCompressor(typ protocol.CompressType) Compressor {
	return compressorRegistry[typ]
}

func GetCompressorOrNone(typ protocol.CompressType) Compressor {
	compressor := GetCompressor(typ)
	if compressor == nil {
		compressor = GetCompressor(protocol.CompressTypeNone)
	}
	return compressor
}

func init() {
	RegisterCompressor(protocol.CompressTypeNone, NewNoneCompressor())
	RegisterCompressor(protocol.CompressTypeGzip, NewGzipCompressor(gzip.DefaultCompression))
	RegisterCompressor(protocol.CompressTypeSnappy, NewSnappyCompressor())
}
