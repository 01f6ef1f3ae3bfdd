package compress

import (
	"fmt"
	"io"

	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/format"
)

// Compressor compresses a complete in-memory payload.
type Compressor interface {
	// Compress returns the compressed form of data.
	//
	// The returned slice is newly allocated and owned by the caller, except
	// for the no-op codec which returns data itself. data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
//
// Implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress returns the original payload, or an error if data is
	// corrupted or was produced by another algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
//
// Returns:
//   - Codec: Shared, stateless codec instance
//   - error: errs.ErrUnsupportedCompression for Auto or unknown types
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// NewReader wraps r with a streaming decompressor for compressionType.
//
// Closing the returned reader releases decoder resources; it does not close r.
//
// Parameters:
//   - compressionType: Concrete compression of the stream (not Auto)
//   - r: Compressed source
//
// Returns:
//   - io.ReadCloser: Decompressed stream
//   - error: errs.ErrUnsupportedCompression, or a decoder setup error
func NewReader(compressionType format.CompressionType, r io.Reader) (io.ReadCloser, error) {
	switch compressionType {
	case format.CompressionNone:
		return io.NopCloser(r), nil
	case format.CompressionZstd:
		return newZstdReader(r)
	case format.CompressionS2:
		return newS2Reader(r), nil
	case format.CompressionLZ4:
		return newLZ4Reader(r), nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
	}
}

// NewWriter wraps w with a streaming compressor for compressionType.
//
// The returned writer must be closed to flush the final frame; closing it
// does not close w.
func NewWriter(compressionType format.CompressionType, w io.Writer) (io.WriteCloser, error) {
	switch compressionType {
	case format.CompressionNone:
		return nopWriteCloser{w}, nil
	case format.CompressionZstd:
		return newZstdWriter(w)
	case format.CompressionS2:
		return newS2Writer(w), nil
	case format.CompressionLZ4:
		return newLZ4Writer(w), nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
