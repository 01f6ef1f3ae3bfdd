//go:build gozstd && cgo

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// Compress compresses data using the reference Zstandard library.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses a Zstandard frame.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}

type gozstdReader struct {
	*gozstd.Reader
}

func (r gozstdReader) Close() error {
	r.Release()
	return nil
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	return gozstdReader{gozstd.NewReader(r)}, nil
}

type gozstdWriter struct {
	*gozstd.Writer
}

func (w gozstdWriter) Close() error {
	defer w.Release()
	return w.Writer.Close()
}

func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	return gozstdWriter{gozstd.NewWriter(w)}, nil
}
