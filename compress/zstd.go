package compress

// ZstdCompressor provides Zstandard compression.
//
// The implementation is selected at build time: pure Go
// (github.com/klauspost/compress/zstd) by default, or the cgo bindings of
// github.com/valyala/gozstd with the gozstd build tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
