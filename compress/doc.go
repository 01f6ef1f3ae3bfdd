// Package compress provides the compression codecs used by onebrc.
//
// Two shapes are offered for each algorithm:
//
//   - Block codecs (Codec) compress a whole in-memory payload. Snapshot files
//     use them for the encoded aggregate table.
//   - Stream readers and writers (NewReader, NewWriter) wrap an io.Reader or
//     io.Writer. The engine uses NewReader to scan compressed measurement
//     files in a single pass.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): data passes through unchanged
//   - Zstd (format.CompressionZstd): best ratio; pure Go by default, cgo via the gozstd build tag
//   - S2 (format.CompressionS2): fast, Snappy-compatible framing for streams
//   - LZ4 (format.CompressionLZ4): fastest decompression
//
// Compressed input cannot be split by byte offset, so a compressed
// measurement file is always scanned by a single worker.
//
// # Build Tags
//
// Building with -tags gozstd (and cgo enabled) switches Zstd to the
// github.com/valyala/gozstd bindings of the reference C library.
package compress
