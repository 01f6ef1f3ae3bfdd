// Package snapshot persists aggregate tables in a compact binary form.
//
// A snapshot is a fixed 24-byte little-endian header followed by the payload:
//
//	offset  size  field
//	0       4     magic "OBRC"
//	4       1     format version
//	5       1     payload compression (format.CompressionType)
//	6       2     reserved, zero
//	8       4     entry count
//	12      4     raw payload length
//	16      4     stored payload length
//	20      4     CRC32-IEEE of the stored payload
//
// The raw payload holds one entry per key, sorted by key bytes:
//
//	uvarint keyLen | key | varint min | varint max | varint sum | uvarint count
//
// Values are tenths, as produced by the fixedpoint package. Snapshots of
// disjoint inputs can be decoded and merged with stats.Table.Merge.
package snapshot
