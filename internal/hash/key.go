package hash

import "github.com/cespare/xxhash/v2"

// Sum computes the xxHash64 digest of a record key.
//
// It does not allocate, so it is safe to call once per record on the hot path.
func Sum(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// SumString computes the same digest as Sum for a key held as a string.
func SumString(key string) uint64 {
	return xxhash.Sum64String(key)
}
