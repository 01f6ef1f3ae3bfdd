// Package stats holds per-key measurement aggregates and the table that maps
// keys to them.
//
// An Aggregate keeps min, max, sum and count of scaled (×10) values. Merging
// two aggregates is associative and commutative, and the zero-count identity
// returned by NewAggregate leaves any aggregate unchanged when merged into it.
// Those properties let workers build private tables and reduce them in any
// order.
//
// # Table
//
// Table indexes entries by the 64-bit xxHash digest of the key bytes. Every
// digest hit is verified against the stored key text, and a key whose digest
// is already owned by a different key is kept in an exact-text overflow map.
// Distinct keys are therefore never merged, whatever the key domain.
//
// A Table is not safe for concurrent use; each worker owns one until it is
// handed over for merging.
package stats
