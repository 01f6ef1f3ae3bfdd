// Package errs defines the sentinel errors shared by the onebrc packages.
//
// Callers match them with errors.Is; producers wrap them with fmt.Errorf("%w")
// to attach the offending input, byte offset or file name.
package errs

import "errors"

// Input format errors. All of them are fatal for a run.
var (
	// ErrInvalidValue indicates a measurement that is not of the form -?[0-9]+\.[0-9].
	ErrInvalidValue = errors.New("invalid measurement value")
	// ErrMissingDelimiter indicates a non-empty line without the ';' field delimiter.
	ErrMissingDelimiter = errors.New("missing field delimiter")
	// ErrEmptyKey indicates a record whose key is empty.
	ErrEmptyKey = errors.New("empty record key")
	// ErrInvalidKey indicates a record whose key is not valid UTF-8.
	ErrInvalidKey = errors.New("record key is not valid UTF-8")
)

// Partitioning errors.
var (
	// ErrInvalidWorkerCount indicates a worker count below one.
	ErrInvalidWorkerCount = errors.New("worker count must be positive")
	// ErrInvalidWindow indicates a non-positive alignment lookahead window.
	ErrInvalidWindow = errors.New("lookahead window must be positive")
	// ErrPartitionInvariant indicates aligned ranges that overlap, leave gaps or
	// do not cover the whole input. It signals a defect in the aligner, not bad input.
	ErrPartitionInvariant = errors.New("aligned ranges do not partition the input")
)

// Compression and snapshot errors.
var (
	// ErrUnsupportedCompression indicates an unknown compression type or name.
	ErrUnsupportedCompression = errors.New("unsupported compression type")
	// ErrInvalidSnapshot indicates a snapshot with a bad magic, version, size or entry.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrSnapshotChecksum indicates a snapshot whose payload checksum does not match.
	ErrSnapshotChecksum = errors.New("snapshot checksum mismatch")
)

// ErrCountOverflow indicates a merge whose per-key record count would exceed math.MaxUint32.
var ErrCountOverflow = errors.New("aggregate count overflow")

// ErrInvalidConfig indicates a configuration value outside its allowed range.
var ErrInvalidConfig = errors.New("invalid configuration")
