// Package partition splits an input file into byte ranges that each hold
// whole records, so that workers can process them independently.
//
// Split produces candidate ranges of equal size. Each worker then aligns its
// own candidate range with Align, which moves both ends just past the next
// line terminator. Two neighbors search from the same candidate offset and
// therefore agree on their shared boundary without communicating: the record
// that straddles a candidate split belongs to the left worker, and the right
// worker starts right after it. Verify audits the aligned ranges.
package partition

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/internal/pool"
)

const (
	// DefaultLookahead is the initial alignment window in bytes.
	DefaultLookahead = 64
	// MaxLookahead caps the window growth of NextBoundary.
	MaxLookahead = 1024 * 1024
)

const terminator = '\n'

// Range is a half-open byte range [Start, End) in file-offset space.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes in the range.
func (r Range) Len() int64 {
	return r.End - r.Start
}

// String returns the range as "[start, end)".
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Split divides length bytes into contiguous candidate ranges, one per worker.
//
// Every range but the last holds length/n bytes; the last absorbs the
// remainder. The worker count is clamped to [1, length] so that only the
// first range starts at offset zero, which Align relies on; fewer ranges than
// requested are returned for inputs shorter than the worker count.
//
// Parameters:
//   - length: Input size in bytes
//   - workers: Requested number of workers, at least one
//
// Returns:
//   - []Range: Candidate ranges in offset order
//   - error: errs.ErrInvalidWorkerCount if workers < 1
func Split(length int64, workers int) ([]Range, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidWorkerCount, workers)
	}
	if length < 0 {
		return nil, fmt.Errorf("negative input length %d", length)
	}

	n := max(min(int64(workers), length), 1)
	perWorker := length / n

	ranges := make([]Range, n)
	for i := range n {
		ranges[i] = Range{
			Start: i * perWorker,
			End:   min((i+1)*perWorker, length),
		}
	}
	ranges[n-1].End = length

	return ranges, nil
}

// NextBoundary returns the offset just past the first line terminator at or
// after off.
//
// It reads window bytes at a time and doubles the window after every miss, up
// to MaxLookahead, so records of any length are handled. The end of the input
// counts as an implicit terminator: if none is found before length, or off is
// already at or past length, NextBoundary returns length.
func NextBoundary(r io.ReaderAt, off, length int64, window int) (int64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidWindow, window)
	}

	for off < length {
		size := int(min(int64(window), length-off))
		buf, cleanup := pool.GetWindow(size)
		n, err := r.ReadAt(buf, off)
		idx := bytes.IndexByte(buf[:n], terminator)
		cleanup()

		if idx >= 0 {
			return off + int64(idx) + 1, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("lookahead at offset %d: %w", off, err)
		}
		if n == 0 {
			// The input is shorter than length claims.
			return length, nil
		}

		off += int64(n)
		window = min(window*2, MaxLookahead)
	}

	return length, nil
}

// Align moves a candidate range onto record boundaries.
//
// A start of zero is the start of the input and stays put; any other start
// advances past the next terminator. The end always advances past the next
// terminator, which lets the range claim the record its candidate end splits.
//
// Parameters:
//   - r: Input, read only within the lookahead windows
//   - candidate: Range produced by Split
//   - length: Input size in bytes
//   - window: Initial lookahead window in bytes
//
// Returns:
//   - Range: Aligned range; it may be empty
//   - error: Read error or errs.ErrInvalidWindow
func Align(r io.ReaderAt, candidate Range, length int64, window int) (Range, error) {
	aligned := candidate

	if candidate.Start != 0 {
		start, err := NextBoundary(r, candidate.Start, length, window)
		if err != nil {
			return Range{}, fmt.Errorf("align start of %s: %w", candidate, err)
		}
		aligned.Start = start
	}

	end, err := NextBoundary(r, candidate.End, length, window)
	if err != nil {
		return Range{}, fmt.Errorf("align end of %s: %w", candidate, err)
	}
	aligned.End = end

	return aligned, nil
}

// Verify checks that ranges, in any order, partition [0, length): sorted by
// (Start, End) they start at zero, end at length and each range ends where
// the next begins. Empty ranges are allowed.
//
// A violation means the aligner is broken, never that the input is bad.
func Verify(ranges []Range, length int64) error {
	if len(ranges) == 0 {
		return fmt.Errorf("%w: no ranges", errs.ErrPartitionInvariant)
	}

	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b Range) int {
		if a.Start != b.Start {
			return cmp.Compare(a.Start, b.Start)
		}

		return cmp.Compare(a.End, b.End)
	})

	if sorted[0].Start != 0 || sorted[len(sorted)-1].End != length {
		return fmt.Errorf("%w: ranges %v do not cover [0, %d)", errs.ErrPartitionInvariant, sorted, length)
	}
	for i, rng := range sorted {
		if rng.Start > rng.End {
			return fmt.Errorf("%w: inverted range %s", errs.ErrPartitionInvariant, rng)
		}
		if i > 0 && sorted[i-1].End != rng.Start {
			return fmt.Errorf("%w: overlap or gap between %s and %s", errs.ErrPartitionInvariant, sorted[i-1], rng)
		}
	}

	return nil
}
