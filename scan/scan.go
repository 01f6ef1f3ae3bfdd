// Package scan turns a stream of "key;value\n" records into aggregates.
//
// The scanner reads each line into a reused buffer, splits it at the first
// ';', parses the value with fixedpoint.Parse and adds it to the key's
// aggregate. Nothing is allocated per record once every key has been seen.
package scan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/fixedpoint"
	"github.com/arloliu/onebrc/internal/options"
	"github.com/arloliu/onebrc/internal/pool"
	"github.com/arloliu/onebrc/stats"
)

// Record layout bytes.
const (
	Terminator = '\n'
	Delimiter  = ';'
)

// DefaultBufferSize is the default size of the scanner's read buffer.
const DefaultBufferSize = 64 * 1024

// contextCheckMask sets how often, in records, the scanner polls its context.
const contextCheckMask = 1<<16 - 1

// Summary describes the input consumed by one Scan call.
type Summary struct {
	Records uint64 // Records added to the table
	Bytes   int64  // Bytes consumed, terminators and skipped lines included
}

type config struct {
	bufferSize int
	baseOffset int64
}

// Option configures Scan.
type Option = options.Option[*config]

// WithBufferSize sets the read buffer size. Lines longer than the buffer are
// still handled, through a pooled overflow buffer.
func WithBufferSize(size int) Option {
	return options.New(func(c *config) error {
		if size <= 0 {
			return fmt.Errorf("%w: buffer size %d", errs.ErrInvalidConfig, size)
		}
		c.bufferSize = size

		return nil
	})
}

// WithBaseOffset sets the file offset of the first byte of the stream. It is
// only used to report absolute offsets in format errors.
func WithBaseOffset(offset int64) Option {
	return options.NoError(func(c *config) {
		c.baseOffset = offset
	})
}

// Scan reads r until it is exhausted and adds every record to table.
//
// A line consisting solely of the terminator is skipped. The final line may
// lack a terminator. A non-empty line without a delimiter, an empty key or an
// invalid value stops the scan with an error naming the line's offset; the
// table then holds a partial result and must be discarded.
//
// Parameters:
//   - ctx: Polled periodically; cancellation stops the scan with ctx.Err()
//   - r: Record stream, typically bounded to one aligned byte range
//   - table: Destination table, owned by the caller
//   - opts: Scanner options
//
// Returns:
//   - Summary: Records and bytes consumed, also on error
//   - error: Format, read or context error
func Scan(ctx context.Context, r io.Reader, table *stats.Table, opts ...Option) (Summary, error) {
	cfg := &config{bufferSize: DefaultBufferSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return Summary{}, err
	}

	br := bufio.NewReaderSize(r, cfg.bufferSize)
	long := pool.GetLineBuffer()
	defer pool.PutLineBuffer(long)

	var sum Summary
	for {
		line, err := br.ReadSlice(Terminator)
		if errors.Is(err, bufio.ErrBufferFull) {
			long.Reset()
			_, _ = long.Write(line)
			for errors.Is(err, bufio.ErrBufferFull) {
				line, err = br.ReadSlice(Terminator)
				_, _ = long.Write(line)
			}
			line = long.Bytes()
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return sum, fmt.Errorf("read at offset %d: %w", cfg.baseOffset+sum.Bytes, err)
		}
		if len(line) == 0 {
			return sum, nil
		}

		added, perr := addRecord(table, line)
		if perr != nil {
			return sum, fmt.Errorf("line at offset %d: %w", cfg.baseOffset+sum.Bytes, perr)
		}
		sum.Bytes += int64(len(line))
		if added {
			sum.Records++
			if sum.Records&contextCheckMask == 0 {
				if cerr := ctx.Err(); cerr != nil {
					return sum, cerr
				}
			}
		}

		if err != nil {
			return sum, nil
		}
	}
}

// addRecord parses one line, with or without its terminator, into table.
// It reports false for a line that holds no record.
func addRecord(table *stats.Table, line []byte) (bool, error) {
	if line[len(line)-1] == Terminator {
		line = line[:len(line)-1]
	}
	if len(line) == 0 {
		return false, nil
	}

	sep := bytes.IndexByte(line, Delimiter)
	if sep < 0 {
		return false, fmt.Errorf("%w: %q", errs.ErrMissingDelimiter, line)
	}
	if sep == 0 {
		return false, fmt.Errorf("%w: %q", errs.ErrEmptyKey, line)
	}
	if !utf8.Valid(line[:sep]) {
		return false, fmt.Errorf("%w: %q", errs.ErrInvalidKey, line[:sep])
	}

	v, err := fixedpoint.Parse(line[sep+1:])
	if err != nil {
		return false, err
	}
	table.LookupOrCreate(line[:sep]).Add(v)

	return true, nil
}
