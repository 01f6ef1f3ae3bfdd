// Package onebrc computes per-key minimum, mean and maximum over large files
// of "key;value" lines.
//
// The input is a sequence of records terminated by '\n'. Each record is a key,
// a ';' and a decimal value with exactly one fractional digit, such as
// "Paris;12.3" or "Tokyo;-0.5". The result lists every key in byte order:
//
//	{Paris=-4.5/3.9/12.3, Tokyo=0.0/0.0/0.0}
//
// # Basic Usage
//
//	res, err := onebrc.Run(ctx, "measurements.txt", engine.WithWorkers(8))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(onebrc.Format(res.Table))
//
// # Package Structure
//
// This package provides top-level wrappers for the common case. The work is
// done by:
//
//   - engine: partitions the file and coordinates the workers
//   - partition: byte range splitting and record boundary alignment
//   - scan: the per-range record scanner
//   - stats: aggregates, the aggregate table and result formatting
//   - fixedpoint: parsing and rounding of one-decimal values
//   - snapshot: binary persistence of aggregate tables
//   - compress: codecs for compressed input and snapshot payloads
package onebrc

import (
	"context"

	"github.com/arloliu/onebrc/engine"
	"github.com/arloliu/onebrc/stats"
)

// Run aggregates the file at path with a new engine configured by opts.
//
// Parameters:
//   - ctx: Cancels the run
//   - path: Measurements file, optionally compressed (.zst, .s2, .lz4)
//   - opts: Engine options
//
// Returns:
//   - *engine.Result: Result table and run statistics
//   - error: Option, I/O, format or partition error
func Run(ctx context.Context, path string, opts ...engine.Option) (*engine.Result, error) {
	e, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}

	return e.Run(ctx, path)
}

// RunSingle aggregates the file at path on the calling goroutine.
func RunSingle(ctx context.Context, path string, opts ...engine.Option) (*engine.Result, error) {
	e, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}

	return e.RunSingle(ctx, path)
}

// Format renders table as "{key=min/mean/max, ...}" sorted by key.
func Format(table *stats.Table) string {
	return stats.FormatResult(table)
}

// Aggregate runs Run and formats the result.
func Aggregate(ctx context.Context, path string, opts ...engine.Option) (string, error) {
	res, err := Run(ctx, path, opts...)
	if err != nil {
		return "", err
	}

	return Format(res.Table), nil
}
