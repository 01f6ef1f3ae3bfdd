// Package engine runs an aggregation over a measurements file.
//
// A multi-threaded run splits the file into one candidate range per worker.
// Each worker opens its own handle, aligns its range to record boundaries,
// reports the aligned range to the coordinator and scans it into a private
// table. The coordinator verifies that the aligned ranges tile the file
// exactly before it merges the worker tables into the result.
//
// Compressed input cannot be split by byte offset, so it always takes the
// single-threaded path.
package engine

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/onebrc/compress"
	"github.com/arloliu/onebrc/format"
	"github.com/arloliu/onebrc/internal/options"
	"github.com/arloliu/onebrc/partition"
	"github.com/arloliu/onebrc/scan"
	"github.com/arloliu/onebrc/stats"
)

// Mode identifies how a run was executed.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// Result is the outcome of a completed run.
type Result struct {
	// ID identifies the run in log entries.
	ID      uuid.UUID
	Table   *stats.Table
	Mode    Mode
	Workers int
	// Ranges holds the verified aligned ranges of a multi-threaded run, in offset order.
	Ranges  []partition.Range
	Records uint64
	Bytes   int64
	Elapsed time.Duration
}

type alignFunc func(r io.ReaderAt, candidate partition.Range, length int64, window int) (partition.Range, error)

// Engine executes aggregation runs. It is safe to start several runs concurrently.
type Engine struct {
	cfg     *Config
	logger  *zap.Logger
	metrics *Metrics
	align   alignFunc
}

// New creates an Engine.
//
// Parameters:
//   - opts: Engine options; see WithWorkers, WithLookahead and friends
//
// Returns:
//   - *Engine: Configured engine
//   - error: First option error
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	reg := cfg.registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Engine{
		cfg:     cfg,
		logger:  cfg.logger,
		metrics: NewMetrics(reg),
		align:   partition.Align,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Metrics returns the engine metrics.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Run aggregates the file at path with the configured number of workers.
// Compressed input falls back to RunSingle.
//
// Parameters:
//   - ctx: Cancels every worker when done
//   - path: Measurements file
//
// Returns:
//   - *Result: Merged table and run statistics
//   - error: Open, format, partition or context error; the first worker error wins
func (e *Engine) Run(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	id := uuid.New()
	log := e.logger.With(zap.Stringer("run_id", id))

	ct := e.cfg.compression.Resolve(path)
	if ct != format.CompressionNone {
		log.Warn("compressed input cannot be partitioned, running single-threaded",
			zap.String("path", path), zap.Stringer("compression", ct))

		return e.runSingle(ctx, log, id, path, start)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	res, err := e.runMulti(ctx, log, path, fi.Size())
	if err != nil {
		return nil, err
	}
	res.ID = id
	e.finish(log, res, start)

	return res, nil
}

// RunSingle aggregates the file at path on the calling goroutine,
// decompressing it first when needed.
func (e *Engine) RunSingle(ctx context.Context, path string) (*Result, error) {
	id := uuid.New()

	return e.runSingle(ctx, e.logger.With(zap.Stringer("run_id", id)), id, path, time.Now())
}

func (e *Engine) runSingle(ctx context.Context, log *zap.Logger, id uuid.UUID, path string, start time.Time) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc, err := compress.NewReader(e.cfg.compression.Resolve(path), f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	e.metrics.Workers.Set(1)

	table := stats.NewTable()
	sum, err := scan.Scan(ctx, rc, table, scan.WithBufferSize(e.cfg.readBufferSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res := &Result{
		ID:      id,
		Table:   table,
		Mode:    ModeSingle,
		Workers: 1,
		Records: sum.Records,
		Bytes:   sum.Bytes,
	}
	e.finish(log, res, start)

	return res, nil
}

func (e *Engine) runMulti(ctx context.Context, log *zap.Logger, path string, length int64) (*Result, error) {
	candidates, err := partition.Split(length, e.cfg.Workers())
	if err != nil {
		return nil, err
	}
	n := len(candidates)
	e.metrics.Workers.Set(float64(n))
	log.Debug("partitioned input",
		zap.String("path", path), zap.Int64("length", length), zap.Int("workers", n))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reports := make(chan partition.Range, n)
	tables := make([]*stats.Table, n)
	sums := make([]scan.Summary, n)

	g, gctx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		g.Go(func() error {
			table, sum, err := e.work(gctx, log, path, i, candidate, length, reports)
			if err != nil {
				return err
			}
			tables[i], sums[i] = table, sum

			return nil
		})
	}

	aligned := make([]partition.Range, 0, n)
	for len(aligned) < n {
		select {
		case r := <-reports:
			aligned = append(aligned, r)
		case <-gctx.Done():
			if err := g.Wait(); err != nil {
				return nil, err
			}

			return nil, ctx.Err()
		}
	}

	if err := partition.Verify(aligned, length); err != nil {
		cancel()
		_ = g.Wait()

		return nil, err
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.SortFunc(aligned, func(a, b partition.Range) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	res := &Result{
		Table:   tables[0],
		Mode:    ModeMulti,
		Workers: n,
		Ranges:  aligned,
	}
	for i, t := range tables[1:] {
		if err := res.Table.MergeChecked(t); err != nil {
			return nil, err
		}
		tables[i+1] = nil
	}
	for _, s := range sums {
		res.Records += s.Records
		res.Bytes += s.Bytes
	}

	return res, nil
}

// work aligns one candidate range, reports it and scans it into a new table.
func (e *Engine) work(ctx context.Context, log *zap.Logger, path string, id int, candidate partition.Range,
	length int64, reports chan<- partition.Range,
) (*stats.Table, scan.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, scan.Summary{}, fmt.Errorf("worker %d: %w", id, err)
	}
	defer f.Close()

	rng, err := e.align(f, candidate, length, e.cfg.lookahead)
	if err != nil {
		return nil, scan.Summary{}, fmt.Errorf("worker %d: %w", id, err)
	}
	reports <- rng

	log.Debug("aligned range",
		zap.Int("worker", id), zap.Stringer("candidate", candidate), zap.Stringer("aligned", rng))

	if err := ctx.Err(); err != nil {
		return nil, scan.Summary{}, err
	}

	table := stats.NewTable()
	sum, err := scan.Scan(ctx, io.NewSectionReader(f, rng.Start, rng.Len()), table,
		scan.WithBufferSize(e.cfg.readBufferSize),
		scan.WithBaseOffset(rng.Start),
	)
	if err != nil {
		return nil, scan.Summary{}, fmt.Errorf("worker %d %s: %w", id, rng, err)
	}

	log.Debug("scanned range",
		zap.Int("worker", id), zap.Uint64("records", sum.Records), zap.Int("keys", table.Len()))

	return table, sum, nil
}

func (e *Engine) finish(log *zap.Logger, res *Result, start time.Time) {
	res.Elapsed = time.Since(start)

	if res.Table.HasCollisions() {
		for _, c := range res.Table.Collisions() {
			log.Warn("key digest collision",
				zap.Uint64("digest", c.Digest), zap.String("existing", c.Existing), zap.String("incoming", c.Incoming))
		}
	}

	e.metrics.Records.Add(float64(res.Records))
	e.metrics.Bytes.Add(float64(res.Bytes))
	e.metrics.Keys.Set(float64(res.Table.Len()))
	e.metrics.Collisions.Add(float64(res.Table.CollisionCount()))
	e.metrics.RunDuration.WithLabelValues(string(res.Mode)).Observe(res.Elapsed.Seconds())

	log.Info("run complete",
		zap.String("mode", string(res.Mode)),
		zap.Int("workers", res.Workers),
		zap.Uint64("records", res.Records),
		zap.Int64("bytes", res.Bytes),
		zap.Int("keys", res.Table.Len()),
		zap.Duration("elapsed", res.Elapsed),
	)
}
