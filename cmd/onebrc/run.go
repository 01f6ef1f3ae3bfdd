package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/onebrc/config"
	"github.com/arloliu/onebrc/engine"
	"github.com/arloliu/onebrc/snapshot"
	"github.com/arloliu/onebrc/stats"
)

// singleThreadArg is the legacy positional switch for single-threaded mode.
const singleThreadArg = "st"

type runFlags struct {
	singleThread        bool
	workers             int
	lookahead           int
	compression         string
	snapshotOut         string
	snapshotCompression string
	metricsFile         string
}

func (a *app) newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [file] [st]",
		Short: "Aggregate a measurements file",
		Long: `Reads "station;value" lines and prints {station=min/mean/max, ...}
sorted by station name, followed by the elapsed time on stderr.

The file defaults to measurements.txt. Compressed files (.zst, .s2, .lz4)
are read single-threaded.`,
		Args: runArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyRunFlags(cmd, f, args); err != nil {
				return err
			}

			return a.run(cmd)
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&f.singleThread, "single-thread", "s", false, "Scan on a single goroutine")
	fl.IntVarP(&f.workers, "workers", "w", 0, "Worker count (0 = GOMAXPROCS)")
	fl.IntVar(&f.lookahead, "lookahead", 0, "Initial boundary alignment window in bytes")
	fl.StringVar(&f.compression, "compression", "", "Input compression: auto, none, zstd, s2, lz4")
	fl.StringVar(&f.snapshotOut, "snapshot-out", "", "Write the result table to this snapshot file")
	fl.StringVar(&f.snapshotCompression, "snapshot-compression", "", "Snapshot payload compression: none, zstd, s2, lz4")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	return cmd
}

// runArgs accepts at most one input path plus the optional st switch.
func runArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(2)(cmd, args); err != nil {
		return err
	}

	var paths []string
	for _, arg := range args {
		if arg != singleThreadArg {
			paths = append(paths, arg)
		}
	}
	if len(paths) > 1 {
		return fmt.Errorf("accepts one input file, got %q and %q", paths[0], paths[1])
	}

	return nil
}

// applyRunFlags overlays explicitly set flags and positional arguments on a.cfg.
func (a *app) applyRunFlags(cmd *cobra.Command, f *runFlags, args []string) error {
	cfg := a.cfg
	fl := cmd.Flags()

	for _, arg := range args {
		if arg == singleThreadArg {
			cfg.Engine.SingleThread = true
			continue
		}
		cfg.Input = arg
	}

	if fl.Changed("single-thread") {
		cfg.Engine.SingleThread = f.singleThread
	}
	if fl.Changed("workers") {
		cfg.Engine.Workers = f.workers
	}
	if fl.Changed("lookahead") {
		cfg.Engine.Lookahead = f.lookahead
	}
	if fl.Changed("compression") {
		cfg.Engine.Compression = f.compression
	}
	if fl.Changed("snapshot-out") {
		cfg.Snapshot.Out = f.snapshotOut
	}
	if fl.Changed("snapshot-compression") {
		cfg.Snapshot.Compression = f.snapshotCompression
	}
	if fl.Changed("metrics-file") {
		cfg.Metrics.File = f.metricsFile
	}

	return cfg.Validate()
}

func (a *app) run(cmd *cobra.Command) error {
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	opts = append(opts, engine.WithLogger(a.logger), engine.WithRegisterer(reg))
	eng, err := engine.New(opts...)
	if err != nil {
		return err
	}

	res, err := a.runEngine(ctx, eng, cfg)
	if err != nil {
		a.logger.Error("run failed", zap.String("input", cfg.Input), zap.Error(err))
		return err
	}

	if err := stats.WriteResult(cmd.OutOrStdout(), res.Table); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "took %s\n", res.Elapsed)

	if cfg.Snapshot.Out != "" {
		ct, err := cfg.SnapshotCompression()
		if err != nil {
			return err
		}
		if err := snapshot.WriteFile(cfg.Snapshot.Out, res.Table, snapshot.WithCompression(ct)); err != nil {
			return err
		}
		a.logger.Info("snapshot written", zap.String("path", cfg.Snapshot.Out), zap.Stringer("compression", ct))
	}

	if cfg.Metrics.File != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.File, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}

func (a *app) runEngine(ctx context.Context, eng *engine.Engine, cfg *config.Config) (*engine.Result, error) {
	if cfg.Engine.SingleThread {
		return eng.RunSingle(ctx, cfg.Input)
	}

	return eng.Run(ctx, cfg.Input)
}
