package engine

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/format"
	"github.com/arloliu/onebrc/internal/options"
	"github.com/arloliu/onebrc/partition"
	"github.com/arloliu/onebrc/scan"
)

// Config holds the engine settings. Build it with options passed to New.
type Config struct {
	workers        int
	lookahead      int
	readBufferSize int
	compression    format.CompressionType
	logger         *zap.Logger
	registerer     prometheus.Registerer
}

// Option configures an Engine.
type Option = options.Option[*Config]

func defaultConfig() *Config {
	return &Config{
		workers:        0,
		lookahead:      partition.DefaultLookahead,
		readBufferSize: scan.DefaultBufferSize,
		compression:    format.CompressionAuto,
		logger:         zap.NewNop(),
	}
}

// Workers returns the effective worker count: the configured value, or
// runtime.GOMAXPROCS(0) when it is zero.
func (c *Config) Workers() int {
	if c.workers > 0 {
		return c.workers
	}

	return runtime.GOMAXPROCS(0)
}

// WithWorkers sets the number of workers for multi-threaded runs.
// Zero selects runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidWorkerCount, n)
		}
		c.workers = n

		return nil
	})
}

// WithLookahead sets the initial boundary-alignment window in bytes.
// The window grows on demand up to partition.MaxLookahead.
func WithLookahead(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 || n > partition.MaxLookahead {
			return fmt.Errorf("%w: lookahead %d not in [1, %d]", errs.ErrInvalidConfig, n, partition.MaxLookahead)
		}
		c.lookahead = n

		return nil
	})
}

// WithReadBufferSize sets the per-worker read buffer size in bytes.
func WithReadBufferSize(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: read buffer size %d", errs.ErrInvalidConfig, n)
		}
		c.readBufferSize = n

		return nil
	})
}

// WithCompression sets the input compression. format.CompressionAuto, the
// default, infers it from the file extension.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if ct != format.CompressionAuto && !ct.Valid() {
			return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, ct)
		}
		c.compression = ct

		return nil
	})
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

// WithRegisterer registers the engine metrics with reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return options.NoError(func(c *Config) {
		c.registerer = reg
	})
}
