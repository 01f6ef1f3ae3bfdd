// Package config loads the YAML configuration file of the onebrc command.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/onebrc/engine"
	"github.com/arloliu/onebrc/errs"
	"github.com/arloliu/onebrc/format"
	"github.com/arloliu/onebrc/partition"
	"github.com/arloliu/onebrc/scan"
)

// DefaultInput is the measurements file read when none is given.
const DefaultInput = "measurements.txt"

// Config is the root configuration.
type Config struct {
	Input    string         `yaml:"input"`
	Engine   EngineConfig   `yaml:"engine"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EngineConfig configures the aggregation engine.
type EngineConfig struct {
	SingleThread   bool   `yaml:"single_thread"`
	Workers        int    `yaml:"workers"` // 0 = GOMAXPROCS
	Lookahead      int    `yaml:"lookahead"`
	ReadBufferSize int    `yaml:"read_buffer_size"`
	Compression    string `yaml:"compression"` // auto, none, zstd, s2, lz4
}

// SnapshotConfig configures the optional result snapshot.
type SnapshotConfig struct {
	Out         string `yaml:"out"`
	Compression string `yaml:"compression"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// LoggingConfig configures the command logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Input: DefaultInput,
		Engine: EngineConfig{
			Lookahead:      partition.DefaultLookahead,
			ReadBufferSize: scan.DefaultBufferSize,
			Compression:    "auto",
		},
		Snapshot: SnapshotConfig{
			Compression: "none",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every field and returns the first problem found,
// wrapping errs.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: input must not be empty", errs.ErrInvalidConfig)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("%w: engine.workers %d is negative", errs.ErrInvalidConfig, c.Engine.Workers)
	}
	if c.Engine.Lookahead <= 0 || c.Engine.Lookahead > partition.MaxLookahead {
		return fmt.Errorf("%w: engine.lookahead %d not in [1, %d]", errs.ErrInvalidConfig, c.Engine.Lookahead, partition.MaxLookahead)
	}
	if c.Engine.ReadBufferSize <= 0 {
		return fmt.Errorf("%w: engine.read_buffer_size %d", errs.ErrInvalidConfig, c.Engine.ReadBufferSize)
	}
	if _, err := c.EngineOptions(); err != nil {
		return err
	}
	if _, err := c.SnapshotCompression(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// SnapshotCompression returns the snapshot payload compression; "auto" and
// the empty string mean none.
func (c *Config) SnapshotCompression() (format.CompressionType, error) {
	ct, err := format.ParseCompression(c.Snapshot.Compression)
	if err != nil {
		return 0, fmt.Errorf("%w: snapshot.compression: %w", errs.ErrInvalidConfig, err)
	}
	if ct == format.CompressionAuto {
		ct = format.CompressionNone
	}

	return ct, nil
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w: logging.level: %w", errs.ErrInvalidConfig, err)
	}

	return lvl, nil
}

// EngineOptions converts the engine section into engine options.
//
// Returns:
//   - []engine.Option: Options for engine.New
//   - error: errs.ErrInvalidConfig if engine.compression is not a known name
func (c *Config) EngineOptions() ([]engine.Option, error) {
	ct, err := format.ParseCompression(c.Engine.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: engine.compression: %w", errs.ErrInvalidConfig, err)
	}

	return []engine.Option{
		engine.WithWorkers(c.Engine.Workers),
		engine.WithLookahead(c.Engine.Lookahead),
		engine.WithReadBufferSize(c.Engine.ReadBufferSize),
		engine.WithCompression(ct),
	}, nil
}
