package server

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/JyotinderSingh/dropexec/plan_impl"
	"github.com/JyotinderSingh/dropexec/trace"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate and LoadConfig.
var ErrInvalidConfig = errors.New("invalid config")

const (
	PlannerHeuristic = "heuristic"
	PlannerBasic     = "basic"

	minBlockSize  = 64
	minBufferPool = 3
)

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds the engine settings.
type Config struct {
	// DataDir holds the table files. An empty DataDir uses a temporary
	// directory that is removed on Close.
	DataDir        string        `yaml:"dataDir"`
	BlockSize      int           `yaml:"blockSize"`
	BufferPoolSize int           `yaml:"bufferPoolSize"`
	PinTimeout     time.Duration `yaml:"pinTimeout"`

	// BufferBudget is the block nested loop chunk size. Zero derives it
	// from the available buffers.
	BufferBudget int `yaml:"bufferBudget"`
	// HashPartitions fixes the hash join partition count. Zero derives it
	// from the available buffers.
	HashPartitions      int     `yaml:"hashPartitions"`
	SecondaryHashFactor float64 `yaml:"secondaryHashFactor"`

	StatsRefreshLimit int    `yaml:"statsRefreshLimit"`
	Planner           string `yaml:"planner"`
	Trace             bool   `yaml:"trace"`

	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		BlockSize:           400,
		BufferPoolSize:      64,
		PinTimeout:          10 * time.Second,
		SecondaryHashFactor: plan_impl.DefaultSecondaryHashFactor,
		StatsRefreshLimit:   100,
		Planner:             PlannerHeuristic,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "parse %s: %v", path, err)
	}

	if config.DataDir != "" && !filepath.IsAbs(config.DataDir) {
		config.DataDir = filepath.Join(filepath.Dir(path), config.DataDir)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks every setting and wraps ErrInvalidConfig on failure.
func (c Config) Validate() error {
	if c.BlockSize < minBlockSize {
		return errors.Wrapf(ErrInvalidConfig, "blockSize %d is below %d", c.BlockSize, minBlockSize)
	}
	if c.BufferPoolSize < minBufferPool {
		return errors.Wrapf(ErrInvalidConfig, "bufferPoolSize %d is below %d", c.BufferPoolSize, minBufferPool)
	}
	if c.PinTimeout <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "pinTimeout must be positive, got %s", c.PinTimeout)
	}
	if c.BufferBudget < 0 || c.HashPartitions < 0 || c.StatsRefreshLimit < 0 {
		return errors.Wrap(ErrInvalidConfig, "bufferBudget, hashPartitions and statsRefreshLimit must not be negative")
	}
	if c.SecondaryHashFactor < 1 {
		return errors.Wrapf(ErrInvalidConfig, "secondaryHashFactor %v is below 1", c.SecondaryHashFactor)
	}
	if c.Planner != PlannerHeuristic && c.Planner != PlannerBasic {
		return errors.Wrapf(ErrInvalidConfig, "planner %q (must be %q or %q)", c.Planner, PlannerHeuristic, PlannerBasic)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.Wrapf(ErrInvalidConfig, "log.format %q (must be 'text' or 'json')", c.Log.Format)
	}
	return nil
}

// NewLogger builds a logger writing to out with the configured level and
// formatter.
func (c Config) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "log.level: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if c.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// PlannerOptions returns the join settings for one query.
func (c Config) PlannerOptions(tracer trace.Tracer) plan_impl.Options {
	return plan_impl.Options{
		BufferBudget:        c.BufferBudget,
		HashPartitions:      c.HashPartitions,
		SecondaryHashFactor: c.SecondaryHashFactor,
		Tracer:              tracer,
	}
}
