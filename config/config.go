package config

import (
	"time"

	"github.com/kbukum/foldkit/errors"
	"github.com/kbukum/foldkit/validation"
)

// DefaultName is the configuration name used to locate files when none is
// given.
const DefaultName = "foldkit"

// Engine defaults.
const (
	DefaultPoolConcurrency    = 10
	DefaultFlattenConcurrency = 20
)

// Config is the complete foldkit runtime configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Engine        EngineConfig        `yaml:"engine" mapstructure:"engine"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// EngineConfig holds the concurrency defaults of the engine.
type EngineConfig struct {
	// PoolConcurrency is the limit used by pooled maps created with a zero limit.
	PoolConcurrency int `yaml:"pool_concurrency" mapstructure:"pool_concurrency" validate:"gte=1"`
	// FlattenConcurrency bounds in-flight productions of flattening iterators.
	FlattenConcurrency int `yaml:"flatten_concurrency" mapstructure:"flatten_concurrency" validate:"gte=1"`
	// FlattenRaceTimeout bounds each wait of a flattening iterator; zero waits
	// indefinitely.
	FlattenRaceTimeout time.Duration `yaml:"flatten_race_timeout" mapstructure:"flatten_race_timeout" validate:"gte=0"`
}

// ObservabilityConfig enables OTLP export of engine traces and metrics.
type ObservabilityConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Engine.PoolConcurrency == 0 {
		c.Engine.PoolConcurrency = DefaultPoolConcurrency
	}
	if c.Engine.FlattenConcurrency == 0 {
		c.Engine.FlattenConcurrency = DefaultFlattenConcurrency
	}
	if c.Observability.Enabled && c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
	if c.Observability.Enabled && c.Observability.Interval == 0 {
		c.Observability.Interval = 15 * time.Second
	}
}

// Validate checks struct tags and the logging section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.ServiceConfig.Validate(); err != nil {
		return errors.InvalidConfig(err.Error()).WithCause(err)
	}
	return nil
}

// Load reads the configuration named DefaultName, applies defaults, and
// validates it.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(DefaultName, &cfg, opts...); err != nil {
		return nil, errors.InvalidConfig(err.Error()).WithCause(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
