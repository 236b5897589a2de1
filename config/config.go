// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Ants      AntsConfig      `yaml:"ants"`
	Pheromone PheromoneConfig `yaml:"pheromone"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions in cells.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// AntsConfig holds ant kinematics and population parameters.
type AntsConfig struct {
	Initial     int     `yaml:"initial"`      // Population spawned by the driver at start
	RandomDir   float64 `yaml:"random_dir"`   // Per-tick velocity jitter magnitude
	MaxVelocity float64 `yaml:"max_velocity"` // Clamp bound on each velocity component
	NestX       float64 `yaml:"nest_x"`       // Negative = grid centre
	NestY       float64 `yaml:"nest_y"`       // Negative = grid centre
}

// PheromoneConfig holds pheromone decay parameters.
type PheromoneConfig struct {
	ZeroCutoff      float64 `yaml:"zero_cutoff"`      // Decayed values below this snap to 0
	DissipationRate float64 `yaml:"dissipation_rate"` // Per-tick multiplicative decay, (0,1)
}

// ParallelConfig controls the chunked ant pass.
type ParallelConfig struct {
	Enabled   bool `yaml:"enabled"`
	ChunkSize int  `yaml:"chunk_size"` // Ants per chunk; fixed so results don't depend on core count
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NestX, NestY float64 // Effective nest location
	WidthF       float64 // World.Width as float64
	HeightF      float64 // World.Height as float64
	Cells        int     // Width * Height
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Default returns the embedded defaults with derived values filled in.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate reports every out-of-range parameter, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		invalid("world size %dx%d must be positive", c.World.Width, c.World.Height)
	}
	if c.Ants.Initial < 0 {
		invalid("ants.initial %d must not be negative", c.Ants.Initial)
	}
	if c.Ants.RandomDir < 0 || math.IsNaN(c.Ants.RandomDir) {
		invalid("ants.random_dir %v must not be negative", c.Ants.RandomDir)
	}
	if c.Ants.MaxVelocity < 0 || math.IsNaN(c.Ants.MaxVelocity) {
		invalid("ants.max_velocity %v must not be negative", c.Ants.MaxVelocity)
	}
	if !(c.Pheromone.DissipationRate > 0 && c.Pheromone.DissipationRate < 1) {
		invalid("pheromone.dissipation_rate %v must be in (0,1)", c.Pheromone.DissipationRate)
	}
	checkNest := func(name string, v float64, limit int) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v >= float64(limit) {
			invalid("ants.%s %v must be negative (grid centre) or inside [0,%d)", name, v, limit)
		}
	}
	checkNest("nest_x", c.Ants.NestX, c.World.Width)
	checkNest("nest_y", c.Ants.NestY, c.World.Height)
	if c.Pheromone.ZeroCutoff < 0 || math.IsNaN(c.Pheromone.ZeroCutoff) {
		invalid("pheromone.zero_cutoff %v must not be negative", c.Pheromone.ZeroCutoff)
	}
	if c.Parallel.ChunkSize <= 0 {
		invalid("parallel.chunk_size %d must be positive", c.Parallel.ChunkSize)
	}
	if c.Telemetry.StatsWindow <= 0 {
		invalid("telemetry.stats_window %d must be positive", c.Telemetry.StatsWindow)
	}
	if c.Telemetry.PerfCollectorWindow <= 0 {
		invalid("telemetry.perf_collector_window %d must be positive", c.Telemetry.PerfCollectorWindow)
	}

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WidthF = float64(c.World.Width)
	c.Derived.HeightF = float64(c.World.Height)
	c.Derived.Cells = c.World.Width * c.World.Height

	// Nest defaults to the floored grid centre
	c.Derived.NestX = c.Ants.NestX
	if c.Derived.NestX < 0 {
		c.Derived.NestX = math.Floor(c.Derived.WidthF / 2)
	}
	c.Derived.NestY = c.Ants.NestY
	if c.Derived.NestY < 0 {
		c.Derived.NestY = math.Floor(c.Derived.HeightF / 2)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
