package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.World.Width != 512 || cfg.World.Height != 512 {
		t.Errorf("expected 512x512 world, got %dx%d", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Pheromone.DissipationRate != 0.99 {
		t.Errorf("dissipation_rate = %v, want 0.99", cfg.Pheromone.DissipationRate)
	}
	if cfg.Pheromone.ZeroCutoff != 0.01 {
		t.Errorf("zero_cutoff = %v, want 0.01", cfg.Pheromone.ZeroCutoff)
	}
	if cfg.Ants.RandomDir != 0.1 || cfg.Ants.MaxVelocity != 1 {
		t.Errorf("unexpected kinematics: random_dir=%v max_velocity=%v", cfg.Ants.RandomDir, cfg.Ants.MaxVelocity)
	}

	// Nest falls back to the grid centre
	if cfg.Derived.NestX != 256 || cfg.Derived.NestY != 256 {
		t.Errorf("nest = (%v,%v), want (256,256)", cfg.Derived.NestX, cfg.Derived.NestY)
	}
	if cfg.Derived.Cells != 512*512 {
		t.Errorf("derived cells = %d, want %d", cfg.Derived.Cells, 512*512)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("world:\n  width: 5\n  height: 7\npheromone:\n  dissipation_rate: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.World.Width != 5 || cfg.World.Height != 7 {
		t.Errorf("expected 5x7 world, got %dx%d", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Pheromone.DissipationRate != 0.5 {
		t.Errorf("dissipation_rate = %v, want 0.5", cfg.Pheromone.DissipationRate)
	}
	// Untouched fields keep their defaults
	if cfg.Pheromone.ZeroCutoff != 0.01 {
		t.Errorf("zero_cutoff = %v, want default 0.01", cfg.Pheromone.ZeroCutoff)
	}
	// Odd dimensions floor the nest
	if cfg.Derived.NestX != 2 || cfg.Derived.NestY != 3 {
		t.Errorf("nest = (%v,%v), want (2,3)", cfg.Derived.NestX, cfg.Derived.NestY)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }},
		{"negative height", func(c *Config) { c.World.Height = -3 }},
		{"dissipation one", func(c *Config) { c.Pheromone.DissipationRate = 1 }},
		{"dissipation zero", func(c *Config) { c.Pheromone.DissipationRate = 0 }},
		{"negative cutoff", func(c *Config) { c.Pheromone.ZeroCutoff = -0.1 }},
		{"negative jitter", func(c *Config) { c.Ants.RandomDir = -1 }},
		{"negative max velocity", func(c *Config) { c.Ants.MaxVelocity = -1 }},
		{"zero chunk", func(c *Config) { c.Parallel.ChunkSize = 0 }},
		{"zero stats window", func(c *Config) { c.Telemetry.StatsWindow = 0 }},
		{"zero perf window", func(c *Config) { c.Telemetry.PerfCollectorWindow = 0 }},
		{"nest x past grid", func(c *Config) { c.Ants.NestX = float64(c.World.Width) }},
		{"nest y past grid", func(c *Config) { c.Ants.NestY = float64(c.World.Height) + 10 }},
		{"nest x NaN", func(c *Config) { c.Ants.NestX = math.NaN() }},
		{"nest y infinite", func(c *Config) { c.Ants.NestY = math.Inf(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("defaults should validate, got %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadNest(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		wantX   float64
		wantY   float64
	}{
		{"centre", "world: {width: 9, height: 7}\n", false, 4, 3},
		{"explicit", "world: {width: 9, height: 7}\nants: {nest_x: 0, nest_y: 6.5}\n", false, 0, 6.5},
		{"nan", "world: {width: 9, height: 7}\nants: {nest_x: .nan}\n", true, 0, 0},
		{"past edge", "world: {width: 9, height: 7}\nants: {nest_y: 7}\n", true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("expected ErrInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if cfg.Derived.NestX != tt.wantX || cfg.Derived.NestY != tt.wantY {
				t.Errorf("nest = (%v, %v), want (%v, %v)", cfg.Derived.NestX, cfg.Derived.NestY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestWriteYAMLReload(t *testing.T) {
	cfg := MustLoad("")
	cfg.Ants.Initial = 17
	cfg.Pheromone.DissipationRate = 0.75

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if reloaded.Ants.Initial != 17 || reloaded.Pheromone.DissipationRate != 0.75 {
		t.Errorf("reloaded config lost overrides: initial=%d rate=%v",
			reloaded.Ants.Initial, reloaded.Pheromone.DissipationRate)
	}
}
