package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/antsim/config"
	"github.com/pthm-cable/antsim/sim"
	"github.com/pthm-cable/antsim/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	ants := flag.Int("ants", -1, "Initial ant count (-1 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until interrupted)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and state exports")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	parallel := flag.Bool("parallel", false, "Step ant chunks concurrently")
	exportEvery := flag.Int("export-every", 0, "Export state JSON every N ticks (0 = never)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *parallel {
		cfg.Parallel.Enabled = true
	}
	if *ants >= 0 {
		cfg.Ants.Initial = *ants
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	s := sim.NewSimulation(cfg, sim.Options{Seed: rngSeed, Perf: perf})
	s.AddAgents(cfg.Ants.Initial)

	runner := sim.NewRunner(s, telemetry.NewCollector(cfg.Telemetry.StatsWindow), perf, out, sim.RunOptions{
		MaxTicks:    *maxTicks,
		LogStats:    *logStats,
		ExportEvery: *exportEvery,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"run_id", out.RunID(),
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"ants", cfg.Ants.Initial,
		"max_ticks", *maxTicks,
		"parallel", cfg.Parallel.Enabled,
	)

	if err := runner.Run(ctx); err != nil {
		slog.Error("simulation failed", "tick", s.TickCount(), "error", err)
		stop()
		os.Exit(1)
	}

	totals := s.Field().Totals()
	slog.Info("simulation finished",
		"tick", s.TickCount(),
		"digest", s.Digest(),
		"path_cells", totals.PathCells,
		"food_cells", totals.FoodCells,
		"dropped_deposits", s.Field().Dropped(),
	)
}
