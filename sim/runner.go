package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/antsim/components"
	"github.com/pthm-cable/antsim/telemetry"
)

// RunOptions controls how long the runner drives the simulation and what it records.
type RunOptions struct {
	MaxTicks    int  // 0 = until the context is cancelled
	LogStats    bool // Log window and perf stats via slog
	ExportEvery int  // Write a state snapshot every N ticks (0 = never)
}

// Runner drives a Simulation tick by tick and feeds telemetry.
// The engine itself has no notion of cancellation; the runner checks the
// context between ticks.
type Runner struct {
	sim       *Simulation
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	opts      RunOptions

	ants []components.Ant
}

// NewRunner wires a simulation to its telemetry sinks. perf and output may be nil.
func NewRunner(s *Simulation, collector *telemetry.Collector, perf *telemetry.PerfCollector,
	output *telemetry.OutputManager, opts RunOptions) *Runner {
	return &Runner{
		sim:       s,
		collector: collector,
		perf:      perf,
		output:    output,
		opts:      opts,
	}
}

// Run ticks until MaxTicks is reached or ctx is done.
// A cancelled context is not an error.
func (r *Runner) Run(ctx context.Context) error {
	for r.opts.MaxTicks <= 0 || int(r.sim.TickCount()) < r.opts.MaxTicks {
		select {
		case <-ctx.Done():
			slog.Info("run stopped", "tick", r.sim.TickCount(), "reason", context.Cause(ctx))
			return nil
		default:
		}

		if err := r.Step(); err != nil {
			return err
		}
	}
	slog.Info("max ticks reached", "tick", r.sim.TickCount())
	return nil
}

// Step advances one tick and records any telemetry that falls due.
func (r *Runner) Step() error {
	if r.perf != nil {
		r.perf.StartTick()
	}

	r.sim.Tick()
	tick := r.sim.TickCount()

	if r.perf != nil {
		r.perf.StartPhase(telemetry.PhaseTelemetry)
	}
	err := r.record(tick)
	if r.perf != nil {
		r.perf.EndTick()
	}
	return err
}

func (r *Runner) record(tick int32) error {
	flush := r.collector != nil && r.collector.ShouldFlush(tick)
	export := r.opts.ExportEvery > 0 && int(tick)%r.opts.ExportEvery == 0
	if !flush && !export {
		return nil
	}

	r.ants = r.sim.AppendAnts(r.ants[:0])

	if flush {
		stats := r.collector.Flush(tick, r.sim.Field(), r.ants, r.sim.Nest())
		if r.opts.LogStats {
			stats.LogStats()
		}
		if err := r.output.WriteTelemetry(stats); err != nil {
			return err
		}

		if r.perf != nil {
			perfStats := r.perf.Stats()
			if r.opts.LogStats {
				slog.Info("perf", "tick", tick, "stats", perfStats)
			}
			if err := r.output.WritePerf(perfStats, tick); err != nil {
				return err
			}
		}
	}

	if export {
		snap := telemetry.NewSnapshot(tick, r.sim.Digest(), r.sim.Field(), r.ants)
		path, err := r.output.WriteSnapshot(snap)
		if err != nil {
			return fmt.Errorf("exporting tick %d: %w", tick, err)
		}
		if path != "" {
			slog.Debug("state exported", "path", path)
		}
	}

	return nil
}
