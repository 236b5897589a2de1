package telemetry

import (
	"math"

	"github.com/pthm-cable/antsim/components"
	"github.com/pthm-cable/antsim/systems"
)

// Collector accumulates per-window counters and produces WindowStats.
type Collector struct {
	windowTicks int32

	// Current window tracking
	windowStartTick int32
	startDeposits   uint64
	startDropped    uint64

	// Scratch buffers reused between windows
	pathValues []float64
	foodValues []float64
	speeds     []float64
	nestDists  []float64
}

// NewCollector creates a stats collector emitting one window every windowTicks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int32 { return c.windowTicks }

// ShouldFlush reports whether the window ending at tick is complete.
func (c *Collector) ShouldFlush(tick int32) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// Flush computes stats for the window ending at tick and starts a new one.
func (c *Collector) Flush(tick int32, field *systems.PheromoneField, ants []components.Ant, nest components.Vector) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		Ants:            len(ants),
		Deposits:        int(field.Deposits() - c.startDeposits),
		Dropped:         int(field.Dropped() - c.startDropped),
	}

	c.fieldStats(field, &stats)
	c.antStats(field, ants, nest, &stats)

	c.windowStartTick = tick
	c.startDeposits = field.Deposits()
	c.startDropped = field.Dropped()

	return stats
}

func (c *Collector) fieldStats(field *systems.PheromoneField, stats *WindowStats) {
	c.pathValues = c.pathValues[:0]
	c.foodValues = c.foodValues[:0]
	for _, cell := range field.Cells() {
		if cell.Path > 0 {
			c.pathValues = append(c.pathValues, cell.Path)
		}
		if cell.Food > 0 {
			c.foodValues = append(c.foodValues, cell.Food)
		}
	}

	total := float64(len(field.Cells()))
	stats.PathCells = len(c.pathValues)
	stats.FoodCells = len(c.foodValues)
	if total > 0 {
		stats.PathCoverage = float64(stats.PathCells) / total
		stats.FoodCoverage = float64(stats.FoodCells) / total
	}

	path := Summarize(c.pathValues)
	stats.PathMean = path.Mean
	stats.PathP50 = path.P50
	stats.PathP90 = path.P90
	stats.FoodMean = Summarize(c.foodValues).Mean
}

func (c *Collector) antStats(field *systems.PheromoneField, ants []components.Ant, nest components.Vector, stats *WindowStats) {
	w, h := field.Size()
	wf, hf := float64(w), float64(h)

	c.speeds = c.speeds[:0]
	c.nestDists = c.nestDists[:0]
	for i := range ants {
		a := &ants[i]
		c.speeds = append(c.speeds, math.Hypot(a.Velocity.X, a.Velocity.Y))
		c.nestDists = append(c.nestDists, math.Hypot(a.Position.X-nest.X, a.Position.Y-nest.Y))

		if a.Position.X == 0 || a.Position.X == wf || a.Position.Y == 0 || a.Position.Y == hf {
			stats.OnWall++
		}
	}

	speed := Summarize(c.speeds)
	stats.SpeedMean = speed.Mean
	stats.SpeedStd = speed.Std
	stats.SpeedP90 = speed.P90

	dist := Summarize(c.nestDists)
	stats.NestDistMean = dist.Mean
	stats.NestDistMax = dist.Max
}
