package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	RunID           string `csv:"run_id"`
	WindowStartTick int32  `csv:"-"`
	WindowEndTick   int32  `csv:"window_end"`

	Ants int `csv:"ants"`

	// Trail coverage at window end
	PathCells    int     `csv:"path_cells"`
	FoodCells    int     `csv:"food_cells"`
	PathCoverage float64 `csv:"path_coverage"` // Fraction of cells with path > 0
	FoodCoverage float64 `csv:"food_coverage"`

	// Concentration over non-zero path cells
	PathMean float64 `csv:"path_mean"`
	PathP50  float64 `csv:"path_p50"`
	PathP90  float64 `csv:"path_p90"`
	FoodMean float64 `csv:"food_mean"`

	// Deposits during window
	Deposits int `csv:"deposits"`
	Dropped  int `csv:"dropped"`

	// Ant kinematics at window end
	SpeedMean    float64 `csv:"speed_mean"`
	SpeedStd     float64 `csv:"speed_std"`
	SpeedP90     float64 `csv:"speed_p90"`
	OnWall       int     `csv:"on_wall"`
	NestDistMean float64 `csv:"nest_dist_mean"`
	NestDistMax  float64 `csv:"nest_dist_max"`
}

// Summary describes a sample of values.
type Summary struct {
	Mean, Std, P50, P90, Max float64
}

// Summarize computes mean, sample standard deviation, quantiles and max.
// values is sorted in place. Returns zeros for an empty slice.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sort.Float64s(values)

	var s Summary
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}
	s.P50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	s.Max = floats.Max(values)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("ants", s.Ants),
		slog.Int("path_cells", s.PathCells),
		slog.Int("food_cells", s.FoodCells),
		slog.Float64("path_coverage", s.PathCoverage),
		slog.Float64("food_coverage", s.FoodCoverage),
		slog.Float64("path_mean", s.PathMean),
		slog.Float64("path_p50", s.PathP50),
		slog.Float64("path_p90", s.PathP90),
		slog.Float64("food_mean", s.FoodMean),
		slog.Int("deposits", s.Deposits),
		slog.Int("dropped", s.Dropped),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("on_wall", s.OnWall),
		slog.Float64("nest_dist_mean", s.NestDistMean),
		slog.Float64("nest_dist_max", s.NestDistMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
