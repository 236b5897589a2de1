package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseDecay     = "decay"
	PhaseAnts      = "ants"
	PhaseTelemetry = "telemetry"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// PerfCollector keeps the last windowSize tick timings, split by phase.
// Phases are timed back to back: starting one ends the previous.
type PerfCollector struct {
	now        Clock
	windowSize int

	// Ring buffers indexed by sample slot; a phase missing from a tick stores 0
	ticks  []time.Duration
	phases map[string][]time.Duration
	next   int
	count  int

	current    map[string]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      string

	scratch []float64
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	return NewPerfCollectorWithClock(windowSize, time.Now)
}

// NewPerfCollectorWithClock is NewPerfCollector with an explicit time source.
func NewPerfCollectorWithClock(windowSize int, now Clock) *PerfCollector {
	if windowSize < 1 {
		windowSize = 1
	}
	return &PerfCollector{
		now:        now,
		windowSize: windowSize,
		ticks:      make([]time.Duration, windowSize),
		phases:     make(map[string][]time.Duration),
		current:    make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	clear(p.current)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the running phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.phase = ""

	slot := p.next
	p.ticks[slot] = now.Sub(p.tickStart)
	for name := range p.current {
		if _, ok := p.phases[name]; !ok {
			p.phases[name] = make([]time.Duration, p.windowSize)
		}
	}
	for name, ring := range p.phases {
		ring[slot] = p.current[name]
	}

	p.next = (p.next + 1) % p.windowSize
	if p.count < p.windowSize {
		p.count++
	}
}

// PhaseStats summarises one phase over the window.
type PhaseStats struct {
	Avg time.Duration
	P90 time.Duration
	Pct float64 // Share of the average tick, 0-100
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Samples int

	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration
	P90Tick time.Duration

	TicksPerSecond float64

	Phases map[string]PhaseStats
}

// Stats summarises the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{Samples: p.count, Phases: make(map[string]PhaseStats)}
	if p.count == 0 {
		return stats
	}

	tick := p.summarize(p.ticks)
	stats.AvgTick = tick.avg
	stats.MinTick = tick.min
	stats.MaxTick = tick.max
	stats.P90Tick = tick.p90
	if tick.avg > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(tick.avg)
	}

	for name, ring := range p.phases {
		s := p.summarize(ring)
		ps := PhaseStats{Avg: s.avg, P90: s.p90}
		if tick.avg > 0 {
			ps.Pct = float64(s.avg) / float64(tick.avg) * 100
		}
		stats.Phases[name] = ps
	}

	return stats
}

type durationSummary struct {
	avg, min, max, p90 time.Duration
}

// summarize reads the filled part of a ring. Slot order is irrelevant.
func (p *PerfCollector) summarize(ring []time.Duration) durationSummary {
	p.scratch = p.scratch[:0]
	for _, d := range ring[:p.count] {
		p.scratch = append(p.scratch, float64(d))
	}
	s := Summarize(p.scratch)
	return durationSummary{
		avg: time.Duration(s.Mean),
		min: time.Duration(p.scratch[0]),
		max: time.Duration(s.Max),
		p90: time.Duration(s.P90),
	}
}

// SortedPhases returns phase names ordered by average duration, longest first.
func (s PerfStats) SortedPhases() []string {
	names := make([]string, 0, len(s.Phases))
	for name := range s.Phases {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.Phases[names[i]].Avg, s.Phases[names[j]].Avg
		if a == b {
			return names[i] < names[j]
		}
		return a > b
	})
	return names
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("samples", s.Samples),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p90_tick_us", s.P90Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, name := range s.SortedPhases() {
		ps := s.Phases[name]
		attrs = append(attrs, slog.Group(name,
			slog.Float64("pct", ps.Pct),
			slog.Int64("p90_us", ps.P90.Microseconds()),
		))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	RunID       string  `csv:"run_id"`
	WindowEnd   int32   `csv:"window_end"`
	Samples     int     `csv:"samples"`
	AvgTickUS   int64   `csv:"avg_tick_us"`
	MinTickUS   int64   `csv:"min_tick_us"`
	MaxTickUS   int64   `csv:"max_tick_us"`
	P90TickUS   int64   `csv:"p90_tick_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`

	DecayPct     float64 `csv:"decay_pct"`
	DecayP90US   int64   `csv:"decay_p90_us"`
	AntsPct      float64 `csv:"ants_pct"`
	AntsP90US    int64   `csv:"ants_p90_us"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the known phases into a row. Unknown phases are omitted.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	decay := s.Phases[PhaseDecay]
	ants := s.Phases[PhaseAnts]
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		Samples:      s.Samples,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MinTickUS:    s.MinTick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		P90TickUS:    s.P90Tick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		DecayPct:     decay.Pct,
		DecayP90US:   decay.P90.Microseconds(),
		AntsPct:      ants.Pct,
		AntsP90US:    ants.P90.Microseconds(),
		TelemetryPct: s.Phases[PhaseTelemetry].Pct,
	}
}
