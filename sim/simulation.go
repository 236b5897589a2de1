// Package sim owns the pheromone field and the ant population and advances
// them one tick at a time.
package sim

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/antsim/components"
	"github.com/pthm-cable/antsim/config"
	"github.com/pthm-cable/antsim/systems"
	"github.com/pthm-cable/antsim/telemetry"
)

// Options configures a Simulation beyond the loaded config.
type Options struct {
	Seed int64
	Perf *telemetry.PerfCollector // Optional phase timing; the caller owns StartTick/EndTick
}

// Simulation holds the complete engine state.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand

	world     *ecs.World
	antMapper *ecs.Map1[components.Ant]
	antFilter *ecs.Filter1[components.Ant]

	field      *systems.PheromoneField
	pass       *systems.AntPass
	kinematics systems.Kinematics
	nest       components.Vector

	perf *telemetry.PerfCollector

	// Reused between ticks
	antPtrs []*components.Ant

	tick       int32
	population int
}

// NewSimulation creates an empty simulation from cfg.
func NewSimulation(cfg *config.Config, opts Options) *Simulation {
	world := ecs.NewWorld()

	s := &Simulation{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		world:     world,
		antMapper: ecs.NewMap1[components.Ant](world),
		antFilter: ecs.NewFilter1[components.Ant](world),
		field: systems.NewPheromoneField(cfg.World.Width, cfg.World.Height, systems.FieldParams{
			DissipationRate: cfg.Pheromone.DissipationRate,
			ZeroCutoff:      cfg.Pheromone.ZeroCutoff,
		}),
		pass: systems.NewAntPass(cfg.Parallel.ChunkSize, cfg.Parallel.Enabled),
		kinematics: systems.Kinematics{
			RandomDir:   cfg.Ants.RandomDir,
			MaxVelocity: cfg.Ants.MaxVelocity,
			Width:       cfg.Derived.WidthF,
			Height:      cfg.Derived.HeightF,
		},
		nest: components.Vector{X: cfg.Derived.NestX, Y: cfg.Derived.NestY},
		perf: opts.Perf,
	}

	return s
}

// AddAgents spawns n ants at the nest.
func (s *Simulation) AddAgents(n int) {
	for i := 0; i < n; i++ {
		ant := components.NewAnt(s.nest)
		s.antMapper.NewEntity(&ant)
	}
	s.population += n
}

// Tick decays the field once, then steps every ant once.
func (s *Simulation) Tick() {
	if s.perf != nil {
		s.perf.StartPhase(telemetry.PhaseDecay)
	}

	// Decay must finish before any ant deposits this tick
	s.field.Decay()

	if s.perf != nil {
		s.perf.StartPhase(telemetry.PhaseAnts)
	}

	s.antPtrs = s.antPtrs[:0]
	query := s.antFilter.Query()
	for query.Next() {
		s.antPtrs = append(s.antPtrs, query.Get())
	}
	s.pass.Run(s.antPtrs, s.field, s.kinematics, s.rng)

	s.tick++
}

// Ants returns a copy of every ant's state.
func (s *Simulation) Ants() []components.Ant {
	return s.AppendAnts(make([]components.Ant, 0, s.population))
}

// AppendAnts appends every ant's state to dst and returns it.
func (s *Simulation) AppendAnts(dst []components.Ant) []components.Ant {
	query := s.antFilter.Query()
	for query.Next() {
		dst = append(dst, *query.Get())
	}
	return dst
}

// Pheromones returns the concentrations at grid cell (x, y).
func (s *Simulation) Pheromones(x, y int) (systems.Cell, bool) {
	return s.field.At(x, y)
}

// Field exposes the pheromone field for read-only consumers.
func (s *Simulation) Field() *systems.PheromoneField { return s.field }

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Nest returns the spawn location.
func (s *Simulation) Nest() components.Vector { return s.nest }

// TickCount returns the number of completed ticks.
func (s *Simulation) TickCount() int32 { return s.tick }

// Population returns the number of ants.
func (s *Simulation) Population() int { return s.population }

// SetParallel toggles the concurrent ant pass.
func (s *Simulation) SetParallel(on bool) { s.pass.SetParallel(on) }

// Digest hashes the field and every ant's state. Equal seeds and configs
// give equal digests regardless of the parallel setting.
func (s *Simulation) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}

	for _, c := range s.field.Cells() {
		put(c.Path)
		put(c.Food)
	}
	query := s.antFilter.Query()
	for query.Next() {
		a := query.Get()
		put(a.Position.X)
		put(a.Position.Y)
		put(a.Velocity.X)
		put(a.Velocity.Y)
		put(a.FoodCarried)
		put(a.Energy)
	}
	return h.Sum64()
}
