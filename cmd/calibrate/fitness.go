package main

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/antsim/config"
	"github.com/pthm-cable/antsim/sim"
)

// CoverageEvaluator runs headless simulations and scores how far the final
// path coverage lands from a target fraction of the grid.
type CoverageEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	maxTicks   int32
	seeds      []int64
	target     float64

	mu           sync.Mutex
	lastCoverage float64
}

// NewCoverageEvaluator creates a new evaluator.
func NewCoverageEvaluator(params *ParamVector, baseCfg *config.Config, maxTicks int32, seeds []int64, target float64) *CoverageEvaluator {
	return &CoverageEvaluator{
		params:     params,
		baseConfig: baseCfg,
		maxTicks:   maxTicks,
		seeds:      seeds,
		target:     target,
	}
}

// LastCoverage returns the mean coverage from the most recent evaluation.
func (ce *CoverageEvaluator) LastCoverage() float64 {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return ce.lastCoverage
}

// Evaluate returns the squared distance between mean coverage and target
// (lower = better). Seeds run concurrently. A parameter vector that yields an
// invalid config scores +Inf.
func (ce *CoverageEvaluator) Evaluate(x []float64) float64 {
	coverage, err := ce.Coverage(x)
	if err != nil {
		log.Printf("evaluation rejected: %v", err)
		return math.Inf(1)
	}
	d := coverage - ce.target
	return d * d
}

// Coverage runs every seed and returns the mean final path coverage.
func (ce *CoverageEvaluator) Coverage(x []float64) (float64, error) {
	coverage := make([]float64, len(ce.seeds))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, seed := range ce.seeds {
		g.Go(func() error {
			c, err := ce.runSimulation(x, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			coverage[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return math.NaN(), err
	}

	var sum float64
	for _, c := range coverage {
		sum += c
	}
	mean := sum / float64(len(coverage))

	ce.mu.Lock()
	ce.lastCoverage = mean
	ce.mu.Unlock()

	return mean, nil
}

// runSimulation returns the fraction of cells holding path pheromone after maxTicks.
func (ce *CoverageEvaluator) runSimulation(x []float64, seed int64) (float64, error) {
	cfg := *ce.baseConfig
	ce.params.ApplyToConfig(&cfg, x)
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	s := sim.NewSimulation(&cfg, sim.Options{Seed: seed})
	s.AddAgents(cfg.Ants.Initial)
	for s.TickCount() < ce.maxTicks {
		s.Tick()
	}

	totals := s.Field().Totals()
	return float64(totals.PathCells) / float64(cfg.Derived.Cells), nil
}
