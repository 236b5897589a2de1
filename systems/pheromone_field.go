package systems

import (
	"math"

	"github.com/pthm-cable/antsim/components"
)

// Cell holds one grid location's pheromone concentrations.
type Cell struct {
	Path float64
	Food float64
}

// Get returns the concentration of the given kind.
func (c Cell) Get(kind components.PheromoneKind) float64 {
	if kind == components.PheromoneFood {
		return c.Food
	}
	return c.Path
}

// FieldParams configures pheromone decay.
type FieldParams struct {
	DissipationRate float64 // Per-tick multiplicative factor, (0,1)
	ZeroCutoff      float64 // Decayed values below this snap to 0
}

// PheromoneField is a dense W*H grid of pheromone cells.
// Cells are row-major: index = y*W + x.
type PheromoneField struct {
	W, H int

	cells  []Cell
	params FieldParams

	// Instrumentation only; never read by the update path
	deposits uint64
	dropped  uint64
}

// NewPheromoneField creates a fully initialised field with every cell at zero.
func NewPheromoneField(w, h int, params FieldParams) *PheromoneField {
	return &PheromoneField{
		W:      w,
		H:      h,
		cells:  make([]Cell, w*h),
		params: params,
	}
}

// Params returns the decay parameters.
func (pf *PheromoneField) Params() FieldParams { return pf.params }

// Size returns the grid dimensions.
func (pf *PheromoneField) Size() (int, int) { return pf.W, pf.H }

// dropIfOutOfRange floors a continuous position to a cell index.
// ok is false for anything outside [0,W)x[0,H), NaN included.
func (pf *PheromoneField) dropIfOutOfRange(pos components.Vector) (idx int, ok bool) {
	fx := math.Floor(pos.X)
	fy := math.Floor(pos.Y)
	if !(fx >= 0 && fx < float64(pf.W) && fy >= 0 && fy < float64(pf.H)) {
		return 0, false
	}
	return int(fy)*pf.W + int(fx), true
}

// CellIndex returns the flat index of the cell containing pos.
func (pf *PheromoneField) CellIndex(pos components.Vector) (int, bool) {
	return pf.dropIfOutOfRange(pos)
}

// Deposit sets the chosen concentration at pos to exactly 1.0.
// Out-of-range positions are silently dropped.
func (pf *PheromoneField) Deposit(pos components.Vector, kind components.PheromoneKind) {
	idx, ok := pf.dropIfOutOfRange(pos)
	if !ok {
		pf.dropped++
		return
	}
	pf.depositAt(idx, kind)
}

// depositAt overwrites the concentration at a pre-validated index.
func (pf *PheromoneField) depositAt(idx int, kind components.PheromoneKind) {
	pf.deposits++
	if kind == components.PheromoneFood {
		pf.cells[idx].Food = 1.0
	} else {
		pf.cells[idx].Path = 1.0
	}
}

// Decay applies one tick of exponential decay to every cell.
// There is no diffusion between neighbours.
func (pf *PheromoneField) Decay() {
	rate := pf.params.DissipationRate
	cutoff := pf.params.ZeroCutoff

	for i := range pf.cells {
		c := &pf.cells[i]
		c.Path = decayValue(c.Path, rate, cutoff)
		c.Food = decayValue(c.Food, rate, cutoff)
	}
}

func decayValue(v, rate, cutoff float64) float64 {
	v *= rate
	if v < cutoff {
		return 0
	}
	return v
}

// At returns the cell at integer grid coordinates.
// ok is false when (x, y) is outside the grid.
func (pf *PheromoneField) At(x, y int) (Cell, bool) {
	if x < 0 || x >= pf.W || y < 0 || y >= pf.H {
		return Cell{}, false
	}
	return pf.cells[y*pf.W+x], true
}

// Cells returns the backing grid for read-only consumers such as renderers.
// Callers must not modify it.
func (pf *PheromoneField) Cells() []Cell {
	return pf.cells
}

// FieldTotals summarises the grid per pheromone kind.
type FieldTotals struct {
	PathSum, FoodSum     float64
	PathCells, FoodCells int // Non-zero cell counts
}

// Totals sums concentrations and counts non-zero cells.
func (pf *PheromoneField) Totals() FieldTotals {
	var t FieldTotals
	for _, c := range pf.cells {
		if c.Path > 0 {
			t.PathSum += c.Path
			t.PathCells++
		}
		if c.Food > 0 {
			t.FoodSum += c.Food
			t.FoodCells++
		}
	}
	return t
}

// Deposits returns the number of accepted deposits since creation.
func (pf *PheromoneField) Deposits() uint64 { return pf.deposits }

// Dropped returns the number of out-of-range deposits since creation.
func (pf *PheromoneField) Dropped() uint64 { return pf.dropped }
