package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/antsim/components"
)

func newTestField(w, h int, rate, cutoff float64) *PheromoneField {
	return NewPheromoneField(w, h, FieldParams{DissipationRate: rate, ZeroCutoff: cutoff})
}

func TestPheromoneFieldCreation(t *testing.T) {
	pf := newTestField(8, 4, 0.99, 0.01)

	w, h := pf.Size()
	if w != 8 || h != 4 {
		t.Errorf("expected grid size 8x4, got %dx%d", w, h)
	}
	if len(pf.Cells()) != 32 {
		t.Fatalf("expected 32 cells, got %d", len(pf.Cells()))
	}

	// Every in-range coordinate has exactly one zeroed cell
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, ok := pf.At(x, y)
			if !ok {
				t.Fatalf("At(%d,%d) reported out of range", x, y)
			}
			if c != (Cell{}) {
				t.Fatalf("At(%d,%d) = %+v, want zero cell", x, y, c)
			}
		}
	}
}

func TestPheromoneFieldAtOutOfRange(t *testing.T) {
	pf := newTestField(4, 4, 0.99, 0.01)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if _, ok := pf.At(p[0], p[1]); ok {
			t.Errorf("At(%d,%d) should be out of range", p[0], p[1])
		}
	}
}

func TestDepositOverwrite(t *testing.T) {
	pf := newTestField(4, 4, 0.5, 0.1)

	pf.Deposit(components.Vector{X: 2, Y: 3}, components.PheromonePath)
	pf.Decay()
	before, _ := pf.At(2, 3)

	pf.Deposit(components.Vector{X: 2.9, Y: 3.1}, components.PheromoneFood)
	pf.Deposit(components.Vector{X: 2.2, Y: 3.7}, components.PheromoneFood)

	after, _ := pf.At(2, 3)
	if after.Food != 1.0 {
		t.Errorf("food = %v, want exactly 1.0 after repeated deposits", after.Food)
	}
	if after.Path != before.Path {
		t.Errorf("path changed from %v to %v by a food deposit", before.Path, after.Path)
	}

	if pf.Deposits() != 3 {
		t.Errorf("deposits = %d, want 3", pf.Deposits())
	}
}

func TestDepositOutOfBoundsIsNoop(t *testing.T) {
	positions := []components.Vector{
		{X: -0.01, Y: 1},
		{X: 1, Y: -0.5},
		{X: 4, Y: 1},
		{X: 1, Y: 4},
		{X: 4.5, Y: 4.5},
		{X: math.NaN(), Y: 1},
		{X: 1, Y: math.Inf(1)},
	}

	pf := newTestField(4, 4, 0.99, 0.01)
	pf.Deposit(components.Vector{X: 1, Y: 1}, components.PheromonePath)
	reference := append([]Cell(nil), pf.Cells()...)

	for _, pos := range positions {
		pf.Deposit(pos, components.PheromonePath)
		pf.Deposit(pos, components.PheromoneFood)
	}

	for i, c := range pf.Cells() {
		if c != reference[i] {
			t.Fatalf("cell %d changed from %+v to %+v", i, reference[i], c)
		}
	}
	if got, want := pf.Dropped(), uint64(2*len(positions)); got != want {
		t.Errorf("dropped = %d, want %d", got, want)
	}
	if pf.Deposits() != 1 {
		t.Errorf("deposits = %d, want 1", pf.Deposits())
	}
}

func TestDecayMonotonic(t *testing.T) {
	pf := newTestField(16, 16, 0.9, 0.05)

	// Stagger deposits so cells hold different ages
	for i := 0; i < 32; i++ {
		x := float64(i % 16)
		y := float64((i * 7) % 16)
		kind := components.PheromonePath
		if i%3 == 0 {
			kind = components.PheromoneFood
		}
		pf.Deposit(components.Vector{X: x, Y: y}, kind)
		pf.Decay()
	}

	for tick := 0; tick < 50; tick++ {
		before := append([]Cell(nil), pf.Cells()...)
		pf.Decay()
		for i, c := range pf.Cells() {
			b := before[i]
			if c.Path > b.Path || c.Food > b.Food {
				t.Fatalf("tick %d cell %d increased: %+v -> %+v", tick, i, b, c)
			}
			if b.Path == 0 && c.Path != 0 || b.Food == 0 && c.Food != 0 {
				t.Fatalf("tick %d cell %d zero became non-zero: %+v -> %+v", tick, i, b, c)
			}
			// After decay a value is either 0 or at least the cutoff
			for _, v := range []float64{c.Path, c.Food} {
				if v != 0 && v < 0.05 {
					t.Fatalf("tick %d cell %d holds %v below cutoff", tick, i, v)
				}
			}
		}
	}
}

func TestDecayZeroSnap(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		cutoff  float64
		ticks   int
		want    float64
		snapped bool
	}{
		{"above cutoff", 0.99, 0.01, 1, 0.99, false},
		{"just below cutoff", 0.5, 0.6, 1, 0, true},
		{"zero cutoff never snaps", 0.5, 0, 10, math.Pow(0.5, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := newTestField(2, 2, tt.rate, tt.cutoff)
			pf.Deposit(components.Vector{X: 0, Y: 0}, components.PheromonePath)
			for i := 0; i < tt.ticks; i++ {
				pf.Decay()
			}
			c, _ := pf.At(0, 0)
			if tt.snapped && c.Path != 0 {
				t.Errorf("path = %v, want exactly 0", c.Path)
			}
			if !tt.snapped && math.Abs(c.Path-tt.want) > 1e-12 {
				t.Errorf("path = %v, want %v", c.Path, tt.want)
			}
		})
	}
}

func TestDecayKindsIndependent(t *testing.T) {
	pf := newTestField(2, 2, 0.5, 0.1)
	pf.Deposit(components.Vector{X: 1, Y: 1}, components.PheromoneFood)
	pf.Decay()
	pf.Deposit(components.Vector{X: 1, Y: 1}, components.PheromonePath)
	pf.Decay()

	c, _ := pf.At(1, 1)
	if c.Food != 0.25 || c.Path != 0.5 {
		t.Errorf("cell = %+v, want food 0.25 path 0.5", c)
	}
}

func TestPheromoneFieldEndToEnd(t *testing.T) {
	pf := newTestField(4, 4, 0.5, 0.1)

	pf.Deposit(components.Vector{X: 1, Y: 1}, components.PheromoneFood)
	c, _ := pf.At(1, 1)
	if c.Food != 1.0 {
		t.Fatalf("food after deposit = %v, want 1.0", c.Food)
	}

	for i, want := range []float64{0.5, 0.25, 0.125, 0} {
		pf.Decay()
		c, _ = pf.At(1, 1)
		if c.Food != want {
			t.Errorf("decay %d: food = %v, want %v", i+1, c.Food, want)
		}
		if c.Path != 0 {
			t.Errorf("decay %d: path = %v, want 0", i+1, c.Path)
		}
	}
}

func TestPheromoneFieldTotals(t *testing.T) {
	pf := newTestField(4, 4, 0.5, 0.1)
	pf.Deposit(components.Vector{X: 0, Y: 0}, components.PheromonePath)
	pf.Deposit(components.Vector{X: 1, Y: 0}, components.PheromonePath)
	pf.Deposit(components.Vector{X: 1, Y: 0}, components.PheromoneFood)
	pf.Decay()

	totals := pf.Totals()
	if totals.PathCells != 2 || totals.FoodCells != 1 {
		t.Errorf("non-zero cells path=%d food=%d, want 2 and 1", totals.PathCells, totals.FoodCells)
	}
	if totals.PathSum != 1.0 || totals.FoodSum != 0.5 {
		t.Errorf("sums path=%v food=%v, want 1.0 and 0.5", totals.PathSum, totals.FoodSum)
	}
}

func TestCellGet(t *testing.T) {
	c := Cell{Path: 0.3, Food: 0.7}
	if c.Get(components.PheromonePath) != 0.3 || c.Get(components.PheromoneFood) != 0.7 {
		t.Errorf("Get returned wrong kinds for %+v", c)
	}
}
