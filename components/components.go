// Package components defines ECS components for the simulation.
package components

// PheromoneKind selects one of the two concentrations held by a cell.
type PheromoneKind uint8

const (
	PheromonePath PheromoneKind = iota // Laid while wandering
	PheromoneFood                      // Laid while carrying food
)

// String returns the lowercase kind name used in telemetry.
func (k PheromoneKind) String() string {
	switch k {
	case PheromonePath:
		return "path"
	case PheromoneFood:
		return "food"
	default:
		return "unknown"
	}
}

// Ant holds one ant's kinematic state.
type Ant struct {
	Position    Vector  // Continuous grid coordinates
	Velocity    Vector  // Each component in [-MaxVelocity, MaxVelocity]
	FoodCarried float64 // >= 0; nothing in the engine sets it yet
	Energy      float64 // [0,1]
}

// NewAnt returns an idle ant at nest with full energy.
func NewAnt(nest Vector) Ant {
	return Ant{
		Position: nest,
		Energy:   1.0,
	}
}

// DepositKind returns the pheromone an ant leaves given what it carries.
func (a *Ant) DepositKind() PheromoneKind {
	if a.FoodCarried > 0 {
		return PheromoneFood
	}
	return PheromonePath
}
