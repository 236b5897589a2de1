// Package systems contains the pheromone field and the ant update systems.
package systems

import (
	"math/rand"

	"github.com/pthm-cable/antsim/components"
)

// Depositor receives pheromone deposits from the ant pipeline.
// PheromoneField deposits directly; the chunked pass buffers them.
type Depositor interface {
	Deposit(pos components.Vector, kind components.PheromoneKind)
}

// Kinematics holds the per-ant movement parameters.
type Kinematics struct {
	RandomDir     float64 // Jitter magnitude d; each axis draws from [-d/2, d/2]
	MaxVelocity   float64
	Width, Height float64 // Position bounds are [0, Width] x [0, Height]
}

// ChooseDirection adds a bounded random walk step to the velocity,
// then clamps each component to [-MaxVelocity, MaxVelocity].
func ChooseDirection(ant *components.Ant, k Kinematics, rng *rand.Rand) {
	d := k.RandomDir
	dx := rng.Float64()*d - 0.5*d
	dy := rng.Float64()*d - 0.5*d
	ant.Velocity.Translate(dx, dy)

	ant.Velocity.X = clampFloat(ant.Velocity.X, -k.MaxVelocity, k.MaxVelocity)
	ant.Velocity.Y = clampFloat(ant.Velocity.Y, -k.MaxVelocity, k.MaxVelocity)
}

// LeavePheromone deposits at the ant's current position.
func LeavePheromone(ant *components.Ant, dst Depositor) {
	dst.Deposit(ant.Position, ant.DepositKind())
}

// Move translates the position by the velocity.
func Move(ant *components.Ant) {
	ant.Position.Translate(ant.Velocity.X, ant.Velocity.Y)
}

// HandleBorders stops the ant at the walls.
func HandleBorders(ant *components.Ant, k Kinematics) {
	ant.Position.X, ant.Velocity.X = clampToBounds(ant.Position.X, ant.Velocity.X, k.Width)
	ant.Position.Y, ant.Velocity.Y = clampToBounds(ant.Position.Y, ant.Velocity.Y, k.Height)
}

// clampToBounds is an inelastic wall: a coordinate outside [0, limit] is
// pinned to the wall and that axis's velocity is zeroed.
func clampToBounds(pos, vel, limit float64) (float64, float64) {
	if pos > limit {
		return limit, 0
	}
	if pos < 0 {
		return 0, 0
	}
	return pos, vel
}

// UpdateAnt runs one tick of the ant pipeline. The order is fixed: the
// deposit lands on the pre-move cell, before the border clamp.
func UpdateAnt(ant *components.Ant, k Kinematics, dst Depositor, rng *rand.Rand) {
	ChooseDirection(ant, k, rng)
	LeavePheromone(ant, dst)
	Move(ant)
	HandleBorders(ant, k)
}
