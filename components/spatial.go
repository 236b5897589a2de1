package components

// Vector is a 2D point or displacement in continuous grid coordinates.
type Vector struct {
	X, Y float64
}

// Translate adds (dx, dy) in place.
func (v *Vector) Translate(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// Unit divides both components by the squared magnitude |x²+y²|.
// This is not a true unit vector: there is no square root. A zero vector
// produces non-finite components; callers handle that themselves.
func (v Vector) Unit() Vector {
	mag := v.X*v.X + v.Y*v.Y
	if mag < 0 {
		mag = -mag
	}
	return Vector{X: v.X / mag, Y: v.Y / mag}
}
