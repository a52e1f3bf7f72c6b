package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PointMass is a single particle of a soft body: a mass with a position,
// a velocity and a force accumulator. A mass of 0 or +Inf marks the point
// as static; its position never changes.
type PointMass struct {
	Mass     float64
	Position mgl64.Vec2
	Velocity mgl64.Vec2
	Force    mgl64.Vec2
}

// IsStatic reports whether the point is immovable.
func (pm *PointMass) IsStatic() bool {
	return pm.Mass == 0 || math.IsInf(pm.Mass, 1)
}

// ApplyForce adds force to the accumulator for the current step.
func (pm *PointMass) ApplyForce(force mgl64.Vec2) {
	pm.Force = pm.Force.Add(force)
}

// Integrate advances the point one explicit Euler step and resets the
// force accumulator. Static points do not move.
func (pm *PointMass) Integrate(dt float64) {
	if pm.IsStatic() {
		pm.Force = mgl64.Vec2{}
		return
	}

	pm.Velocity = pm.Velocity.Add(pm.Force.Mul(dt / pm.Mass))
	pm.Position = pm.Position.Add(pm.Velocity.Mul(dt))
	pm.Force = mgl64.Vec2{}
}
