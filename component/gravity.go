package component

import (
	"fmt"

	"github.com/akmonengine/jelly/actor"
	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
)

// Gravity applies a constant acceleration to every non-static point mass
// of its body during the external force phase. Attach it when a body
// needs gravity different from the world's, for example balloons.
type Gravity struct {
	baseComponent

	Acceleration mgl64.Vec2
}

// NewGravity creates a gravity component with the given acceleration.
func NewGravity(acceleration mgl64.Vec2) *Gravity {
	return &Gravity{Acceleration: acceleration}
}

func (g *Gravity) Prepare(*actor.Body) error {
	if !geo.IsFinite(g.Acceleration) {
		return fmt.Errorf("gravity acceleration is not finite: %v", g.Acceleration)
	}

	return nil
}

// AccumulateExternalForces adds m·g to every non-static point.
func (g *Gravity) AccumulateExternalForces(body *actor.Body) {
	for i := range body.PointMasses {
		pm := &body.PointMasses[i]
		if pm.IsStatic() {
			continue
		}
		pm.ApplyForce(g.Acceleration.Mul(pm.Mass))
	}
}
