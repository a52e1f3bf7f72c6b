package component

import (
	"fmt"

	"github.com/akmonengine/jelly/actor"
)

// ShapeMatching pulls every point mass toward its position in the base
// shape posed at the body's current derived position and angle. It
// restores the rest silhouette without forbidding deformation. For
// kinematic bodies the derived pose is whatever the caller set, which
// makes this component the motor that drags the points along.
type ShapeMatching struct {
	baseComponent

	Stiffness float64
	Damping   float64
}

// NewShapeMatching creates a shape-memory component with the given
// restoring stiffness and velocity damping.
func NewShapeMatching(stiffness, damping float64) *ShapeMatching {
	return &ShapeMatching{Stiffness: stiffness, Damping: damping}
}

func (s *ShapeMatching) Prepare(*actor.Body) error {
	if s.Stiffness < 0 || s.Damping < 0 {
		return fmt.Errorf("shape matching constants must be non-negative, got k=%v c=%v", s.Stiffness, s.Damping)
	}

	return nil
}

// AccumulateInternalForces applies the restoring force toward the posed
// base shape, using the derived pose of the current step.
func (s *ShapeMatching) AccumulateInternalForces(body *actor.Body) {
	for i := range body.PointMasses {
		pm := &body.PointMasses[i]
		target := actor.TransformVertex(body.BaseShape.Vertex(i), body.DerivedPos, body.DerivedAngle, body.Scale)

		force := target.Sub(pm.Position).Mul(s.Stiffness).Sub(pm.Velocity.Mul(s.Damping))
		pm.ApplyForce(force)
	}
}
