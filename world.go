// Package jelly is a 2D soft body physics engine: bodies are closed
// polygons of point masses held together by spring, pressure and shape
// memory components, stepped with a fixed timestep and resolved against
// each other with point-in-polygon collision detection and per-contact
// impulses.
package jelly

import (
	"fmt"
	"math"

	"github.com/akmonengine/jelly/actor"
	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
)

// World is the simulation container. It owns its bodies exclusively; a
// step is atomic from the caller's perspective and runs on a single
// logical thread.
type World struct {
	// List of all soft bodies in the world
	Bodies []*actor.Body
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec2

	// Max penetration resolved per iteration
	PenetrationThreshold float64
	// Narrow phase + resolution passes per step
	PenetrationIterations int
	// Contacts skipped because they were deeper than the threshold
	PenetrationCount int

	Bounds geo.AABB
	Events Events

	grid          *BitmaskGrid
	materialPairs [][]MaterialPair

	// Scratch collision list reused across steps
	collisions []BodyCollisionInfo
	stepping   bool
}

// NewWorld creates a world over the given bounds. The bounds back the
// broad phase grid; bodies may leave them, at the cost of clamping into
// the boundary cells.
func NewWorld(bounds geo.AABB, cfg WorldConfig) (*World, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	grid, err := NewBitmaskGrid(bounds, cfg.GridWidth, cfg.GridHeight)
	if err != nil {
		return nil, err
	}

	return &World{
		Gravity:               cfg.GravityVec(),
		PenetrationThreshold:  cfg.PenetrationThreshold,
		PenetrationIterations: cfg.PenetrationIterations,
		Bounds:                bounds,
		Events:                NewEvents(),
		grid:                  grid,
		materialPairs:         newMaterialMatrix(cfg.Materials),
	}, nil
}

// AddBody adds a soft body to the world. Bodies may only be added outside
// of a step.
func (w *World) AddBody(body *actor.Body) error {
	if w.stepping {
		return fmt.Errorf("cannot add a body during a step")
	}
	if body == nil {
		return fmt.Errorf("body is nil")
	}

	w.Bodies = append(w.Bodies, body)
	w.grid.UpdateBodyBitmask(body)

	return nil
}

// RemoveBody removes a soft body from the world.
func (w *World) RemoveBody(body *actor.Body) error {
	if w.stepping {
		return fmt.Errorf("cannot remove a body during a step")
	}

	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}
	w.Events.forgetBody(body)

	return nil
}

// BodyCount returns the number of bodies in the world.
func (w *World) BodyCount() int {
	return len(w.Bodies)
}

// AddMaterial grows the material pair table by one slot and returns the
// new material index. New pairs start with the defaults.
func (w *World) AddMaterial() int {
	count := len(w.materialPairs) + 1
	matrix := newMaterialMatrix(count)
	for i := range w.materialPairs {
		copy(matrix[i], w.materialPairs[i])
	}
	w.materialPairs = matrix

	return count - 1
}

// SetMaterialPairData sets friction and elasticity for a material pair,
// symmetrically.
func (w *World) SetMaterialPairData(a, b int, friction, elasticity float64) error {
	if err := w.checkMaterial(a, b); err != nil {
		return err
	}

	w.materialPairs[a][b].Friction = friction
	w.materialPairs[a][b].Elasticity = elasticity
	w.materialPairs[b][a].Friction = friction
	w.materialPairs[b][a].Elasticity = elasticity

	return nil
}

// SetMaterialPairCollide toggles collision response for a material pair.
func (w *World) SetMaterialPairCollide(a, b int, collide bool) error {
	if err := w.checkMaterial(a, b); err != nil {
		return err
	}

	w.materialPairs[a][b].Collide = collide
	w.materialPairs[b][a].Collide = collide

	return nil
}

// SetMaterialPairFilter installs a per-contact filter for a material
// pair. The filter runs once per narrow phase hit, in hit order.
func (w *World) SetMaterialPairFilter(a, b int, filter CollisionFilter) error {
	if err := w.checkMaterial(a, b); err != nil {
		return err
	}

	w.materialPairs[a][b].Filter = filter
	w.materialPairs[b][a].Filter = filter

	return nil
}

func (w *World) checkMaterial(indices ...int) error {
	for _, i := range indices {
		if i < 0 || i >= len(w.materialPairs) {
			return fmt.Errorf("material index %d out of range, have %d materials", i, len(w.materialPairs))
		}
	}

	return nil
}

func (w *World) materialPair(a, b int) MaterialPair {
	if a < 0 || a >= len(w.materialPairs) || b < 0 || b >= len(w.materialPairs) {
		return defaultMaterialPair()
	}

	return w.materialPairs[a][b]
}

// Update advances the simulation by dt seconds. Drive it with a fixed dt;
// for frame rate independence call it several times per frame with the
// same dt rather than scaling dt.
func (w *World) Update(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("step size must be a positive finite number, got %v", dt)
	}

	w.stepping = true

	// Phase 1: forces and integration, body by body.
	runPhase(w.Bodies, actor.StateIntegrated, func(body *actor.Body) {
		body.ClearForces()
		w.applyGravity(body)
		body.AccumulateExternalForces()
		body.AccumulateInternalForces()
		body.State = actor.StateForcesAccumulated
		body.Integrate(dt)
	})

	// Phase 2: damping, derived pose, bounding boxes.
	runPhase(w.Bodies, actor.StatePoseDerived, func(body *actor.Body) {
		body.DampenVelocity()
		body.DerivePositionAndAngle(dt)
		body.UpdateAABB(dt, false)
		w.grid.UpdateBodyBitmask(body)
	})

	// Phase 3: broad phase.
	pairs := w.grid.FindPairs(w.Bodies)
	n := 0
	for _, pair := range pairs {
		if w.materialPair(pair.BodyA.Material, pair.BodyB.Material).Collide {
			pairs[n] = pair
			n++
		}
	}
	pairs = pairs[:n]
	advance(w.Bodies, actor.StateBroadphased)

	// Phases 4 and 5: narrow phase and impulse resolution, repeated to
	// bleed off deep penetrations. Within a pair A-into-B precedes
	// B-into-A.
	for iteration := 0; iteration < w.PenetrationIterations; iteration++ {
		w.collisions = w.collisions[:0]
		for _, pair := range pairs {
			w.collisions = bodyCollide(pair.BodyA, pair.BodyB, w.collisions)
			w.collisions = bodyCollide(pair.BodyB, pair.BodyA, w.collisions)
		}

		if iteration == 0 {
			w.Events.recordCollisions(w.collisions)
		}

		for i := range w.collisions {
			w.resolveCollision(&w.collisions[i])
		}
	}

	// Resolution moved points; recompute the boxes so they are valid for
	// readers between steps.
	runPhase(w.Bodies, actor.StateResolved, func(body *actor.Body) {
		body.UpdateAABB(dt, false)
	})
	advance(w.Bodies, actor.StateIdle)

	w.stepping = false
	w.Events.flush()

	return nil
}

// applyGravity adds the world gravity to every non-static point of a
// body.
func (w *World) applyGravity(body *actor.Body) {
	if body.IsStatic {
		return
	}

	for i := range body.PointMasses {
		pm := &body.PointMasses[i]
		if pm.IsStatic() {
			continue
		}
		pm.ApplyForce(w.Gravity.Mul(pm.Mass))
	}
}

// BodiesIntersecting returns the bodies containing a world point, in
// insertion order.
func (w *World) BodiesIntersecting(pt mgl64.Vec2) []*actor.Body {
	var hits []*actor.Body
	for _, body := range w.Bodies {
		if body.Contains(pt) {
			hits = append(hits, body)
		}
	}

	return hits
}

// Raycast finds the body hit nearest to a along the segment a-b.
func (w *World) Raycast(a, b mgl64.Vec2) (*actor.Body, mgl64.Vec2, bool) {
	var (
		bestBody  *actor.Body
		bestPoint mgl64.Vec2
	)
	bestDistSq := math.Inf(1)

	for _, body := range w.Bodies {
		point, ok := body.Raycast(a, b)
		if !ok {
			continue
		}
		if distSq := point.Sub(a).LenSqr(); distSq < bestDistSq {
			bestDistSq = distSq
			bestBody = body
			bestPoint = point
		}
	}

	return bestBody, bestPoint, bestBody != nil
}
