package jelly

import (
	"log/slog"
	"math"

	"github.com/akmonengine/jelly/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyCollisionInfo records one narrow phase hit: a point mass of BodyA
// penetrating BodyB, resolved against the closest edge of BodyB.
type BodyCollisionInfo struct {
	BodyA      *actor.Body
	PointIndex int

	BodyB *actor.Body
	// Flanking point masses of the penetrated edge on BodyB
	EdgeA int
	EdgeB int
	// Parametric position of the hit along the edge, in [0,1]
	EdgeD float64

	HitPoint    mgl64.Vec2
	Normal      mgl64.Vec2
	Penetration float64
}

// bodyCollide runs the narrow phase for A's points into B, appending a
// collision record for every point of A found inside B.
func bodyCollide(bodyA, bodyB *actor.Body, dst []BodyCollisionInfo) []BodyCollisionInfo {
	for i := range bodyA.PointMasses {
		pt := bodyA.PointMasses[i].Position
		if !bodyB.AABB.Contains(pt) {
			continue
		}
		if !bodyB.Contains(pt) {
			continue
		}

		point, edge := bodyB.ClosestPoint(pt)
		if edge < 0 {
			continue
		}

		dst = append(dst, BodyCollisionInfo{
			BodyA:       bodyA,
			PointIndex:  i,
			BodyB:       bodyB,
			EdgeA:       edge,
			EdgeB:       (edge + 1) % len(bodyB.PointMasses),
			EdgeD:       point.EdgeD,
			HitPoint:    point.Point,
			Normal:      point.Normal,
			Penetration: math.Sqrt(point.DistanceSq),
		})
	}

	return dst
}

// invMass returns 1/mass, or 0 for static point masses.
func invMass(mass float64) float64 {
	if mass == 0 || math.IsInf(mass, 1) {
		return 0
	}

	return 1 / mass
}

// resolveCollision applies the position correction and, for approaching
// contacts, the restitution and friction impulses for one recorded hit.
// Penetrations deeper than the world threshold are counted and skipped,
// to keep one bad contact from blowing up the whole body.
func (w *World) resolveCollision(info *BodyCollisionInfo) {
	pair := w.materialPair(info.BodyA.Material, info.BodyB.Material)

	pm := &info.BodyA.PointMasses[info.PointIndex]
	e1 := &info.BodyB.PointMasses[info.EdgeA]
	e2 := &info.BodyB.PointMasses[info.EdgeB]
	t := info.EdgeD

	edgeVel := e1.Velocity.Mul(1 - t).Add(e2.Velocity.Mul(t))
	relVel := pm.Velocity.Sub(edgeVel)
	relDot := relVel.Dot(info.Normal)

	if pair.Filter != nil && !pair.Filter(info.BodyA, info.PointIndex, info.BodyB, info.EdgeA, info.EdgeB, info.HitPoint, relDot) {
		return
	}

	if info.Penetration > w.PenetrationThreshold {
		w.PenetrationCount++
		slog.Warn("deep penetration skipped",
			"bodyA", info.BodyA.ID,
			"bodyB", info.BodyB.ID,
			"depth", info.Penetration,
			"threshold", w.PenetrationThreshold)
		return
	}

	invMassP := invMass(pm.Mass)
	invMass1 := invMass(e1.Mass)
	invMass2 := invMass(e2.Mass)
	invMassE := (1-t)*(1-t)*invMass1 + t*t*invMass2

	wSum := invMassP + invMassE
	if wSum <= 0 {
		return
	}

	// Position correction splits the penetration across the point and
	// the edge endpoints by inverse mass.
	if invMassP > 0 {
		pm.Position = pm.Position.Add(info.Normal.Mul(info.Penetration * invMassP / wSum))
	}
	if invMass1 > 0 {
		e1.Position = e1.Position.Sub(info.Normal.Mul(info.Penetration * (1 - t) * invMass1 / wSum))
	}
	if invMass2 > 0 {
		e2.Position = e2.Position.Sub(info.Normal.Mul(info.Penetration * t * invMass2 / wSum))
	}

	// Separating contact: position correction only.
	if relDot >= 0 {
		return
	}

	j := -(1 + pair.Elasticity) * relDot / wSum
	if invMassP > 0 {
		pm.Velocity = pm.Velocity.Add(info.Normal.Mul(j * invMassP))
	}
	if invMass1 > 0 {
		e1.Velocity = e1.Velocity.Sub(info.Normal.Mul(j * (1 - t) * invMass1))
	}
	if invMass2 > 0 {
		e2.Velocity = e2.Velocity.Sub(info.Normal.Mul(j * t * invMass2))
	}

	if pair.Friction > 0 {
		tangentVel := relVel.Sub(info.Normal.Mul(relDot))
		if tangentVel.LenSqr() > math.SmallestNonzeroFloat64 {
			ft := tangentVel.Mul(-pair.Friction / wSum)
			if invMassP > 0 {
				pm.Velocity = pm.Velocity.Add(ft.Mul(invMassP))
			}
			if invMass1 > 0 {
				e1.Velocity = e1.Velocity.Sub(ft.Mul((1 - t) * invMass1))
			}
			if invMass2 > 0 {
				e2.Velocity = e2.Velocity.Sub(ft.Mul(t * invMass2))
			}
		}
	}
}
