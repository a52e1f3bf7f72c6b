package jelly

import (
	"github.com/akmonengine/jelly/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionFilter decides whether a detected penetration between a point
// mass of bodyA and an edge of bodyB should be resolved. normalVelocity
// is the relative velocity at the contact projected onto the edge normal,
// negative when the bodies approach.
type CollisionFilter func(bodyA *actor.Body, pointIndex int, bodyB *actor.Body, edgeA, edgeB int, hitPoint mgl64.Vec2, normalVelocity float64) bool

// MaterialPair configures how two materials respond to each other.
type MaterialPair struct {
	// Collide gates the pair out of the narrow phase entirely when false
	Collide bool
	// Elasticity is the restitution of the pair: 0 = no rebound,
	// 1 = perfect rebound
	Elasticity float64
	// Friction damps the tangential relative velocity at contacts
	Friction float64
	Filter   CollisionFilter
}

func defaultMaterialPair() MaterialPair {
	return MaterialPair{
		Collide:    true,
		Elasticity: 0.0,
		Friction:   0.3,
	}
}

// newMaterialMatrix builds the count×count pair table, every pair set to
// the defaults.
func newMaterialMatrix(count int) [][]MaterialPair {
	matrix := make([][]MaterialPair, count)
	for i := range matrix {
		matrix[i] = make([]MaterialPair, count)
		for j := range matrix[i] {
			matrix[i][j] = defaultMaterialPair()
		}
	}

	return matrix
}
