package jelly

import (
	"fmt"
	"math"

	"github.com/akmonengine/jelly/actor"
	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxGridCells caps the broad phase grid resolution per axis; the cell
// occupancy of a body is stored as one bit per column in a uint64.
const MaxGridCells = 64

// CollisionPair represents a pair of bodies that potentially collide.
type CollisionPair struct {
	BodyA *actor.Body
	BodyB *actor.Body
}

// BitmaskGrid is the broad phase over a bounded world: the bounds are cut
// into a fixed grid, each body marks the X and Y cell columns its AABB
// overlaps, and two bodies are candidates only when both their column
// masks and their AABBs overlap. Bodies outside the bounds clamp to the
// boundary cells.
type BitmaskGrid struct {
	bounds   geo.AABB
	cellsX   int
	cellsY   int
	cellSize mgl64.Vec2
}

// NewBitmaskGrid creates a grid over bounds with the given cell counts,
// each between 1 and MaxGridCells.
func NewBitmaskGrid(bounds geo.AABB, cellsX, cellsY int) (*BitmaskGrid, error) {
	if !bounds.IsValid() {
		return nil, fmt.Errorf("grid bounds are empty")
	}
	size := bounds.Size()
	if size.X() <= 0 || size.Y() <= 0 {
		return nil, fmt.Errorf("grid bounds have no area: %v", size)
	}
	if cellsX < 1 || cellsX > MaxGridCells || cellsY < 1 || cellsY > MaxGridCells {
		return nil, fmt.Errorf("grid cell counts must be in [1, %d], got %dx%d", MaxGridCells, cellsX, cellsY)
	}

	return &BitmaskGrid{
		bounds: bounds,
		cellsX: cellsX,
		cellsY: cellsY,
		cellSize: mgl64.Vec2{
			size.X() / float64(cellsX),
			size.Y() / float64(cellsY),
		},
	}, nil
}

// UpdateBodyBitmask recomputes the column masks of a body from its
// current AABB.
func (g *BitmaskGrid) UpdateBodyBitmask(body *actor.Body) {
	minX, minY := g.worldToCell(body.AABB.Min)
	maxX, maxY := g.worldToCell(body.AABB.Max)

	body.BitmaskX = bitRange(minX, maxX)
	body.BitmaskY = bitRange(minY, maxY)
}

// FindPairs enumerates candidate pairs in body insertion order: both
// column masks overlapping, AABBs overlapping, collision masks sharing a
// bit, and at least one of the two non-static.
func (g *BitmaskGrid) FindPairs(bodies []*actor.Body) []CollisionPair {
	pairs := make([]CollisionPair, 0, len(bodies)/2)

	for i := 0; i < len(bodies); i++ {
		bodyA := bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			bodyB := bodies[j]

			if bodyA.IsStatic && bodyB.IsStatic {
				continue
			}
			if bodyA.BitmaskX&bodyB.BitmaskX == 0 || bodyA.BitmaskY&bodyB.BitmaskY == 0 {
				continue
			}
			if bodyA.CollisionMask&bodyB.CollisionMask == 0 {
				continue
			}
			if !bodyA.AABB.Intersects(bodyB.AABB) {
				continue
			}

			pairs = append(pairs, CollisionPair{BodyA: bodyA, BodyB: bodyB})
		}
	}

	return pairs
}

// worldToCell converts a world position to clamped cell coordinates.
func (g *BitmaskGrid) worldToCell(pos mgl64.Vec2) (int, int) {
	x := int(math.Floor((pos.X() - g.bounds.Min.X()) / g.cellSize.X()))
	y := int(math.Floor((pos.Y() - g.bounds.Min.Y()) / g.cellSize.Y()))

	return clampCell(x, g.cellsX), clampCell(y, g.cellsY)
}

func clampCell(c, cells int) int {
	if c < 0 {
		return 0
	}
	if c >= cells {
		return cells - 1
	}

	return c
}

// bitRange builds a mask with bits lo through hi set, inclusive.
func bitRange(lo, hi int) uint64 {
	mask := uint64(0)
	for i := lo; i <= hi; i++ {
		mask |= 1 << uint(i)
	}

	return mask
}
