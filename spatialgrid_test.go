package jelly

import (
	"testing"

	"github.com/akmonengine/jelly/actor"
	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
)

func newTestGrid(t *testing.T) *BitmaskGrid {
	t.Helper()

	grid, err := NewBitmaskGrid(geo.NewAABB(mgl64.Vec2{-16, -16}, mgl64.Vec2{16, 16}), 32, 32)
	if err != nil {
		t.Fatal(err)
	}

	return grid
}

func TestNewBitmaskGridValidation(t *testing.T) {
	bounds := geo.NewAABB(mgl64.Vec2{-16, -16}, mgl64.Vec2{16, 16})

	if _, err := NewBitmaskGrid(geo.AABB{}, 32, 32); err == nil {
		t.Error("expected an error for empty bounds")
	}
	if _, err := NewBitmaskGrid(bounds, 0, 32); err == nil {
		t.Error("expected an error for zero cells")
	}
	if _, err := NewBitmaskGrid(bounds, 32, MaxGridCells+1); err == nil {
		t.Error("expected an error for too many cells")
	}
}

func TestUpdateBodyBitmask(t *testing.T) {
	grid := newTestGrid(t)
	body := mustSquare(t, 1, mgl64.Vec2{0, 0})
	grid.UpdateBodyBitmask(body)

	// unit square at the origin covers cells 15 and 16 on both axes
	want := uint64(1<<15 | 1<<16)
	if body.BitmaskX != want {
		t.Errorf("BitmaskX = %b, want %b", body.BitmaskX, want)
	}
	if body.BitmaskY != want {
		t.Errorf("BitmaskY = %b, want %b", body.BitmaskY, want)
	}
}

func TestBitmaskClampsOutsideBounds(t *testing.T) {
	grid := newTestGrid(t)
	body := mustSquare(t, 1, mgl64.Vec2{100, -100})
	grid.UpdateBodyBitmask(body)

	if body.BitmaskX != 1<<31 {
		t.Errorf("BitmaskX = %b, want the last column", body.BitmaskX)
	}
	if body.BitmaskY != 1 {
		t.Errorf("BitmaskY = %b, want the first column", body.BitmaskY)
	}
}

func TestFindPairs(t *testing.T) {
	grid := newTestGrid(t)

	overlapA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	overlapB := mustSquare(t, 1, mgl64.Vec2{0.6, 0})
	far := mustSquare(t, 1, mgl64.Vec2{10, 10})

	bodies := []*actor.Body{overlapA, overlapB, far}
	for _, body := range bodies {
		grid.UpdateBodyBitmask(body)
	}

	pairs := grid.FindPairs(bodies)
	if len(pairs) != 1 {
		t.Fatalf("found %d pairs, want 1", len(pairs))
	}
	if pairs[0].BodyA != overlapA || pairs[0].BodyB != overlapB {
		t.Error("pair does not hold the overlapping bodies in insertion order")
	}
}

func TestFindPairsSkipsStaticStatic(t *testing.T) {
	grid := newTestGrid(t)

	bodies := []*actor.Body{
		mustSquare(t, 0, mgl64.Vec2{0, 0}),
		mustSquare(t, 0, mgl64.Vec2{0.4, 0}),
	}
	for _, body := range bodies {
		grid.UpdateBodyBitmask(body)
	}

	if pairs := grid.FindPairs(bodies); len(pairs) != 0 {
		t.Errorf("found %d pairs between two static bodies, want 0", len(pairs))
	}
}

func TestFindPairsHonorsCollisionMask(t *testing.T) {
	grid := newTestGrid(t)

	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.4, 0})
	bodyA.CollisionMask = 0b01
	bodyB.CollisionMask = 0b10

	bodies := []*actor.Body{bodyA, bodyB}
	for _, body := range bodies {
		grid.UpdateBodyBitmask(body)
	}

	if pairs := grid.FindPairs(bodies); len(pairs) != 0 {
		t.Errorf("found %d pairs with disjoint collision masks, want 0", len(pairs))
	}

	bodyB.CollisionMask = 0b11
	if pairs := grid.FindPairs(bodies); len(pairs) != 1 {
		t.Errorf("found %d pairs with compatible masks, want 1", len(pairs))
	}
}

func TestFindPairsSkipsSeparatedColumns(t *testing.T) {
	grid := newTestGrid(t)

	// same row, far apart in x: the X column masks are disjoint
	bodyA := mustSquare(t, 1, mgl64.Vec2{-10, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{10, 0})

	bodies := []*actor.Body{bodyA, bodyB}
	for _, body := range bodies {
		grid.UpdateBodyBitmask(body)
	}

	if bodyA.BitmaskX&bodyB.BitmaskX != 0 {
		t.Fatal("test bodies unexpectedly share x columns")
	}
	if pairs := grid.FindPairs(bodies); len(pairs) != 0 {
		t.Errorf("found %d pairs for disjoint columns, want 0", len(pairs))
	}
}
