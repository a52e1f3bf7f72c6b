package jelly

import (
	"math"
	"testing"

	"github.com/akmonengine/jelly/actor"
	"github.com/akmonengine/jelly/component"
	"github.com/go-gl/mathgl/mgl64"
)

func mustSquare(t *testing.T, mass float64, pos mgl64.Vec2, components ...actor.BodyComponent) *actor.Body {
	t.Helper()

	body, err := actor.NewBody(actor.SquareShape(1), []float64{mass}, pos, 0, mgl64.Vec2{1, 1}, false, components...)
	if err != nil {
		t.Fatal(err)
	}

	return body
}

func TestBodyCollideFindsPenetratingPoint(t *testing.T) {
	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.9, 0.2})

	infos := bodyCollide(bodyA, bodyB, nil)
	if len(infos) != 1 {
		t.Fatalf("found %d penetrating points, want 1", len(infos))
	}

	info := infos[0]
	if info.PointIndex != 2 {
		t.Errorf("point index = %d, want 2 (the (0.5, 0.5) corner)", info.PointIndex)
	}
	if info.Normal.Sub(mgl64.Vec2{-1, 0}).Len() > 1e-9 {
		t.Errorf("normal = %v, want (-1, 0)", info.Normal)
	}
	if math.Abs(info.Penetration-0.1) > 1e-9 {
		t.Errorf("penetration = %v, want 0.1", info.Penetration)
	}
	if info.HitPoint.Sub(mgl64.Vec2{0.4, 0.5}).Len() > 1e-9 {
		t.Errorf("hit point = %v, want (0.4, 0.5)", info.HitPoint)
	}
}

func TestBodyCollideMissesSeparatedBodies(t *testing.T) {
	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{3, 0})

	if infos := bodyCollide(bodyA, bodyB, nil); len(infos) != 0 {
		t.Errorf("found %d penetrating points between separated bodies", len(infos))
	}
}

func TestResolveSkipsDeepPenetration(t *testing.T) {
	world := newTestWorld(t, mgl64.Vec2{})
	world.PenetrationThreshold = 0.05

	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.9, 0.2})

	infos := bodyCollide(bodyA, bodyB, nil)
	if len(infos) != 1 {
		t.Fatal("expected one penetrating point")
	}

	before := bodyA.PointMasses[infos[0].PointIndex].Position
	world.resolveCollision(&infos[0])

	if world.PenetrationCount != 1 {
		t.Errorf("penetration count = %d, want 1", world.PenetrationCount)
	}
	if bodyA.PointMasses[infos[0].PointIndex].Position != before {
		t.Error("deep penetration was resolved instead of skipped")
	}
}

func TestResolvePushesPointOut(t *testing.T) {
	world := newTestWorld(t, mgl64.Vec2{})

	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.9, 0.2})

	infos := bodyCollide(bodyA, bodyB, nil)
	if len(infos) != 1 {
		t.Fatal("expected one penetrating point")
	}
	info := infos[0]

	pointBefore := bodyA.PointMasses[info.PointIndex].Position
	edgeBefore := bodyB.PointMasses[info.EdgeA].Position

	world.resolveCollision(&info)

	pointAfter := bodyA.PointMasses[info.PointIndex].Position
	// the point moves along the outward normal (-1, 0), the edge the
	// other way
	if pointAfter.X() >= pointBefore.X() {
		t.Errorf("penetrating point moved from %v to %v, want pushed out along -x", pointBefore, pointAfter)
	}
	if bodyB.PointMasses[info.EdgeA].Position.X() <= edgeBefore.X() {
		t.Error("edge point was not pushed away from the contact")
	}
}

func TestCollisionFilterVetoesResolution(t *testing.T) {
	world := newTestWorld(t, mgl64.Vec2{})

	filtered := 0
	err := world.SetMaterialPairFilter(0, 0, func(*actor.Body, int, *actor.Body, int, int, mgl64.Vec2, float64) bool {
		filtered++
		return false
	})
	if err != nil {
		t.Fatal(err)
	}

	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.9, 0.2})

	infos := bodyCollide(bodyA, bodyB, nil)
	before := bodyA.PointMasses[infos[0].PointIndex].Position
	world.resolveCollision(&infos[0])

	if filtered != 1 {
		t.Fatalf("filter ran %d times, want 1", filtered)
	}
	if bodyA.PointMasses[infos[0].PointIndex].Position != before {
		t.Error("vetoed contact was still resolved")
	}
}

// Two soft squares meeting head-on with full restitution bounce apart.
func TestHeadOnBounce(t *testing.T) {
	world := newTestWorld(t, mgl64.Vec2{})
	if err := world.SetMaterialPairData(0, 0, 0, 1); err != nil {
		t.Fatal(err)
	}

	makeBody := func(x, vx float64) *actor.Body {
		body := mustSquare(t, 1, mgl64.Vec2{x, 0.013 * math.Copysign(1, x)},
			component.NewSpring(300, 10),
			component.NewShapeMatching(100, 10),
		)
		for i := range body.PointMasses {
			body.PointMasses[i].Velocity = mgl64.Vec2{vx, 0}
		}
		if err := world.AddBody(body); err != nil {
			t.Fatal(err)
		}

		return body
	}

	left := makeBody(-0.7, 1)
	right := makeBody(0.7, -1)

	dt := 1.0 / 60.0
	minSeparation := math.Inf(1)
	for step := 0; step < 150; step++ {
		if err := world.Update(dt); err != nil {
			t.Fatal(err)
		}
		if sep := right.DerivedPos.X() - left.DerivedPos.X(); sep < minSeparation {
			minSeparation = sep
		}
	}

	if minSeparation >= 1.4 {
		t.Fatalf("minimum separation = %v, bodies never touched", minSeparation)
	}

	// relative normal velocity reversed: both bodies move away again
	if left.DerivedVel.X() >= 0 {
		t.Errorf("left body velocity = %v, want moving back in -x", left.DerivedVel)
	}
	if right.DerivedVel.X() <= 0 {
		t.Errorf("right body velocity = %v, want moving back in +x", right.DerivedVel)
	}

	finalSeparation := right.DerivedPos.X() - left.DerivedPos.X()
	if finalSeparation <= minSeparation+0.1 {
		t.Errorf("final separation %v has not grown past the minimum %v", finalSeparation, minSeparation)
	}
}
