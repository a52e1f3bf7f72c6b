package jelly

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCollisionEventLifecycle(t *testing.T) {
	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.6, 0})

	events := NewEvents()
	var enters, stays, exits int
	events.Subscribe(COLLISION_ENTER, func(Event) { enters++ })
	events.Subscribe(COLLISION_STAY, func(Event) { stays++ })
	events.Subscribe(COLLISION_EXIT, func(Event) { exits++ })

	contact := []BodyCollisionInfo{{BodyA: bodyA, BodyB: bodyB}}

	// first step with contact: enter
	events.recordCollisions(contact)
	events.flush()
	if enters != 1 || stays != 0 || exits != 0 {
		t.Fatalf("after first contact: enter=%d stay=%d exit=%d, want 1/0/0", enters, stays, exits)
	}

	// contact holds: stay
	events.recordCollisions(contact)
	events.flush()
	if enters != 1 || stays != 1 || exits != 0 {
		t.Fatalf("after held contact: enter=%d stay=%d exit=%d, want 1/1/0", enters, stays, exits)
	}

	// contact gone: exit
	events.flush()
	if enters != 1 || stays != 1 || exits != 1 {
		t.Fatalf("after separation: enter=%d stay=%d exit=%d, want 1/1/1", enters, stays, exits)
	}
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{2, 0})

	if makePairKey(bodyA, bodyB) != makePairKey(bodyB, bodyA) {
		t.Error("pair key depends on argument order")
	}
}

func TestDuplicateHitsRecordOnePair(t *testing.T) {
	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.6, 0})

	events := NewEvents()
	var enters int
	events.Subscribe(COLLISION_ENTER, func(Event) { enters++ })

	// several points of the same pair penetrate at once
	events.recordCollisions([]BodyCollisionInfo{
		{BodyA: bodyA, BodyB: bodyB},
		{BodyA: bodyA, BodyB: bodyB},
		{BodyA: bodyB, BodyB: bodyA},
	})
	events.flush()

	if enters != 1 {
		t.Errorf("enter fired %d times for one pair, want 1", enters)
	}
}

func TestForgetBodySuppressesExit(t *testing.T) {
	bodyA := mustSquare(t, 1, mgl64.Vec2{0, 0})
	bodyB := mustSquare(t, 1, mgl64.Vec2{0.6, 0})

	events := NewEvents()
	var exits int
	events.Subscribe(COLLISION_EXIT, func(Event) { exits++ })

	events.recordCollisions([]BodyCollisionInfo{{BodyA: bodyA, BodyB: bodyB}})
	events.flush()

	events.forgetBody(bodyB)
	events.flush()

	if exits != 0 {
		t.Errorf("exit fired %d times after the body was removed, want 0", exits)
	}
}
