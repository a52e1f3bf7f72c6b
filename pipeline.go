package jelly

import "github.com/akmonengine/jelly/actor"

// runPhase applies one pipeline stage to every body in insertion order
// and stamps the state the stage leaves the body in. The world steps on a
// single logical thread; the sequential order is what makes two runs with
// identical inputs bitwise identical.
func runPhase(bodies []*actor.Body, state actor.BodyState, fn func(*actor.Body)) {
	for _, body := range bodies {
		fn(body)
		body.State = state
	}
}

// advance stamps a state transition that has no per-body work of its own.
func advance(bodies []*actor.Body, state actor.BodyState) {
	for _, body := range bodies {
		body.State = state
	}
}
