package actor

// BodyComponent is a force contributor attached to exactly one body.
// Components never own their body; the body is lent to them during the
// force phases of a world step, and they only ever add to the force
// accumulators of its point masses.
type BodyComponent interface {
	// Prepare binds the component to its body at attach time. It is the
	// only place allowed to reject a configuration.
	Prepare(body *Body) error
	// AccumulateInternalForces adds forces derived from the body's own
	// state (springs, pressure, shape memory).
	AccumulateInternalForces(body *Body)
	// AccumulateExternalForces adds forces imposed from outside the body
	// (gravity, wind).
	AccumulateExternalForces(body *Body)
}

// BodyState tracks where a body is inside the world step pipeline.
// Transitions are driven exclusively by the world; bodies never advance
// themselves.
type BodyState uint8

const (
	StateIdle BodyState = iota
	StateForcesAccumulated
	StateIntegrated
	StatePoseDerived
	StateBroadphased
	StateResolved
)
