// Package component provides the force contributors that can be attached
// to a soft body: spring networks, gas pressure, shape memory and
// gravity. Each implements actor.BodyComponent and only ever adds to the
// force accumulators of the body lent to it during a force phase.
package component

import "github.com/akmonengine/jelly/actor"

// baseComponent supplies no-op defaults so each component only overrides
// the phase it participates in.
type baseComponent struct{}

func (baseComponent) Prepare(*actor.Body) error            { return nil }
func (baseComponent) AccumulateInternalForces(*actor.Body) {}
func (baseComponent) AccumulateExternalForces(*actor.Body) {}
