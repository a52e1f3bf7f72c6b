package component

import (
	"fmt"
	"math"

	"github.com/akmonengine/jelly/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// InternalSpring connects two point masses of the same body.
// A negative RestLength means the distance between the two points at
// attach time.
type InternalSpring struct {
	PointMassA int
	PointMassB int
	RestLength float64
	Stiffness  float64
	Damping    float64
}

// Spring holds the spring network of a body: one spring per shape edge,
// plus any internal shape-holding springs declared by the caller.
type Spring struct {
	baseComponent

	EdgeStiffness float64
	EdgeDamping   float64

	declared []InternalSpring
	springs  []InternalSpring
	// Edge springs occupy springs[:edgeCount]
	edgeCount int
}

// NewSpring creates a spring component with the given constants for the
// edge springs and an optional set of internal springs.
func NewSpring(edgeStiffness, edgeDamping float64, internal ...InternalSpring) *Spring {
	return &Spring{
		EdgeStiffness: edgeStiffness,
		EdgeDamping:   edgeDamping,
		declared:      internal,
	}
}

// Prepare builds one spring per body edge, at the edge's current length,
// then validates and appends the declared internal springs.
func (s *Spring) Prepare(body *actor.Body) error {
	if s.EdgeStiffness < 0 || s.EdgeDamping < 0 {
		return fmt.Errorf("edge spring constants must be non-negative, got k=%v c=%v", s.EdgeStiffness, s.EdgeDamping)
	}

	n := len(body.PointMasses)
	s.springs = make([]InternalSpring, 0, n+len(s.declared))
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s.springs = append(s.springs, InternalSpring{
			PointMassA: i,
			PointMassB: j,
			RestLength: body.PointMasses[j].Position.Sub(body.PointMasses[i].Position).Len(),
			Stiffness:  s.EdgeStiffness,
			Damping:    s.EdgeDamping,
		})
	}
	s.edgeCount = n

	for _, spring := range s.declared {
		if err := s.addSpring(body, spring); err != nil {
			return err
		}
	}

	return nil
}

// AddInternalSpring appends an internal spring after attach time.
func (s *Spring) AddInternalSpring(body *actor.Body, spring InternalSpring) error {
	if s.edgeCount == 0 {
		return fmt.Errorf("spring component is not attached to a body")
	}

	return s.addSpring(body, spring)
}

func (s *Spring) addSpring(body *actor.Body, spring InternalSpring) error {
	n := len(body.PointMasses)
	if spring.PointMassA < 0 || spring.PointMassA >= n || spring.PointMassB < 0 || spring.PointMassB >= n {
		return fmt.Errorf("spring endpoints (%d, %d) out of range for %d point masses", spring.PointMassA, spring.PointMassB, n)
	}
	if spring.PointMassA == spring.PointMassB {
		return fmt.Errorf("spring endpoints are the same point mass %d", spring.PointMassA)
	}
	if spring.Stiffness < 0 || spring.Damping < 0 {
		return fmt.Errorf("spring constants must be non-negative, got k=%v c=%v", spring.Stiffness, spring.Damping)
	}

	if spring.RestLength < 0 {
		spring.RestLength = body.PointMasses[spring.PointMassB].Position.
			Sub(body.PointMasses[spring.PointMassA].Position).Len()
	}
	s.springs = append(s.springs, spring)

	return nil
}

// SetEdgeSpringConstants retunes every edge spring.
func (s *Spring) SetEdgeSpringConstants(stiffness, damping float64) {
	s.EdgeStiffness = stiffness
	s.EdgeDamping = damping
	for i := 0; i < s.edgeCount; i++ {
		s.springs[i].Stiffness = stiffness
		s.springs[i].Damping = damping
	}
}

// SetSpringConstants retunes the internal spring at index i, counted
// after the edge springs.
func (s *Spring) SetSpringConstants(i int, stiffness, damping float64) error {
	idx := s.edgeCount + i
	if i < 0 || idx >= len(s.springs) {
		return fmt.Errorf("internal spring index %d out of range", i)
	}

	s.springs[idx].Stiffness = stiffness
	s.springs[idx].Damping = damping

	return nil
}

// Springs returns all springs, edge springs first.
func (s *Spring) Springs() []InternalSpring {
	return s.springs
}

// AccumulateInternalForces applies Hooke forces with relative-velocity
// damping along each spring axis.
func (s *Spring) AccumulateInternalForces(body *actor.Body) {
	for i := range s.springs {
		spring := &s.springs[i]
		pmA := &body.PointMasses[spring.PointMassA]
		pmB := &body.PointMasses[spring.PointMassB]

		force := springForce(pmA, pmB, spring.RestLength, spring.Stiffness, spring.Damping)
		pmA.ApplyForce(force)
		pmB.ApplyForce(force.Mul(-1))
	}
}

// springForce returns the force on A for a spring from A to B. Zero-length
// springs produce no force.
func springForce(pmA, pmB *actor.PointMass, rest, stiffness, damping float64) mgl64.Vec2 {
	diff := pmB.Position.Sub(pmA.Position)
	length := diff.Len()
	if length <= math.SmallestNonzeroFloat64 {
		return mgl64.Vec2{}
	}

	axis := diff.Mul(1 / length)
	magnitude := stiffness*(length-rest) + damping*axis.Dot(pmB.Velocity.Sub(pmA.Velocity))

	return axis.Mul(magnitude)
}
