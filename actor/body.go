package actor

import (
	"fmt"
	"math"

	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// DefaultVelocityDamping is the per-step velocity retention factor
// applied after collision resolution.
const DefaultVelocityDamping = 0.999

// Edge describes the directed segment between two consecutive point
// masses of a body. It is derived from the current point positions, never
// stored.
type Edge struct {
	// Indices of the flanking point masses in the ring
	A, B       int
	Difference mgl64.Vec2
	Length     float64
	// Outward unit normal, zero when the edge is degenerate
	Normal mgl64.Vec2
}

// PointOnEdge is the result of projecting a point onto a single edge.
type PointOnEdge struct {
	Point      mgl64.Vec2
	Normal     mgl64.Vec2
	EdgeD      float64
	DistanceSq float64
}

// EdgeHit is the result of a closest-edge query against a whole body.
type EdgeHit struct {
	EdgeIndex  int
	PointMassA int
	PointMassB int
	EdgeD      float64
	Point      mgl64.Vec2
	Normal     mgl64.Vec2
	Distance   float64
}

// Body is a deformable polygon: an ordered ring of point masses whose
// resting silhouette is a ClosedShape, with force components attached.
// The pose (position, angle, velocities) is derived from the point masses
// every step, not imposed on them.
type Body struct {
	ID        uuid.UUID
	BaseShape *ClosedShape

	PointMasses []PointMass
	AABB        geo.AABB

	DerivedPos   mgl64.Vec2
	DerivedVel   mgl64.Vec2
	DerivedAngle float64
	DerivedOmega float64
	lastAngle    float64

	Scale      mgl64.Vec2
	VelDamping float64

	IsStatic    bool
	IsKinematic bool
	IsPinned    bool
	FreeRotate  bool
	Render      bool

	// Index into the world's material pair table
	Material int
	// Bodies collide only when their masks share a bit
	CollisionMask uint64
	Tag           any

	// Step pipeline state, advanced only by the world
	State BodyState

	// Broad phase cell occupancy, maintained by the world's grid
	BitmaskX uint64
	BitmaskY uint64

	components []BodyComponent
}

// NewBody creates a body from a shape at the given pose. masses holds
// either one entry, broadcast to every point, or one entry per shape
// vertex. A mass of 0 or +Inf makes the point static; a body whose points
// are all static is marked static as a whole.
func NewBody(shape *ClosedShape, masses []float64, position mgl64.Vec2, angle float64, scale mgl64.Vec2, kinematic bool, components ...BodyComponent) (*Body, error) {
	if shape == nil {
		return nil, fmt.Errorf("body needs a shape")
	}
	if len(masses) != 1 && len(masses) != shape.VertexCount() {
		return nil, fmt.Errorf("mass list length %d does not match shape vertex count %d", len(masses), shape.VertexCount())
	}
	for i, m := range masses {
		if math.IsNaN(m) || m < 0 {
			return nil, fmt.Errorf("mass %d is invalid: %v", i, m)
		}
	}
	if !geo.IsFinite(position) || !geo.IsFinite(scale) || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil, fmt.Errorf("body pose is not finite")
	}

	b := &Body{
		ID:            uuid.New(),
		BaseShape:     shape,
		Scale:         scale,
		VelDamping:    DefaultVelocityDamping,
		IsKinematic:   kinematic,
		FreeRotate:    true,
		Render:        true,
		CollisionMask: ^uint64(0),
		DerivedPos:    position,
		DerivedAngle:  angle,
		lastAngle:     angle,
	}

	world := shape.Transform(position, angle, scale)
	b.PointMasses = make([]PointMass, len(world))
	static := true
	for i, p := range world {
		m := masses[0]
		if len(masses) > 1 {
			m = masses[i]
		}
		b.PointMasses[i] = PointMass{Mass: m, Position: p}
		if !b.PointMasses[i].IsStatic() {
			static = false
		}
	}
	b.IsStatic = static

	for _, c := range components {
		if err := b.AttachComponent(c); err != nil {
			return nil, err
		}
	}

	b.UpdateAABB(0, true)

	return b, nil
}

// AttachComponent binds a component to the body. Components fire in
// attachment order during the force phases.
func (b *Body) AttachComponent(c BodyComponent) error {
	if err := c.Prepare(b); err != nil {
		return fmt.Errorf("attach component: %w", err)
	}
	b.components = append(b.components, c)

	return nil
}

// Components returns the attached components in attachment order.
func (b *Body) Components() []BodyComponent {
	return b.components
}

// ClearForces zeroes every point's force accumulator.
func (b *Body) ClearForces() {
	for i := range b.PointMasses {
		b.PointMasses[i].Force = mgl64.Vec2{}
	}
}

// AccumulateInternalForces lets every component add its body-internal
// forces, in attachment order.
func (b *Body) AccumulateInternalForces() {
	for _, c := range b.components {
		c.AccumulateInternalForces(b)
	}
}

// AccumulateExternalForces lets every component add its external forces,
// in attachment order.
func (b *Body) AccumulateExternalForces() {
	for _, c := range b.components {
		c.AccumulateExternalForces(b)
	}
}

// Integrate advances every point mass one step.
func (b *Body) Integrate(dt float64) {
	if b.IsStatic {
		return
	}

	for i := range b.PointMasses {
		b.PointMasses[i].Integrate(dt)
	}
}

// DampenVelocity scales every point velocity by the damping factor.
func (b *Body) DampenVelocity() {
	for i := range b.PointMasses {
		b.PointMasses[i].Velocity = b.PointMasses[i].Velocity.Mul(b.VelDamping)
	}
}

// DerivePositionAndAngle recomputes the body pose from its point masses:
// centroid, mean velocity, and if FreeRotate is set, the mean rotation of
// the points against the base shape. Static and kinematic bodies keep
// their externally set pose.
func (b *Body) DerivePositionAndAngle(dt float64) {
	if b.IsStatic || b.IsKinematic {
		return
	}

	n := float64(len(b.PointMasses))

	if !b.IsPinned {
		center := mgl64.Vec2{}
		velocity := mgl64.Vec2{}
		for i := range b.PointMasses {
			center = center.Add(b.PointMasses[i].Position)
			velocity = velocity.Add(b.PointMasses[i].Velocity)
		}
		b.DerivedPos = center.Mul(1 / n)
		b.DerivedVel = velocity.Mul(1 / n)
	}

	if !b.FreeRotate {
		return
	}

	// Average the per-point rotation against the rest shape. Angles near
	// the ±π seam are unwrapped against the first point so the running
	// mean stays continuous.
	angle := 0.0
	originalSign := 1
	originalAngle := 0.0
	for i := range b.PointMasses {
		base := geo.Normalize(b.BaseShape.Vertex(i))
		current := geo.Normalize(b.PointMasses[i].Position.Sub(b.DerivedPos))

		dot := mgl64.Clamp(base.Dot(current), -1, 1)
		thisAngle := math.Acos(dot)
		if !geo.IsCCW(base, current) {
			thisAngle = -thisAngle
		}

		if i == 0 {
			originalSign = 1
			if thisAngle < 0 {
				originalSign = -1
			}
			originalAngle = thisAngle
		} else {
			diff := thisAngle - originalAngle
			thisSign := 1
			if thisAngle < 0 {
				thisSign = -1
			}
			if math.Abs(diff) > math.Pi && thisSign != originalSign {
				if thisSign < 0 {
					thisAngle += 2 * math.Pi
				} else {
					thisAngle -= 2 * math.Pi
				}
			}
		}

		angle += thisAngle
	}
	b.DerivedAngle = angle / n

	if dt > 0 {
		change := b.DerivedAngle - b.lastAngle
		if change <= -math.Pi {
			change += 2 * math.Pi
		} else if change > math.Pi {
			change -= 2 * math.Pi
		}
		b.DerivedOmega = change / dt
	}
	b.lastAngle = b.DerivedAngle
}

// UpdateAABB recomputes the bounding box from the point positions,
// padded by one step of velocity so the box covers the sweep.
func (b *Body) UpdateAABB(dt float64, forceUpdate bool) {
	if b.IsStatic && !forceUpdate {
		return
	}

	b.AABB.Clear()
	for i := range b.PointMasses {
		pm := &b.PointMasses[i]
		b.AABB.Expand(pm.Position)
		if !pm.IsStatic() {
			b.AABB.Expand(pm.Position.Add(pm.Velocity.Mul(dt)))
		}
	}
}

// Vertices returns the current world positions of the ring, in order.
// This is what rendering consumers draw.
func (b *Body) Vertices() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(b.PointMasses))
	for i := range b.PointMasses {
		out[i] = b.PointMasses[i].Position
	}

	return out
}

// VelAvg returns the mean velocity of the point masses.
func (b *Body) VelAvg() mgl64.Vec2 {
	velocity := mgl64.Vec2{}
	for i := range b.PointMasses {
		velocity = velocity.Add(b.PointMasses[i].Velocity)
	}

	return velocity.Mul(1 / float64(len(b.PointMasses)))
}

// EdgeCount returns the number of edges, equal to the point count.
func (b *Body) EdgeCount() int {
	return len(b.PointMasses)
}

// GetEdge derives the edge starting at point mass i.
func (b *Body) GetEdge(i int) Edge {
	j := (i + 1) % len(b.PointMasses)
	diff := b.PointMasses[j].Position.Sub(b.PointMasses[i].Position)

	return Edge{
		A:          i,
		B:          j,
		Difference: diff,
		Length:     diff.Len(),
		Normal:     geo.Normalize(geo.RightPerpendicular(diff)),
	}
}

// Contains reports whether a world point lies inside the polygon, using
// an even-odd crossing test with a horizontal +X ray. Boundary points may
// report either value.
func (b *Body) Contains(pt mgl64.Vec2) bool {
	if !b.AABB.Contains(pt) {
		return false
	}

	inside := false
	n := len(b.PointMasses)
	for i := 0; i < n; i++ {
		st := b.PointMasses[i].Position
		en := b.PointMasses[(i+1)%n].Position

		if (st.Y() <= pt.Y() && en.Y() > pt.Y()) || (st.Y() > pt.Y() && en.Y() <= pt.Y()) {
			hitX := st.X() + (pt.Y()-st.Y())*(en.X()-st.X())/(en.Y()-st.Y())
			if hitX >= pt.X() {
				inside = !inside
			}
		}
	}

	return inside
}

// IntersectsLine reports whether the segment a-b touches the body: either
// endpoint inside, or the segment crossing any edge.
func (b *Body) IntersectsLine(a, bEnd mgl64.Vec2) bool {
	if b.Contains(a) || b.Contains(bEnd) {
		return true
	}

	n := len(b.PointMasses)
	for i := 0; i < n; i++ {
		st := b.PointMasses[i].Position
		en := b.PointMasses[(i+1)%n].Position
		if _, _, ok := segmentIntersection(a, bEnd, st, en); ok {
			return true
		}
	}

	return false
}

// Raycast walks every edge and returns the hit nearest to a along the
// segment a-b.
func (b *Body) Raycast(a, bEnd mgl64.Vec2) (mgl64.Vec2, bool) {
	best := math.Inf(1)
	hit := mgl64.Vec2{}
	found := false

	n := len(b.PointMasses)
	for i := 0; i < n; i++ {
		st := b.PointMasses[i].Position
		en := b.PointMasses[(i+1)%n].Position
		if t, point, ok := segmentIntersection(a, bEnd, st, en); ok && t < best {
			best = t
			hit = point
			found = true
		}
	}

	return hit, found
}

// segmentIntersection solves p + t*(p2-p) == q + u*(q2-q) parametrically.
// It reports the hit point and t when both parameters land in [0,1].
func segmentIntersection(p, p2, q, q2 mgl64.Vec2) (float64, mgl64.Vec2, bool) {
	d1 := p2.Sub(p)
	d2 := q2.Sub(q)

	denom := geo.Cross(d1, d2)
	if math.Abs(denom) <= math.SmallestNonzeroFloat64 {
		return 0, mgl64.Vec2{}, false
	}

	qp := q.Sub(p)
	t := geo.Cross(qp, d2) / denom
	u := geo.Cross(qp, d1) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, mgl64.Vec2{}, false
	}

	return t, p.Add(d1.Mul(t)), true
}

// ClosestPointOnEdge projects pt onto edge i, clamped to the segment.
func (b *Body) ClosestPointOnEdge(pt mgl64.Vec2, i int) PointOnEdge {
	st := b.PointMasses[i].Position
	en := b.PointMasses[(i+1)%len(b.PointMasses)].Position

	e := en.Sub(st)
	lenSq := e.LenSqr()
	if lenSq <= math.SmallestNonzeroFloat64 {
		return PointOnEdge{
			Point:      st,
			Normal:     mgl64.Vec2{},
			EdgeD:      0,
			DistanceSq: pt.Sub(st).LenSqr(),
		}
	}

	d := mgl64.Clamp(pt.Sub(st).Dot(e)/lenSq, 0, 1)
	hit := st.Add(e.Mul(d))

	return PointOnEdge{
		Point:      hit,
		Normal:     geo.Normalize(geo.RightPerpendicular(e)),
		EdgeD:      d,
		DistanceSq: pt.Sub(hit).LenSqr(),
	}
}

// ClosestPoint finds the edge point nearest to pt over the whole ring.
func (b *Body) ClosestPoint(pt mgl64.Vec2) (PointOnEdge, int) {
	best := PointOnEdge{DistanceSq: math.Inf(1)}
	bestEdge := -1

	for i := range b.PointMasses {
		candidate := b.ClosestPointOnEdge(pt, i)
		if candidate.DistanceSq < best.DistanceSq {
			best = candidate
			bestEdge = i
		}
	}

	return best, bestEdge
}

// ClosestEdge finds the edge nearest to pt, reporting the flanking point
// masses and the parametric position along the edge. It reports false
// when the nearest distance exceeds tolerance.
func (b *Body) ClosestEdge(pt mgl64.Vec2, tolerance float64) (EdgeHit, bool) {
	point, edge := b.ClosestPoint(pt)
	if edge < 0 {
		return EdgeHit{}, false
	}

	distance := math.Sqrt(point.DistanceSq)
	if distance > tolerance {
		return EdgeHit{}, false
	}

	return EdgeHit{
		EdgeIndex:  edge,
		PointMassA: edge,
		PointMassB: (edge + 1) % len(b.PointMasses),
		EdgeD:      point.EdgeD,
		Point:      point.Point,
		Normal:     point.Normal,
		Distance:   distance,
	}, true
}

// ApplyTorque adds a tangential force around the derived center to every
// point.
func (b *Body) ApplyTorque(torque float64) {
	for i := range b.PointMasses {
		pm := &b.PointMasses[i]
		tangent := geo.Perpendicular(geo.Normalize(pm.Position.Sub(b.DerivedPos)))
		pm.ApplyForce(tangent.Mul(torque))
	}
}

// SetAngularVelocity replaces every point's velocity with a tangential
// velocity around the derived center.
func (b *Body) SetAngularVelocity(omega float64) {
	for i := range b.PointMasses {
		pm := &b.PointMasses[i]
		tangent := geo.Perpendicular(geo.Normalize(pm.Position.Sub(b.DerivedPos)))
		pm.Velocity = tangent.Mul(omega)
	}
}

// AddAngularVelocity adds a tangential velocity around the derived center
// to every point.
func (b *Body) AddAngularVelocity(omega float64) {
	for i := range b.PointMasses {
		pm := &b.PointMasses[i]
		tangent := geo.Perpendicular(geo.Normalize(pm.Position.Sub(b.DerivedPos)))
		pm.Velocity = pm.Velocity.Add(tangent.Mul(omega))
	}
}

// AddGlobalForce applies a force acting at a world point: every point
// mass receives the force itself plus the torque it produces around pt.
func (b *Body) AddGlobalForce(pt, force mgl64.Vec2) {
	torque := geo.Cross(b.DerivedPos.Sub(pt), force)
	for i := range b.PointMasses {
		pm := &b.PointMasses[i]
		pm.ApplyForce(force)
		pm.ApplyForce(geo.Perpendicular(pm.Position.Sub(pt)).Mul(torque))
	}
}

// SetPositionAngle teleports the body: point masses snap to the base
// shape transformed by the given pose. Velocities are left untouched.
func (b *Body) SetPositionAngle(position mgl64.Vec2, angle float64, scale mgl64.Vec2) {
	world := b.BaseShape.Transform(position, angle, scale)
	for i := range b.PointMasses {
		b.PointMasses[i].Position = world[i]
	}

	b.Scale = scale
	b.DerivedPos = position
	b.DerivedAngle = angle
	b.lastAngle = angle
	b.UpdateAABB(0, true)
}

// SetKinematicPosition sets the derived position of a kinematic body,
// which shape matching then pulls the points toward.
func (b *Body) SetKinematicPosition(position mgl64.Vec2) {
	b.DerivedPos = position
}

// SetKinematicAngle sets the derived angle of a kinematic body.
func (b *Body) SetKinematicAngle(angle float64) {
	b.DerivedAngle = angle
	b.lastAngle = angle
}

// SetShape swaps the base shape. Point masses are rebuilt at the new
// shape's posed positions; masses carry over per index, the last mass
// repeating when the new shape has more vertices.
func (b *Body) SetShape(shape *ClosedShape) {
	b.BaseShape = shape

	world := shape.Transform(b.DerivedPos, b.DerivedAngle, b.Scale)
	points := make([]PointMass, len(world))
	for i, p := range world {
		m := b.PointMasses[min(i, len(b.PointMasses)-1)].Mass
		points[i] = PointMass{Mass: m, Position: p}
	}
	b.PointMasses = points
	b.UpdateAABB(0, true)
}

// SetMassAll gives every point the same mass.
func (b *Body) SetMassAll(mass float64) {
	for i := range b.PointMasses {
		b.PointMasses[i].Mass = mass
	}
	b.refreshStatic()
}

// SetMassFromList gives each point its own mass. The list length must
// match the point count.
func (b *Body) SetMassFromList(masses []float64) error {
	if len(masses) != len(b.PointMasses) {
		return fmt.Errorf("mass list length %d does not match point count %d", len(masses), len(b.PointMasses))
	}

	for i, m := range masses {
		if math.IsNaN(m) || m < 0 {
			return fmt.Errorf("mass %d is invalid: %v", i, m)
		}
		b.PointMasses[i].Mass = m
	}
	b.refreshStatic()

	return nil
}

func (b *Body) refreshStatic() {
	for i := range b.PointMasses {
		if !b.PointMasses[i].IsStatic() {
			b.IsStatic = false
			return
		}
	}
	b.IsStatic = true
}
