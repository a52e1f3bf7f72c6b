package component

import (
	"fmt"
	"math"

	"github.com/akmonengine/jelly/actor"
	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMinimumArea is the floor applied to the polygon area when
// computing gas pressure, preventing a singularity when the body
// collapses.
const DefaultMinimumArea = 0.5

// Pressure models the body as a closed vessel holding an amount of gas.
// Every step it pushes each edge outward with a pressure proportional to
// the gas amount over the current enclosed area.
type Pressure struct {
	baseComponent

	GasAmount float64
	// Floor for the enclosed area, in the same units as point positions
	MinimumArea float64

	normals []mgl64.Vec2
}

// NewPressure creates a pressure component holding the given gas amount.
func NewPressure(gasAmount float64) *Pressure {
	return &Pressure{
		GasAmount:   gasAmount,
		MinimumArea: DefaultMinimumArea,
	}
}

func (p *Pressure) Prepare(body *actor.Body) error {
	if math.IsNaN(p.GasAmount) || math.IsInf(p.GasAmount, 0) {
		return fmt.Errorf("gas amount is not finite: %v", p.GasAmount)
	}
	if p.MinimumArea <= 0 {
		p.MinimumArea = DefaultMinimumArea
	}
	p.normals = make([]mgl64.Vec2, len(body.PointMasses))

	return nil
}

// AccumulateInternalForces runs the two pressure passes: first the
// per-vertex outward normals and the enclosed area, then the per-edge
// pressure forces split onto the edge's endpoints.
func (p *Pressure) AccumulateInternalForces(body *actor.Body) {
	n := len(body.PointMasses)
	if len(p.normals) != n {
		p.normals = make([]mgl64.Vec2, n)
	}

	area := 0.0
	for i := 0; i < n; i++ {
		prev := (i + n - 1) % n
		next := (i + 1) % n

		pos := body.PointMasses[i].Position
		e1 := pos.Sub(body.PointMasses[prev].Position)
		e2 := body.PointMasses[next].Position.Sub(pos)
		p.normals[i] = geo.Normalize(geo.RightPerpendicular(e1.Add(e2)))

		area += geo.Cross(pos, body.PointMasses[next].Position)
	}
	volume := math.Max(p.MinimumArea, math.Abs(area)/2)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		edgeLength := body.PointMasses[j].Position.Sub(body.PointMasses[i].Position).Len()

		pressure := p.GasAmount * edgeLength / volume
		body.PointMasses[i].ApplyForce(p.normals[i].Mul(pressure))
		body.PointMasses[j].ApplyForce(p.normals[j].Mul(pressure))
	}
}
