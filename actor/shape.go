package actor

import (
	"fmt"
	"math"

	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
)

// ClosedShape is the resting polygon of a soft body, stored as an ordered
// ring of local vertices. Construction recenters the ring on its centroid
// and normalizes the winding to counter-clockwise, so edge outward normals
// are always the clockwise perpendicular of the edge direction.
type ClosedShape struct {
	vertices []mgl64.Vec2
}

// NewClosedShape builds a shape from a local vertex ring.
// At least 3 finite vertices are required.
func NewClosedShape(vertices []mgl64.Vec2) (*ClosedShape, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("closed shape needs at least 3 vertices, got %d", len(vertices))
	}

	ring := make([]mgl64.Vec2, len(vertices))
	center := mgl64.Vec2{}
	for i, v := range vertices {
		if !geo.IsFinite(v) {
			return nil, fmt.Errorf("closed shape vertex %d is not finite: %v", i, v)
		}
		ring[i] = v
		center = center.Add(v)
	}
	center = center.Mul(1.0 / float64(len(ring)))

	for i := range ring {
		ring[i] = ring[i].Sub(center)
	}

	if geo.SignedPolygonArea(ring) < 0 {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}

	return &ClosedShape{vertices: ring}, nil
}

// SquareShape builds an axis-aligned square with the given edge length.
func SquareShape(size float64) *ClosedShape {
	h := size / 2
	shape, _ := NewClosedShape([]mgl64.Vec2{
		{-h, -h},
		{h, -h},
		{h, h},
		{-h, h},
	})

	return shape
}

// CircleShape approximates a circle with a regular polygon of the given
// segment count.
func CircleShape(radius float64, segments int) *ClosedShape {
	if segments < 3 {
		segments = 3
	}

	vertices := make([]mgl64.Vec2, segments)
	for i := range vertices {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		sin, cos := math.Sincos(angle)
		vertices[i] = mgl64.Vec2{radius * cos, radius * sin}
	}

	shape, _ := NewClosedShape(vertices)

	return shape
}

// VertexCount returns the number of vertices in the ring.
func (s *ClosedShape) VertexCount() int {
	return len(s.vertices)
}

// Vertex returns the local vertex at index i.
func (s *ClosedShape) Vertex(i int) mgl64.Vec2 {
	return s.vertices[i]
}

// Vertices returns a copy of the local vertex ring.
func (s *ClosedShape) Vertices() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(s.vertices))
	copy(out, s.vertices)

	return out
}

// Transform maps the whole ring into world space for the given pose.
func (s *ClosedShape) Transform(position mgl64.Vec2, angle float64, scale mgl64.Vec2) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(s.vertices))
	for i, v := range s.vertices {
		out[i] = TransformVertex(v, position, angle, scale)
	}

	return out
}

// TransformVertex maps a single local vertex into world space.
func TransformVertex(v, position mgl64.Vec2, angle float64, scale mgl64.Vec2) mgl64.Vec2 {
	return geo.Rotate(geo.Mul(v, scale), angle).Add(position)
}
