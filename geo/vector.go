package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Perpendicular rotates v by 90° counter-clockwise: (-y, x).
func Perpendicular(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v.Y(), v.X()}
}

// RightPerpendicular rotates v by 90° clockwise: (y, -x).
// For a counter-clockwise wound polygon this is the outward direction
// of an edge difference vector.
func RightPerpendicular(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{v.Y(), -v.X()}
}

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// Rotate rotates v by angle radians, counter-clockwise.
func Rotate(v mgl64.Vec2, angle float64) mgl64.Vec2 {
	sin, cos := math.Sincos(angle)

	return mgl64.Vec2{
		cos*v.X() - sin*v.Y(),
		sin*v.X() + cos*v.Y(),
	}
}

// Normalize returns v scaled to unit length, or the zero vector when the
// magnitude is too small to divide by.
func Normalize(v mgl64.Vec2) mgl64.Vec2 {
	length := v.Len()
	if length <= math.SmallestNonzeroFloat64 {
		return mgl64.Vec2{}
	}

	return v.Mul(1.0 / length)
}

// IsCCW reports whether b lies counter-clockwise of a, i.e. the signed
// angle from a to b lies in [0, π]; opposite vectors count as
// counter-clockwise.
func IsCCW(a, b mgl64.Vec2) bool {
	return b.Dot(Perpendicular(a)) >= 0
}

// Mul multiplies a and b component-wise.
func Mul(a, b mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{a.X() * b.X(), a.Y() * b.Y()}
}

// Div divides a by b component-wise.
func Div(a, b mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{a.X() / b.X(), a.Y() / b.Y()}
}

// SignedAngle returns the angle in (-π, π] needed to rotate unit vector a
// onto unit vector b. Inputs are normalized internally.
func SignedAngle(a, b mgl64.Vec2) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	dot := mgl64.Clamp(na.Dot(nb), -1, 1)
	angle := math.Acos(dot)
	if !IsCCW(na, nb) {
		angle = -angle
	}

	return angle
}

// SignedPolygonArea computes the shoelace sum of a vertex ring.
// Positive for counter-clockwise winding, negative for clockwise.
func SignedPolygonArea(points []mgl64.Vec2) float64 {
	area := 0.0
	for i, p := range points {
		next := points[(i+1)%len(points)]
		area += p.X()*next.Y() - next.X()*p.Y()
	}

	return area / 2
}

// PolygonArea computes the unsigned area of a simple polygon.
func PolygonArea(points []mgl64.Vec2) float64 {
	return math.Abs(SignedPolygonArea(points))
}

// IsFinite reports whether both components are finite numbers.
func IsFinite(v mgl64.Vec2) bool {
	return !math.IsNaN(v.X()) && !math.IsInf(v.X(), 0) &&
		!math.IsNaN(v.Y()) && !math.IsInf(v.Y(), 0)
}
