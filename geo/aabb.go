package geo

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box. The zero value is an
// empty box: it contains no point and intersects nothing until a point
// is added with Expand.
type AABB struct {
	Min mgl64.Vec2
	Max mgl64.Vec2

	valid bool
}

// NewAABB creates a bounding box spanning min and max.
func NewAABB(min, max mgl64.Vec2) AABB {
	box := AABB{}
	box.Expand(min)
	box.Expand(max)

	return box
}

// Clear resets the box to the empty state.
func (a *AABB) Clear() {
	a.Min = mgl64.Vec2{}
	a.Max = mgl64.Vec2{}
	a.valid = false
}

// IsValid reports whether the box spans at least one point.
func (a AABB) IsValid() bool {
	return a.valid
}

// Expand grows the box to include point.
func (a *AABB) Expand(point mgl64.Vec2) {
	if !a.valid {
		a.Min = point
		a.Max = point
		a.valid = true
		return
	}

	if point.X() < a.Min.X() {
		a.Min[0] = point.X()
	}
	if point.Y() < a.Min.Y() {
		a.Min[1] = point.Y()
	}
	if point.X() > a.Max.X() {
		a.Max[0] = point.X()
	}
	if point.Y() > a.Max.Y() {
		a.Max[1] = point.Y()
	}
}

// ExpandAABB grows the box to include the whole of other.
func (a *AABB) ExpandAABB(other AABB) {
	if !other.valid {
		return
	}

	a.Expand(other.Min)
	a.Expand(other.Max)
}

// Contains checks if a point is inside the AABB.
func (a AABB) Contains(point mgl64.Vec2) bool {
	if !a.valid {
		return false
	}

	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y()
}

// Intersects checks if two AABBs overlap.
func (a AABB) Intersects(other AABB) bool {
	if !a.valid || !other.valid {
		return false
	}

	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y()
}

// Size returns the extents of the box on each axis.
func (a AABB) Size() mgl64.Vec2 {
	if !a.valid {
		return mgl64.Vec2{}
	}

	return a.Max.Sub(a.Min)
}
