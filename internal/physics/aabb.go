package physics

// Vec2 is a plain 2D vector in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the component-wise difference of two vectors.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale returns the vector multiplied by a scalar.
func (v Vec2) Scale(factor float64) Vec2 {
	return Vec2{X: v.X * factor, Y: v.Y * factor}
}

// Axis returns the component for axis 0 (x) or 1 (y).
func (v Vec2) Axis(axis int) float64 {
	if axis == 0 {
		return v.X
	}
	return v.Y
}

// AABB is an axis-aligned bounding box stored as min corner plus extents.
// Extents are never negative; NewAABB enforces that at construction.
type AABB struct {
	Pos    Vec2 `json:"pos"`
	Bounds Vec2 `json:"bounds"`
}

// NewAABB builds a box from its min corner and extents.
func NewAABB(x, y, w, h float64) AABB {
	return AABB{Pos: Vec2{X: x, Y: y}, Bounds: Vec2{X: w, Y: h}}
}

// Max returns the opposite corner of the box.
func (b AABB) Max() Vec2 {
	return b.Pos.Add(b.Bounds)
}

// ContainsPoint reports whether the point lies inside the box, edges included.
func (b AABB) ContainsPoint(p Vec2) bool {
	return p.X >= b.Pos.X && p.X <= b.Pos.X+b.Bounds.X &&
		p.Y >= b.Pos.Y && p.Y <= b.Pos.Y+b.Bounds.Y
}

// Contains reports whether other is fully embedded in the box.
func (b AABB) Contains(other AABB) bool {
	return b.Pos.X <= other.Pos.X && b.Pos.Y <= other.Pos.Y &&
		b.Pos.X+b.Bounds.X >= other.Pos.X+other.Bounds.X &&
		b.Pos.Y+b.Bounds.Y >= other.Pos.Y+other.Bounds.Y
}

// Intersects reports whether the two boxes overlap. Boxes that merely share
// an edge do not intersect.
func (b AABB) Intersects(other AABB) bool {
	return b.Pos.X < other.Pos.X+other.Bounds.X &&
		b.Pos.X+b.Bounds.X > other.Pos.X &&
		b.Pos.Y < other.Pos.Y+other.Bounds.Y &&
		b.Pos.Y+b.Bounds.Y > other.Pos.Y
}

// Expand grows the box asymmetrically by the displacement: only in the
// direction of travel, so the result covers exactly the space swept through
// during the remaining step motion.
func (b AABB) Expand(displacement Vec2) AABB {
	expanded := b
	if displacement.X < 0 {
		expanded.Pos.X += displacement.X
		expanded.Bounds.X -= displacement.X
	} else {
		expanded.Bounds.X += displacement.X
	}
	if displacement.Y < 0 {
		expanded.Pos.Y += displacement.Y
		expanded.Bounds.Y -= displacement.Y
	} else {
		expanded.Bounds.Y += displacement.Y
	}
	return expanded
}

// Translate returns the box shifted by the offset.
func (b AABB) Translate(offset Vec2) AABB {
	return AABB{Pos: b.Pos.Add(offset), Bounds: b.Bounds}
}

// Center returns the middle point of the box.
func (b AABB) Center() Vec2 {
	return b.Pos.Add(b.Bounds.Scale(0.5))
}
