package physics

// snapshot is the immutable per-round copy of an entity's collision state.
// Detection workers read snapshots and the quadtree only; the live entity
// is never touched until resolution, which runs single-threaded.
type snapshot struct {
	index             int
	box               AABB
	expanded          AABB
	velocity          Vec2
	classMask         ClassSet
	accepts           ClassSet
	collidesWithTiles bool
	localTime         float64
}

// newSnapshot captures an entity at its current local time. The expanded
// box covers the space swept through the remainder of the step.
func newSnapshot(index int, e *Entity, localTime float64) snapshot {
	box := e.box
	return snapshot{
		index:             index,
		box:               box,
		expanded:          box.Expand(e.velocity.Scale(1 - localTime)),
		velocity:          e.velocity,
		classMask:         e.classMask,
		accepts:           e.accepts,
		collidesWithTiles: e.collidesWithTiles,
		localTime:         localTime,
	}
}

// shouldCollideWith reports whether this snapshot's filter accepts the
// other's collider class (or one of its ancestors).
func (s *snapshot) shouldCollideWith(other *snapshot) bool {
	return s.accepts.Contains(other.classMask)
}

// segment projects the snapshot's box onto one axis.
func (s *snapshot) segment(box AABB, axis int) movableSegment {
	return movableSegment{
		low:   box.Pos.Axis(axis),
		high:  box.Pos.Axis(axis) + box.Bounds.Axis(axis),
		speed: s.velocity.Axis(axis),
	}
}
