package physics

// movableSegment is the 1D projection of a moving box onto one axis. The
// entity-entity SAT works entirely on pairs of these.
type movableSegment struct {
	low   float64
	high  float64
	speed float64
}

// overlaps reports whether the segments currently share any point, edges
// included.
func (s movableSegment) overlaps(other movableSegment) bool {
	return s.high >= other.low && s.low <= other.high
}

// touching reports whether the segments share exactly one boundary point.
func (s movableSegment) touching(other movableSegment) bool {
	return s.high == other.low || s.low == other.high
}

// shouldImpact reports whether two currently separated segments are closing:
// the gap between the near edges shrinks under the relative velocity.
func (s movableSegment) shouldImpact(other movableSegment) bool {
	return (s.high < other.low && s.speed > other.speed) ||
		(s.low > other.high && s.speed < other.speed)
}

// shouldSeparate reports whether the relative velocity will eventually open
// a gap between touching or overlapping segments.
func (s movableSegment) shouldSeparate(other movableSegment) bool {
	return s.speed != other.speed
}

// timeOfImpact solves linearly for the instant the near edges meet. Equal
// velocities admit no finite solution; the caller must gate on shouldImpact,
// but the guard here keeps a stray call from dividing by zero.
func (s movableSegment) timeOfImpact(other movableSegment) float64 {
	if s.speed == other.speed {
		return -1
	}
	if s.high < other.low {
		return (other.low - s.high) / (s.speed - other.speed)
	}
	return (s.low - other.high) / (other.speed - s.speed)
}

// timeOfSeparation is the dual of timeOfImpact for segments in contact: the
// instant the trailing edges part.
func (s movableSegment) timeOfSeparation(other movableSegment) float64 {
	if s.speed > other.speed {
		return (other.high - s.low) / (s.speed - other.speed)
	}
	return (s.high - other.low) / (other.speed - s.speed)
}
