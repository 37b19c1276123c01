package physics

// Direction encodes the side of a collision relative to the first collider.
type Direction int

const (
	DirectionNone Direction = iota - 1
	DirectionNorth
	DirectionEast
	DirectionSouth
	DirectionWest
)

func (d Direction) String() string {
	switch d {
	case DirectionNorth:
		return "north"
	case DirectionEast:
		return "east"
	case DirectionSouth:
		return "south"
	case DirectionWest:
		return "west"
	default:
		return "none"
	}
}

// Opposite returns the direction rotated by 180 degrees.
func (d Direction) Opposite() Direction {
	if d == DirectionNone {
		return DirectionNone
	}
	return (d + 2) % 4
}

// RotateRight returns the direction rotated 90 degrees clockwise.
func (d Direction) RotateRight() Direction {
	if d == DirectionNone {
		return DirectionNone
	}
	return (d + 1) % 4
}

// RotateLeft returns the direction rotated 90 degrees counterclockwise.
func (d Direction) RotateLeft() Direction {
	if d == DirectionNone {
		return DirectionNone
	}
	return (d + 3) % 4
}

// Horizontal reports whether the direction lies on the x axis.
func (d Direction) Horizontal() bool {
	return d == DirectionEast || d == DirectionWest
}
