package physics

import "errors"

var (
	// ErrUnsolvedCollision is returned by AdvanceStep when safe mode is on
	// and the same collision fires twice within one step, which means a
	// handler left the participants on a colliding course.
	ErrUnsolvedCollision = errors.New("physics: collision fired twice in one step, handler left velocities unchanged")

	// ErrNoArea is returned by NewWorld when no simulation area is
	// configured and none can be derived from the tile source.
	ErrNoArea = errors.New("physics: simulation area is empty and tile source has no grid size")

	// ErrUnknownClass is returned when an entity references a class that
	// was never registered.
	ErrUnknownClass = errors.New("physics: collider class not registered")

	// ErrEmptyBounds is returned when an entity is created with a zero or
	// negative extent.
	ErrEmptyBounds = errors.New("physics: entity bounds must be positive on both axes")
)
