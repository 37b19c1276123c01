package physics

import "fmt"

// EntityConfig describes a collidable entity at spawn time.
type EntityConfig struct {
	Box               AABB
	Velocity          Vec2
	Class             Class
	Accepts           ClassSet
	CollidesWithTiles bool
}

// Entity is a live, mutable participant of the simulation. The resolution
// loop is the only writer of its position while a step runs; collision
// handlers mutate velocity through the Contact handle carried by events.
type Entity struct {
	box               AABB
	velocity          Vec2
	class             Class
	classMask         ClassSet
	accepts           ClassSet
	collidesWithTiles bool
	removed           bool
}

// NewEntity validates the configuration against the registry and builds an
// entity. Non-positive extents are configuration errors.
func NewEntity(reg *Registry, cfg EntityConfig) (*Entity, error) {
	if cfg.Box.Bounds.X <= 0 || cfg.Box.Bounds.Y <= 0 {
		return nil, fmt.Errorf("%w: got %gx%g", ErrEmptyBounds, cfg.Box.Bounds.X, cfg.Box.Bounds.Y)
	}
	mask := reg.Closure(cfg.Class)
	if mask == 0 {
		return nil, fmt.Errorf("%w: class %d", ErrUnknownClass, cfg.Class)
	}
	return &Entity{
		box:               cfg.Box,
		velocity:          cfg.Velocity,
		class:             cfg.Class,
		classMask:         mask,
		accepts:           cfg.Accepts,
		collidesWithTiles: cfg.CollidesWithTiles,
	}, nil
}

// Box returns the entity's current bounding box.
func (e *Entity) Box() AABB {
	return e.box
}

// Position returns the min corner of the bounding box.
func (e *Entity) Position() Vec2 {
	return e.box.Pos
}

// SetPosition teleports the entity. Must not be called while a step is in
// flight; the resolution loop owns positions between detect and finalize.
func (e *Entity) SetPosition(pos Vec2) {
	e.box.Pos = pos
}

// Velocity returns the entity's velocity in units per step.
func (e *Entity) Velocity() Vec2 {
	return e.velocity
}

// SetVelocity replaces the entity's velocity.
func (e *Entity) SetVelocity(v Vec2) {
	e.velocity = v
}

// Class returns the entity's collider class.
func (e *Entity) Class() Class {
	return e.class
}

// CollidesWithTiles reports whether tile detection applies to this entity.
func (e *Entity) CollidesWithTiles() bool {
	return e.collidesWithTiles
}

// Remove flags the entity for removal; it is excluded from the live list at
// the start of the next step.
func (e *Entity) Remove() {
	e.removed = true
}

// Removed reports whether the entity is flagged for removal.
func (e *Entity) Removed() bool {
	return e.removed
}

// Contact is the constrained mutation handle that collision events hand to
// external code. It deliberately exposes no way to move the entity: only
// the resolution loop ever advances positions.
type Contact struct {
	entity *Entity
}

// Box returns a copy of the underlying entity's bounding box.
func (c Contact) Box() AABB {
	return c.entity.box
}

// Velocity returns the underlying entity's velocity.
func (c Contact) Velocity() Vec2 {
	return c.entity.velocity
}

// SetVelocity mutates the underlying entity's velocity. Handlers are
// expected to use this so the same collision does not recur next round.
func (c Contact) SetVelocity(v Vec2) {
	c.entity.velocity = v
}

// Class returns the underlying entity's collider class.
func (c Contact) Class() Class {
	return c.entity.class
}

// Is reports whether the handle wraps the given entity.
func (c Contact) Is(e *Entity) bool {
	return c.entity == e
}
