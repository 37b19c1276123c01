package physics

import "sort"

// collisionKind tags a pseudo-event as entity-vs-tile or entity-vs-entity.
type collisionKind int

const (
	collisionNone collisionKind = iota
	collisionTile
	collisionEntity
)

// pseudoEvent is the transient candidate produced by one detection round.
// It is comparable on purpose: the resolution loop uses the value itself as
// the safety-guard key for spotting a collision that handlers never solve.
type pseudoEvent struct {
	toi       float64
	kind      collisionKind
	direction Direction

	// entity indexes into the step's live-entity list. other is -1 for
	// tile collisions.
	entity int
	other  int

	// tile identity, meaningful for tile collisions only.
	tile  int
	tileX int
	tileY int
}

// sharesCollider reports whether two pseudo-events involve a common entity.
// Tile identities never alias entity indexes, so only entity slots count.
func (e pseudoEvent) sharesCollider(other pseudoEvent) bool {
	if e.entity == other.entity {
		return true
	}
	if other.kind == collisionEntity && e.entity == other.other {
		return true
	}
	if e.kind == collisionEntity {
		if e.other == other.entity {
			return true
		}
		if other.kind == collisionEntity && e.other == other.other {
			return true
		}
	}
	return false
}

// reduceEvents selects the batch of independent earliest events from one
// round's candidates. A candidate is dropped when any strictly earlier
// candidate involves one of its entities, whether or not that earlier
// candidate itself survives; a chained dependency therefore waits for a
// later round. Equal-time dependent candidates keep only their first
// representative. Candidates are ordered deterministically up front so
// parallel detection cannot perturb resolution order.
func reduceEvents(events []pseudoEvent) []pseudoEvent {
	if len(events) <= 1 {
		return events
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].toi != events[j].toi {
			return events[i].toi < events[j].toi
		}
		if events[i].entity != events[j].entity {
			return events[i].entity < events[j].entity
		}
		return events[i].other < events[j].other
	})

	var selected []pseudoEvent
next:
	for i, candidate := range events {
		for _, earlier := range events[:i] {
			if earlier.toi < candidate.toi && earlier.sharesCollider(candidate) {
				continue next
			}
		}
		for _, kept := range selected {
			if kept.toi == candidate.toi && kept.sharesCollider(candidate) {
				continue next
			}
		}
		selected = append(selected, candidate)
	}
	return selected
}

// TileRef identifies the tile half of a tile collision.
type TileRef struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// Event is a collision delivered to the external sink. Handlers run
// synchronously on the resolution goroutine and may mutate velocities
// through the Contact handles; they can never move positions.
type Event interface {
	isCollisionEvent()
}

// EntityCollision is fired when two entities reach their time of impact.
// Direction is relative to Entity; Other observes the opposite.
type EntityCollision struct {
	Step      uint64
	Entity    Contact
	Other     Contact
	Direction Direction
}

func (EntityCollision) isCollisionEvent() {}

// TileCollision is fired when an entity reaches a collidable tile edge.
type TileCollision struct {
	Step      uint64
	Entity    Contact
	Tile      TileRef
	Direction Direction
}

func (TileCollision) isCollisionEvent() {}

// EventSink receives collision events during resolution. Fire must be
// synchronous; the step does not progress until it returns.
type EventSink interface {
	Fire(Event)
}

// EventSinkFunc adapts a function into an EventSink.
type EventSinkFunc func(Event)

// Fire implements EventSink.
func (f EventSinkFunc) Fire(event Event) {
	if f == nil {
		return
	}
	f(event)
}

// StopOnTile is the default tile-collision response: zero the velocity
// component along the impact axis so the entity rests against the edge.
func StopOnTile(event TileCollision) {
	v := event.Entity.Velocity()
	if event.Direction.Horizontal() {
		v.X = 0
	} else {
		v.Y = 0
	}
	event.Entity.SetVelocity(v)
}

// StopOnEntity is the default entity-collision response: the participant
// moving faster along the impact axis stops; opposing movers both stop.
func StopOnEntity(event EntityCollision) {
	axis := 0
	if !event.Direction.Horizontal() {
		axis = 1
	}

	a := event.Entity.Velocity()
	b := event.Other.Velocity()
	av := a.Axis(axis)
	bv := b.Axis(axis)

	zero := func(c Contact, v Vec2) {
		if axis == 0 {
			v.X = 0
		} else {
			v.Y = 0
		}
		c.SetVelocity(v)
	}

	switch {
	case av*bv <= 0:
		zero(event.Entity, a)
		zero(event.Other, b)
	case abs(av) >= abs(bv):
		zero(event.Entity, a)
	default:
		zero(event.Other, b)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
