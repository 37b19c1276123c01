package physics

import (
	"context"

	"gridfall/server/logging"
)

const (
	// EventEntityCollision is emitted when two entities reach their time of impact.
	EventEntityCollision logging.EventType = "physics.entity_collision"
	// EventTileCollision is emitted when an entity reaches a collidable tile edge.
	EventTileCollision logging.EventType = "physics.tile_collision"
	// EventUnsolvedCollision is emitted when safe mode aborts a step because a
	// collision fired twice without the handler diverting the participants.
	EventUnsolvedCollision logging.EventType = "physics.unsolved_collision"
)

// EntityCollisionPayload captures the participants and geometry of an
// entity-entity impact.
type EntityCollisionPayload struct {
	Direction string  `json:"direction"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// EntityCollision publishes a debug event for an entity-entity impact.
func EntityCollision(ctx context.Context, pub logging.Publisher, step uint64, actor, target logging.EntityRef, payload EntityCollisionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEntityCollision,
		Tick:     step,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryPhysics,
		Payload:  payload,
	})
}

// TileCollisionPayload captures the tile and geometry of an entity-tile impact.
type TileCollisionPayload struct {
	Direction string `json:"direction"`
	Tile      int    `json:"tile"`
	TileX     int    `json:"tileX"`
	TileY     int    `json:"tileY"`
}

// TileCollision publishes a debug event for an entity-tile impact.
func TileCollision(ctx context.Context, pub logging.Publisher, step uint64, actor logging.EntityRef, payload TileCollisionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTileCollision,
		Tick:     step,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryPhysics,
		Payload:  payload,
	})
}

// UnsolvedCollisionPayload records the step a safe-mode abort happened on.
type UnsolvedCollisionPayload struct {
	Step  uint64 `json:"step"`
	Error string `json:"error"`
}

// UnsolvedCollision publishes an error event when a step aborts in safe mode.
func UnsolvedCollision(ctx context.Context, pub logging.Publisher, step uint64, payload UnsolvedCollisionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUnsolvedCollision,
		Tick:     step,
		Actor:    logging.EntityRef{ID: "world", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityError,
		Category: logging.CategoryPhysics,
		Payload:  payload,
	})
}
