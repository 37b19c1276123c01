package physics

import (
	"fmt"
	"math"
	"sync"
)

// Default tuning shared with the quadtree and worker pool.
const (
	DefaultShardSize = 32
)

// Config tunes a World. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// Area bounds the spatial index. When empty it is derived from the
	// tile source's grid size.
	Area AABB

	// TileLogic and EntityLogic toggle the two detection families.
	TileLogic   bool
	EntityLogic bool

	// SafeMode aborts a step with ErrUnsolvedCollision when the same
	// collision fires twice, which means a handler never diverted the
	// participants. With SafeMode off, RoundLimit caps the number of
	// resolution rounds per step instead; zero means no cap.
	SafeMode   bool
	RoundLimit int

	// Workers sizes the detection pool; ShardSize is the number of
	// entities handed to one worker job.
	Workers   int
	ShardSize int

	// NodeCapacity and MaxDepth tune the quadtree rebuilt every round.
	NodeCapacity int
	MaxDepth     int
}

// DefaultConfig returns the standard tuning: both detection families on,
// safe mode on, one worker per shard batch of 32.
func DefaultConfig() Config {
	return Config{
		TileLogic:    true,
		EntityLogic:  true,
		SafeMode:     true,
		Workers:      4,
		ShardSize:    DefaultShardSize,
		NodeCapacity: defaultNodeCapacity,
		MaxDepth:     defaultMaxDepth,
	}
}

// GridSized is implemented by tile sources that know their own extent,
// letting NewWorld derive the simulation area.
type GridSized interface {
	GridSize() (width, height int)
}

// World owns the entities and drives continuous collision resolution.
// AdvanceStep is not safe for concurrent use; all other mutation must
// happen between steps.
type World struct {
	mu       sync.Mutex
	registry *Registry
	tiles    TileSource
	sink     EventSink
	cfg      Config
	pool     *workerPool

	entities []*Entity
	step     uint64
}

// NewWorld builds a world over the given tile source. A nil sink applies
// the default stop handlers to every collision.
func NewWorld(registry *Registry, tiles TileSource, sink EventSink, cfg Config) (*World, error) {
	if cfg.Area.Bounds.X <= 0 || cfg.Area.Bounds.Y <= 0 {
		sized, ok := tiles.(GridSized)
		if !ok {
			return nil, ErrNoArea
		}
		w, h := sized.GridSize()
		size := float64(tiles.TileSize())
		cfg.Area = NewAABB(0, 0, float64(w)*size, float64(h)*size)
	}
	if cfg.ShardSize < 1 {
		cfg.ShardSize = DefaultShardSize
	}
	if cfg.NodeCapacity < 1 {
		cfg.NodeCapacity = defaultNodeCapacity
	}
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = defaultMaxDepth
	}
	return &World{
		registry: registry,
		tiles:    tiles,
		sink:     sink,
		cfg:      cfg,
		pool:     newWorkerPool(cfg.Workers),
	}, nil
}

// Registry returns the collider class registry the world validates
// entities against.
func (w *World) Registry() *Registry {
	return w.registry
}

// Step returns the number of completed steps.
func (w *World) Step() uint64 {
	return w.step
}

// Spawn validates the configuration and adds a new entity to the world.
func (w *World) Spawn(cfg EntityConfig) (*Entity, error) {
	e, err := NewEntity(w.registry, cfg)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.entities = append(w.entities, e)
	w.mu.Unlock()
	return e, nil
}

// Entities returns the live entities. The slice is a copy; the entities
// are the live objects.
func (w *World) Entities() []*Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// Close stops the detection workers. The world must not be used after.
func (w *World) Close() {
	w.pool.close()
}

// AdvanceStep moves every entity through one unit of time, resolving
// collisions in their causal order. Entities flagged for removal are
// dropped before anything moves. Handlers run synchronously between
// rounds and may only change velocities; positions are owned by the loop.
func (w *World) AdvanceStep() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.step++

	live := w.entities[:0]
	for _, e := range w.entities {
		if !e.removed {
			live = append(live, e)
		}
	}
	w.entities = live

	if len(live) == 0 {
		return nil
	}

	localTimes := make([]float64, len(live))
	past := make(map[pseudoEvent]struct{})
	rounds := 0

	for {
		events := w.detectRound(live, localTimes)
		if len(events) == 0 {
			break
		}

		for _, event := range events {
			if w.cfg.SafeMode {
				if _, seen := past[event]; seen {
					return fmt.Errorf("step %d: %w", w.step, ErrUnsolvedCollision)
				}
				past[event] = struct{}{}
			}
			w.fire(live, localTimes, event)
		}

		rounds++
		if !w.cfg.SafeMode && w.cfg.RoundLimit > 0 && rounds >= w.cfg.RoundLimit {
			break
		}
	}

	// Final advance carries full precision; flooring only happens on the
	// intermediate stops above.
	for i, e := range live {
		e.box.Pos = e.box.Pos.Add(e.velocity.Scale(1 - localTimes[i]))
	}
	return nil
}

// fire advances the participants to the impact position and delivers the
// event. Intermediate positions are floored so repeated stops cannot creep
// across a boundary through rounding.
func (w *World) fire(live []*Entity, localTimes []float64, event pseudoEvent) {
	advance := func(index int) {
		e := live[index]
		pos := e.box.Pos.Add(e.velocity.Scale(event.toi - localTimes[index]))
		e.box.Pos = Vec2{X: math.Floor(pos.X), Y: math.Floor(pos.Y)}
		localTimes[index] = event.toi
	}

	switch event.kind {
	case collisionEntity:
		advance(event.entity)
		advance(event.other)
		collision := EntityCollision{
			Step:      w.step,
			Entity:    Contact{entity: live[event.entity]},
			Other:     Contact{entity: live[event.other]},
			Direction: event.direction,
		}
		if w.sink != nil {
			w.sink.Fire(collision)
		} else {
			StopOnEntity(collision)
		}
	case collisionTile:
		advance(event.entity)
		collision := TileCollision{
			Step:      w.step,
			Entity:    Contact{entity: live[event.entity]},
			Tile:      TileRef{ID: event.tile, X: event.tileX, Y: event.tileY},
			Direction: event.direction,
		}
		if w.sink != nil {
			w.sink.Fire(collision)
		} else {
			StopOnTile(collision)
		}
	}
}

// detectRound snapshots the live entities, indexes them, sweeps every one
// against the tree and the tiles in parallel and reduces the candidates to
// the independent earliest batch.
func (w *World) detectRound(live []*Entity, localTimes []float64) []pseudoEvent {
	snapshots := make([]snapshot, len(live))
	tree := newQuadtree(w.cfg.Area, w.cfg.NodeCapacity, w.cfg.MaxDepth)
	for i, e := range live {
		snapshots[i] = newSnapshot(i, e, localTimes[i])
		tree.insert(&snapshots[i])
	}

	shardSize := w.cfg.ShardSize
	shards := (len(snapshots) + shardSize - 1) / shardSize
	results := make([][]pseudoEvent, shards)

	var wg sync.WaitGroup
	for shard := 0; shard < shards; shard++ {
		shard := shard
		lo := shard * shardSize
		hi := minInt(lo+shardSize, len(snapshots))
		wg.Add(1)
		w.pool.submit(func() {
			defer wg.Done()
			results[shard] = w.detectShard(snapshots[lo:hi], tree)
		})
	}
	wg.Wait()

	var events []pseudoEvent
	for _, r := range results {
		events = append(events, r...)
	}
	return reduceEvents(events)
}

// detectShard finds the earliest collision for each snapshot of the shard.
// Each entity contributes at most one candidate; entity pairs are checked
// once, from the lower index.
func (w *World) detectShard(shard []snapshot, tree *quadtree) []pseudoEvent {
	var events []pseudoEvent

	for i := range shard {
		collider := &shard[i]
		best := pseudoEvent{toi: 1, kind: collisionNone, direction: DirectionNone, entity: collider.index, other: -1}
		found := false

		if w.cfg.EntityLogic {
			for _, collided := range tree.intersect(collider.expanded) {
				if collider.index >= collided.index {
					continue
				}
				if !collider.shouldCollideWith(collided) || !collided.shouldCollideWith(collider) {
					continue
				}
				toi, direction := satImpact(collider, collided)
				if direction != DirectionNone && toi < best.toi {
					best = pseudoEvent{
						toi:       toi,
						kind:      collisionEntity,
						direction: direction,
						entity:    collider.index,
						other:     collided.index,
					}
					found = true
				}
			}
		}

		if w.cfg.TileLogic && collider.collidesWithTiles {
			hit := sweepTiles(w.tiles, collider)
			if hit.direction != DirectionNone && hit.toi < best.toi {
				best = pseudoEvent{
					toi:       hit.toi,
					kind:      collisionTile,
					direction: hit.direction,
					entity:    collider.index,
					other:     -1,
					tile:      hit.tile,
					tileX:     hit.x,
					tileY:     hit.y,
				}
				found = true
			}
		}

		if found {
			events = append(events, best)
		}
	}
	return events
}
