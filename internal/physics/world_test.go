package physics

import (
	"errors"
	"math/rand"
	"testing"
)

func testWorld(t *testing.T, tiles TileSource, sink EventSink, mutate func(*Config)) (*World, *Registry) {
	t.Helper()
	reg := NewRegistry()
	if _, err := reg.Register("object"); err != nil {
		t.Fatalf("register class: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Area = NewAABB(0, 0, 1024, 1024)
	if mutate != nil {
		mutate(&cfg)
	}

	w, err := NewWorld(reg, tiles, sink, cfg)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	t.Cleanup(w.Close)
	return w, reg
}

func spawnBox(t *testing.T, w *World, reg *Registry, box AABB, velocity Vec2, withTiles bool) *Entity {
	t.Helper()
	object, _ := reg.Lookup("object")
	e, err := w.Spawn(EntityConfig{
		Box:               box,
		Velocity:          velocity,
		Class:             object,
		Accepts:           reg.Set(object),
		CollidesWithTiles: withTiles,
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	return e
}

func TestWorldHeadOnCollisionStops(t *testing.T) {
	w, reg := testWorld(t, nil, nil, nil)
	a := spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{X: 10}, false)
	b := spawnBox(t, w, reg, NewAABB(20, 0, 10, 10), Vec2{X: -10}, false)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if a.Position() != (Vec2{X: 5}) {
		t.Fatalf("a stopped at %+v, want (5, 0)", a.Position())
	}
	if b.Position() != (Vec2{X: 15}) {
		t.Fatalf("b stopped at %+v, want (15, 0)", b.Position())
	}
	if a.Velocity().X != 0 || b.Velocity().X != 0 {
		t.Fatalf("velocities not zeroed: %+v, %+v", a.Velocity(), b.Velocity())
	}
}

func TestWorldDeliversEventsToSink(t *testing.T) {
	var events []Event
	sink := EventSinkFunc(func(event Event) {
		events = append(events, event)
		switch e := event.(type) {
		case EntityCollision:
			StopOnEntity(e)
		case TileCollision:
			StopOnTile(e)
		}
	})

	w, reg := testWorld(t, nil, sink, nil)
	a := spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{X: 10}, false)
	spawnBox(t, w, reg, NewAABB(20, 0, 10, 10), Vec2{X: -10}, false)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	collision, ok := events[0].(EntityCollision)
	if !ok {
		t.Fatalf("event type %T, want EntityCollision", events[0])
	}
	if !collision.Entity.Is(a) {
		t.Fatalf("event entity is not the lower-index collider")
	}
	if collision.Direction != DirectionEast {
		t.Fatalf("direction = %v, want east", collision.Direction)
	}
	if collision.Step != 1 {
		t.Fatalf("step = %d, want 1", collision.Step)
	}
}

func TestWorldDisjointPairsResolveTogether(t *testing.T) {
	var count int
	sink := EventSinkFunc(func(event Event) {
		count++
		if e, ok := event.(EntityCollision); ok {
			StopOnEntity(e)
		}
	})

	w, reg := testWorld(t, nil, sink, nil)
	spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{X: 10}, false)
	spawnBox(t, w, reg, NewAABB(20, 0, 10, 10), Vec2{X: -10}, false)
	spawnBox(t, w, reg, NewAABB(0, 500, 10, 10), Vec2{X: 10}, false)
	spawnBox(t, w, reg, NewAABB(20, 500, 10, 10), Vec2{X: -10}, false)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if count != 2 {
		t.Fatalf("got %d events, want 2", count)
	}
}

func TestWorldDisjointFiltersPassThrough(t *testing.T) {
	var count int
	sink := EventSinkFunc(func(Event) { count++ })

	w, reg := testWorld(t, nil, sink, nil)
	red, err := reg.Register("red")
	if err != nil {
		t.Fatalf("register class: %v", err)
	}
	blue, err := reg.Register("blue")
	if err != nil {
		t.Fatalf("register class: %v", err)
	}

	a, err := w.Spawn(EntityConfig{
		Box:      NewAABB(0, 0, 10, 10),
		Velocity: Vec2{X: 10},
		Class:    red,
		Accepts:  reg.Set(red),
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	b, err := w.Spawn(EntityConfig{
		Box:      NewAABB(20, 0, 10, 10),
		Velocity: Vec2{X: -10},
		Class:    blue,
		Accepts:  reg.Set(blue),
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// The pair overlaps mid-step; disjoint filters mean nobody notices.
	if count != 0 {
		t.Fatalf("got %d events, want 0", count)
	}
	if a.Position() != (Vec2{X: 10}) || b.Position() != (Vec2{X: 10}) {
		t.Fatalf("pair did not pass through: a=%+v b=%+v", a.Position(), b.Position())
	}
	if a.Velocity().X != 10 || b.Velocity().X != -10 {
		t.Fatalf("velocities changed: a=%+v b=%+v", a.Velocity(), b.Velocity())
	}
}

func TestWorldOneWayFilterDoesNotCollide(t *testing.T) {
	// b ignores a even though a accepts b; detection is mutual.
	var count int
	sink := EventSinkFunc(func(event Event) {
		count++
		if e, ok := event.(EntityCollision); ok {
			StopOnEntity(e)
		}
	})

	w, reg := testWorld(t, nil, sink, nil)
	red, err := reg.Register("red")
	if err != nil {
		t.Fatalf("register class: %v", err)
	}
	blue, err := reg.Register("blue")
	if err != nil {
		t.Fatalf("register class: %v", err)
	}

	if _, err := w.Spawn(EntityConfig{
		Box:      NewAABB(0, 0, 10, 10),
		Velocity: Vec2{X: 10},
		Class:    red,
		Accepts:  reg.Set(red, blue),
	}); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if _, err := w.Spawn(EntityConfig{
		Box:      NewAABB(20, 0, 10, 10),
		Velocity: Vec2{X: -10},
		Class:    blue,
		Accepts:  reg.Set(blue),
	}); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if count != 0 {
		t.Fatalf("got %d events, want 0: detection requires both filters", count)
	}
}

func TestWorldChainedCollisionsResolveEarliestFirst(t *testing.T) {
	var events []EntityCollision
	sink := EventSinkFunc(func(event Event) {
		if e, ok := event.(EntityCollision); ok {
			events = append(events, e)
			StopOnEntity(e)
		}
	})

	w, reg := testWorld(t, nil, sink, nil)
	// a reaches b at t=0.5; c reaches b at t=0.7. Both candidates share b,
	// so the later one must wait for the next round.
	a := spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{X: 20}, false)
	b := spawnBox(t, w, reg, NewAABB(20, 0, 10, 10), Vec2{}, false)
	c := spawnBox(t, w, reg, NewAABB(44, 0, 10, 10), Vec2{X: -20}, false)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d entity events, want 2", len(events))
	}
	if !events[0].Entity.Is(a) || !events[0].Other.Is(b) {
		t.Fatalf("first event is not a-b")
	}
	if !events[1].Entity.Is(b) || !events[1].Other.Is(c) {
		t.Fatalf("second event is not b-c")
	}
	if events[0].Direction != DirectionEast || events[1].Direction != DirectionEast {
		t.Fatalf("directions = %v, %v, want east, east", events[0].Direction, events[1].Direction)
	}

	if a.Position() != (Vec2{X: 10}) {
		t.Fatalf("a rested at %+v, want (10, 0)", a.Position())
	}
	if b.Position() != (Vec2{X: 20}) {
		t.Fatalf("b rested at %+v, want (20, 0)", b.Position())
	}
	if c.Position() != (Vec2{X: 30}) {
		t.Fatalf("c rested at %+v, want (30, 0)", c.Position())
	}
}

func TestWorldUnsolvedCollisionTripsSafeMode(t *testing.T) {
	// A sink that never changes velocities leaves the pair on a collision
	// course forever.
	sink := EventSinkFunc(func(Event) {})

	w, reg := testWorld(t, nil, sink, nil)
	spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{X: 10}, false)
	spawnBox(t, w, reg, NewAABB(20, 0, 10, 10), Vec2{X: -10}, false)

	err := w.AdvanceStep()
	if !errors.Is(err, ErrUnsolvedCollision) {
		t.Fatalf("err = %v, want ErrUnsolvedCollision", err)
	}
}

func TestWorldRoundLimitBoundsUnsafeSteps(t *testing.T) {
	sink := EventSinkFunc(func(Event) {})

	w, reg := testWorld(t, nil, sink, func(cfg *Config) {
		cfg.SafeMode = false
		cfg.RoundLimit = 8
	})
	spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{X: 10}, false)
	spawnBox(t, w, reg, NewAABB(20, 0, 10, 10), Vec2{X: -10}, false)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance with round limit: %v", err)
	}
}

func TestWorldTileCollisionStops(t *testing.T) {
	grid := newGridSource(8, 8, 8)
	grid.set(1, 0, 1, solidMask)

	w, reg := testWorld(t, grid, nil, func(cfg *Config) {
		// Derive the area from the grid.
		cfg.Area = AABB{}
	})
	e := spawnBox(t, w, reg, NewAABB(0, 0, 4, 4), Vec2{X: 8}, true)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if e.Position() != (Vec2{X: 4}) {
		t.Fatalf("rested at %+v, want (4, 0)", e.Position())
	}
	if e.Velocity().X != 0 {
		t.Fatalf("velocity not zeroed: %+v", e.Velocity())
	}
}

func TestWorldTileEventCarriesTile(t *testing.T) {
	grid := newGridSource(8, 8, 8)
	grid.set(1, 0, 7, solidMask)

	var got *TileCollision
	sink := EventSinkFunc(func(event Event) {
		if e, ok := event.(TileCollision); ok {
			got = &e
			StopOnTile(e)
		}
	})

	w, reg := testWorld(t, grid, sink, func(cfg *Config) {
		cfg.Area = AABB{}
	})
	spawnBox(t, w, reg, NewAABB(0, 0, 4, 4), Vec2{X: 8}, true)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if got == nil {
		t.Fatalf("no tile event delivered")
	}
	if got.Tile != (TileRef{ID: 7, X: 1, Y: 0}) {
		t.Fatalf("tile ref = %+v", got.Tile)
	}
	if got.Direction != DirectionEast {
		t.Fatalf("direction = %v, want east", got.Direction)
	}
}

func TestWorldStaticEntitiesStayQuiet(t *testing.T) {
	var count int
	sink := EventSinkFunc(func(Event) { count++ })

	w, reg := testWorld(t, nil, sink, nil)
	a := spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{}, false)
	spawnBox(t, w, reg, NewAABB(10, 0, 10, 10), Vec2{}, false)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if count != 0 {
		t.Fatalf("static entities fired %d events", count)
	}
	if a.Position() != (Vec2{}) {
		t.Fatalf("static entity moved to %+v", a.Position())
	}
}

func TestWorldDropsRemovedEntities(t *testing.T) {
	w, reg := testWorld(t, nil, nil, nil)
	a := spawnBox(t, w, reg, NewAABB(0, 0, 10, 10), Vec2{}, false)
	spawnBox(t, w, reg, NewAABB(50, 0, 10, 10), Vec2{}, false)

	a.Remove()
	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	live := w.Entities()
	if len(live) != 1 {
		t.Fatalf("got %d live entities, want 1", len(live))
	}
	if live[0] == a {
		t.Fatalf("removed entity still live")
	}
}

func TestWorldFreeMotionIsExact(t *testing.T) {
	w, reg := testWorld(t, nil, nil, nil)
	e := spawnBox(t, w, reg, NewAABB(3, 4, 5, 5), Vec2{X: 2.5, Y: -1.25}, false)

	if err := w.AdvanceStep(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	// No collision, no flooring: the final advance keeps full precision.
	if e.Position() != (Vec2{X: 5.5, Y: 2.75}) {
		t.Fatalf("moved to %+v, want (5.5, 2.75)", e.Position())
	}
}

func TestWorldParallelMatchesSerial(t *testing.T) {
	build := func(workers, shardSize int) (*World, []*Entity) {
		reg := NewRegistry()
		object, err := reg.Register("object")
		if err != nil {
			t.Fatalf("register class: %v", err)
		}

		cfg := DefaultConfig()
		cfg.Area = NewAABB(0, 0, 1024, 1024)
		cfg.Workers = workers
		cfg.ShardSize = shardSize

		w, err := NewWorld(reg, nil, nil, cfg)
		if err != nil {
			t.Fatalf("new world: %v", err)
		}
		t.Cleanup(w.Close)

		r := rand.New(rand.NewSource(99))
		entities := make([]*Entity, 0, 64)
		for i := 0; i < 64; i++ {
			e, err := w.Spawn(EntityConfig{
				Box:      NewAABB(r.Float64()*900, r.Float64()*900, 10, 10),
				Velocity: Vec2{X: r.Float64()*16 - 8, Y: r.Float64()*16 - 8},
				Class:    object,
				Accepts:  reg.Set(object),
			})
			if err != nil {
				t.Fatalf("spawn %d: %v", i, err)
			}
			entities = append(entities, e)
		}
		return w, entities
	}

	serial, serialEntities := build(1, 1024)
	parallel, parallelEntities := build(8, 4)

	for step := 0; step < 4; step++ {
		if err := serial.AdvanceStep(); err != nil {
			t.Fatalf("serial step %d: %v", step, err)
		}
		if err := parallel.AdvanceStep(); err != nil {
			t.Fatalf("parallel step %d: %v", step, err)
		}
	}

	for i := range serialEntities {
		if serialEntities[i].Position() != parallelEntities[i].Position() {
			t.Fatalf("entity %d diverged: serial %+v, parallel %+v",
				i, serialEntities[i].Position(), parallelEntities[i].Position())
		}
	}
}

func TestNewWorldRequiresArea(t *testing.T) {
	reg := NewRegistry()
	cfg := DefaultConfig()
	if _, err := NewWorld(reg, nil, nil, cfg); !errors.Is(err, ErrNoArea) {
		t.Fatalf("err = %v, want ErrNoArea", err)
	}
}
