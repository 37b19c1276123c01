package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gridfall/server/internal/physics"
	"gridfall/server/internal/telemetry"
	"gridfall/server/logging"
	logphysics "gridfall/server/logging/physics"
	logsim "gridfall/server/logging/simulation"
	"gridfall/server/tiles"
)

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WriteMessage serializes writes so the tick broadcast and the per-client
// reader goroutine never interleave frames.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// Hub owns the simulation world and the set of connected players. All
// mutation happens under its mutex; the tick loop is the only caller that
// advances the world.
type Hub struct {
	mu          sync.Mutex
	nextID      uint64
	players     map[string]*playerState
	subscribers map[string]*subscriber

	world       *physics.World
	level       *tiles.Level
	playerClass physics.Class
	cfg         WorldConfig

	publisher logging.Publisher
	telemetry *telemetryCounters
}

// NewHub builds a hub simulating the given level. A nil publisher drops
// all structured events; a nil metrics sink skips counter mirroring.
func NewHub(cfg WorldConfig, level *tiles.Level, publisher logging.Publisher, metrics telemetry.Metrics) (*Hub, error) {
	cfg = cfg.Normalized()
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	registry := physics.NewRegistry()
	playerClass, err := registry.Register(playerClassName)
	if err != nil {
		return nil, fmt.Errorf("register player class: %w", err)
	}

	h := &Hub{
		players:     make(map[string]*playerState),
		subscribers: make(map[string]*subscriber),
		level:       level,
		playerClass: playerClass,
		cfg:         cfg,
		publisher:   publisher,
		telemetry:   newTelemetryCounters(metrics),
	}

	world, err := physics.NewWorld(registry, level, physics.EventSinkFunc(h.handleCollisionLocked), physics.Config{
		TileLogic:   true,
		EntityLogic: true,
		SafeMode:    cfg.SafeMode,
		RoundLimit:  16,
		Workers:     cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	h.world = world
	return h, nil
}

// CurrentConfig returns the normalized world configuration.
func (h *Hub) CurrentConfig() WorldConfig {
	return h.cfg
}

// handleCollisionLocked reacts to collision events fired while advance
// holds the hub mutex. It must not lock again.
func (h *Hub) handleCollisionLocked(event physics.Event) {
	switch ev := event.(type) {
	case physics.EntityCollision:
		physics.StopOnEntity(ev)
		h.telemetry.RecordEntityCollision()
		pos := ev.Entity.Box().Pos
		logphysics.EntityCollision(context.Background(), h.publisher, ev.Step,
			h.refForLocked(ev.Entity), h.refForLocked(ev.Other),
			logphysics.EntityCollisionPayload{
				Direction: ev.Direction.String(),
				X:         pos.X,
				Y:         pos.Y,
			})
	case physics.TileCollision:
		physics.StopOnTile(ev)
		h.telemetry.RecordTileCollision()
		logphysics.TileCollision(context.Background(), h.publisher, ev.Step,
			h.refForLocked(ev.Entity),
			logphysics.TileCollisionPayload{
				Direction: ev.Direction.String(),
				Tile:      ev.Tile.ID,
				TileX:     ev.Tile.X,
				TileY:     ev.Tile.Y,
			})
	}
}

// refForLocked resolves a contact handle back to the owning player.
func (h *Hub) refForLocked(contact physics.Contact) logging.EntityRef {
	for _, state := range h.players {
		if contact.Is(state.entity) {
			return logging.EntityRef{ID: state.ID, Kind: logging.EntityKindPlayer}
		}
	}
	return logging.EntityRef{ID: "entity", Kind: logging.EntityKindEntity}
}

// Join registers a new player and returns the snapshot sent over HTTP.
func (h *Hub) Join() (joinResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := fmt.Sprintf("player-%d", h.nextID)

	spawnX, spawnY := h.spawnPointLocked()
	entity, err := h.world.Spawn(physics.EntityConfig{
		Box:               physics.NewAABB(spawnX, spawnY, playerWidth, playerHeight),
		Class:             h.playerClass,
		Accepts:           h.world.Registry().Set(h.playerClass),
		CollidesWithTiles: true,
	})
	if err != nil {
		return joinResponse{}, fmt.Errorf("spawn %s: %w", id, err)
	}

	now := time.Now()
	h.players[id] = &playerState{
		ID:            id,
		Facing:        defaultFacing,
		entity:        entity,
		lastInput:     now,
		lastHeartbeat: now,
	}

	return joinResponse{
		Ver:     ProtocolVersion,
		ID:      id,
		Players: h.snapshotLocked(),
		Tiles:   h.tileGridLocked(),
		Config:  h.cfg,
	}, nil
}

// spawnPointLocked staggers spawns around the grid center so newly joined
// players do not start overlapping.
func (h *Hub) spawnPointLocked() (float64, float64) {
	size := float64(h.cfg.TileSize)
	centerX := float64(h.cfg.Width) * size / 2
	centerY := float64(h.cfg.Height) * size / 2
	offset := float64(len(h.players)) * (playerWidth + 4)
	x := centerX + math.Mod(offset, float64(h.cfg.Width)*size/2)
	return x, centerY
}

// Subscribe attaches a websocket connection to an existing player. Any
// previous connection for the same player is closed.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) (*subscriber, bool) {
	h.mu.Lock()
	_, ok := h.players[playerID]
	var stale *subscriber
	var sub *subscriber
	if ok {
		stale = h.subscribers[playerID]
		sub = &subscriber{conn: conn}
		h.subscribers[playerID] = sub
	}
	h.mu.Unlock()

	if stale != nil {
		stale.conn.Close()
	}
	return sub, ok
}

// Disconnect removes a player and its subscriber, and flags the entity so
// the next step drops it from the world.
func (h *Hub) Disconnect(playerID string) {
	h.mu.Lock()
	state, playerOK := h.players[playerID]
	sub, subOK := h.subscribers[playerID]
	if playerOK {
		state.entity.Remove()
		delete(h.players, playerID)
	}
	delete(h.subscribers, playerID)
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
}

// UpdateIntent stores the latest movement vector and facing for a player.
func (h *Hub) UpdateIntent(playerID string, dx, dy float64, facing string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return false
	}

	length := math.Hypot(dx, dy)
	if length > 1 {
		dx /= length
		dy /= length
	}

	state.intentX = dx
	state.intentY = dy

	state.Facing = deriveFacing(dx, dy, state.Facing)
	if dx == 0 && dy == 0 {
		if face, ok := parseFacing(facing); ok {
			state.Facing = face
		}
	}

	state.lastInput = time.Now()
	return true
}

// UpdateHeartbeat records the most recent heartbeat time and RTT for a player.
func (h *Hub) UpdateHeartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return 0, false
	}

	state.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}

	return state.lastRTT, true
}

// advance runs a single simulation step and returns updated snapshots plus
// stale subscribers to close.
func (h *Hub) advance(now time.Time, dt float64) ([]Player, []*subscriber) {
	h.mu.Lock()

	toClose := make([]*subscriber, 0)
	for id, state := range h.players {
		if now.Sub(state.lastHeartbeat) > disconnectAfter {
			if sub, ok := h.subscribers[id]; ok {
				toClose = append(toClose, sub)
				delete(h.subscribers, id)
			}
			state.entity.Remove()
			delete(h.players, id)
			log.Printf("disconnecting %s due to heartbeat timeout", id)
			continue
		}

		// Intent is unit-length or shorter; velocity is per step.
		state.entity.SetVelocity(physics.Vec2{
			X: state.intentX * moveSpeed * dt,
			Y: state.intentY * moveSpeed * dt,
		})
	}

	if err := h.world.AdvanceStep(); err != nil {
		h.telemetry.RecordUnsolvedStep()
		logphysics.UnsolvedCollision(context.Background(), h.publisher, h.world.Step(),
			logphysics.UnsolvedCollisionPayload{Step: h.world.Step(), Error: err.Error()})
		log.Printf("step %d aborted: %v", h.world.Step(), err)
	}
	h.telemetry.RecordStep()

	players := h.snapshotLocked()
	h.mu.Unlock()

	return players, toClose
}

// RunSimulation drives the fixed-rate tick loop until the stop channel closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	budget := time.Second / tickRate
	var overrunStreak uint64

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(tickRate)
			}
			last = now

			players, toClose := h.advance(now, dt)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.BroadcastState(players)

			elapsed := time.Since(now)
			h.telemetry.RecordTickDuration(elapsed)
			if elapsed > budget {
				overrunStreak++
				logsim.TickBudgetOverrun(context.Background(), h.publisher, h.world.Step(),
					logsim.TickBudgetOverrunPayload{
						DurationMillis: elapsed.Milliseconds(),
						BudgetMillis:   budget.Milliseconds(),
						Ratio:          float64(elapsed) / float64(budget),
						Streak:         overrunStreak,
					}, nil)
			} else {
				overrunStreak = 0
			}
		}
	}
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]diagnosticsPlayer, 0, len(h.players))
	for _, state := range h.players {
		players = append(players, diagnosticsPlayer{
			Ver:           ProtocolVersion,
			ID:            state.ID,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	return players
}

// TelemetrySnapshot exposes the tick counters for the diagnostics endpoint.
func (h *Hub) TelemetrySnapshot() telemetrySnapshot {
	return h.telemetry.Snapshot()
}

// snapshotLocked copies player state for broadcasting while holding the mutex.
func (h *Hub) snapshotLocked() []Player {
	players := make([]Player, 0, len(h.players))
	for _, state := range h.players {
		players = append(players, state.snapshot())
	}
	return players
}

// tileGridLocked copies the level into row-major tile ids for the join payload.
func (h *Hub) tileGridLocked() [][]int {
	width, height := h.level.GridSize()
	grid := make([][]int, height)
	for y := 0; y < height; y++ {
		row := make([]int, width)
		for x := 0; x < width; x++ {
			row[x] = h.level.TileAt(x, y)
		}
		grid[y] = row
	}
	return grid
}

// MarshalState encodes a state message for the given snapshot. A nil
// snapshot is taken fresh under the lock.
func (h *Hub) MarshalState(players []Player) ([]byte, error) {
	if players == nil {
		h.mu.Lock()
		players = h.snapshotLocked()
		h.mu.Unlock()
	}
	msg := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Players:    players,
		Step:       h.world.Step(),
		ServerTime: time.Now().UnixMilli(),
		Config:     h.cfg,
	}
	return json.Marshal(msg)
}

// BroadcastState sends the latest snapshot to every subscriber. A nil
// snapshot is taken fresh under the lock.
func (h *Hub) BroadcastState(players []Player) {
	if players == nil {
		h.mu.Lock()
		players = h.snapshotLocked()
		h.mu.Unlock()
	}

	data, err := h.MarshalState(players)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}
	h.telemetry.RecordBroadcast(len(data), len(players))

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Disconnect(id)
		}
	}
}

// Close stops the world's detection workers.
func (h *Hub) Close() {
	h.world.Close()
}
