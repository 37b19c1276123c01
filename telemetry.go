package server

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gridfall/server/internal/telemetry"
)

type telemetryCounters struct {
	stepsTotal           atomic.Uint64
	entityCollisions     atomic.Uint64
	tileCollisions       atomic.Uint64
	unsolvedSteps        atomic.Uint64
	bytesSent            atomic.Uint64
	playersSent          atomic.Uint64
	tickDurationMillis   atomic.Int64
	lastBroadcastBytes   atomic.Uint64
	lastBroadcastPlayers atomic.Uint64
	metrics              telemetry.Metrics
	debug                bool
}

type telemetrySnapshot struct {
	StepsTotal       uint64 `json:"stepsTotal"`
	EntityCollisions uint64 `json:"entityCollisions"`
	TileCollisions   uint64 `json:"tileCollisions"`
	UnsolvedSteps    uint64 `json:"unsolvedSteps"`
	BytesSent        uint64 `json:"bytesSent"`
	PlayersSent      uint64 `json:"playersSent"`
	TickDuration     int64  `json:"tickDurationMillis"`
}

// newTelemetryCounters builds the tick counters. A non-nil metrics sink
// receives a mirror of every update under stable keys so operators can read
// the same numbers from the logging pipeline.
func newTelemetryCounters(metrics telemetry.Metrics) *telemetryCounters {
	t := &telemetryCounters{metrics: metrics}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordStep() {
	t.stepsTotal.Add(1)
	if t.metrics != nil {
		t.metrics.Add("steps_total", 1)
	}
}

func (t *telemetryCounters) RecordEntityCollision() {
	t.entityCollisions.Add(1)
	if t.metrics != nil {
		t.metrics.Add("entity_collisions", 1)
	}
}

func (t *telemetryCounters) RecordTileCollision() {
	t.tileCollisions.Add(1)
	if t.metrics != nil {
		t.metrics.Add("tile_collisions", 1)
	}
}

func (t *telemetryCounters) RecordUnsolvedStep() {
	t.unsolvedSteps.Add(1)
	if t.metrics != nil {
		t.metrics.Add("unsolved_steps", 1)
	}
}

func (t *telemetryCounters) RecordBroadcast(bytes, players int) {
	if bytes < 0 {
		bytes = 0
	}
	if players < 0 {
		players = 0
	}
	t.bytesSent.Add(uint64(bytes))
	t.playersSent.Add(uint64(players))
	t.lastBroadcastBytes.Store(uint64(bytes))
	t.lastBroadcastPlayers.Store(uint64(players))
	if t.metrics != nil {
		t.metrics.Add("broadcast_bytes", uint64(bytes))
		t.metrics.Add("broadcast_players", uint64(players))
	}
}

func (t *telemetryCounters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.tickDurationMillis.Store(millis)
	if t.metrics != nil {
		t.metrics.Store("tick_duration_millis", uint64(millis))
	}
	if t.debug {
		fmt.Printf(
			"[telemetry] tick=%dms steps=%d bytes=%d totalBytes=%d players=%d\n",
			millis,
			t.stepsTotal.Load(),
			t.lastBroadcastBytes.Load(),
			t.bytesSent.Load(),
			t.lastBroadcastPlayers.Load(),
		)
	}
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		StepsTotal:       t.stepsTotal.Load(),
		EntityCollisions: t.entityCollisions.Load(),
		TileCollisions:   t.tileCollisions.Load(),
		UnsolvedSteps:    t.unsolvedSteps.Load(),
		BytesSent:        t.bytesSent.Load(),
		PlayersSent:      t.playersSent.Load(),
		TickDuration:     t.tickDurationMillis.Load(),
	}
}
