package server

import (
	"testing"
	"time"

	"gridfall/server/internal/telemetry"
	"gridfall/server/logging"
)

func TestTelemetryCountersSnapshot(t *testing.T) {
	counters := newTelemetryCounters(nil)

	counters.RecordStep()
	counters.RecordStep()
	counters.RecordEntityCollision()
	counters.RecordTileCollision()
	counters.RecordTileCollision()
	counters.RecordUnsolvedStep()
	counters.RecordBroadcast(128, 3)
	counters.RecordBroadcast(64, 2)
	counters.RecordTickDuration(7 * time.Millisecond)

	snap := counters.Snapshot()
	if snap.StepsTotal != 2 {
		t.Fatalf("expected 2 steps, got %d", snap.StepsTotal)
	}
	if snap.EntityCollisions != 1 || snap.TileCollisions != 2 {
		t.Fatalf("unexpected collision counts: %+v", snap)
	}
	if snap.UnsolvedSteps != 1 {
		t.Fatalf("expected 1 unsolved step, got %d", snap.UnsolvedSteps)
	}
	if snap.BytesSent != 192 || snap.PlayersSent != 5 {
		t.Fatalf("unexpected broadcast totals: %+v", snap)
	}
	if snap.TickDuration != 7 {
		t.Fatalf("expected tick duration 7ms, got %d", snap.TickDuration)
	}
}

func TestTelemetryCountersClampNegativeBroadcast(t *testing.T) {
	counters := newTelemetryCounters(nil)
	counters.RecordBroadcast(-10, -2)
	counters.RecordTickDuration(-time.Second)

	snap := counters.Snapshot()
	if snap.BytesSent != 0 || snap.PlayersSent != 0 || snap.TickDuration != 0 {
		t.Fatalf("expected clamped counters, got %+v", snap)
	}
}

func TestTelemetryCountersMirrorMetrics(t *testing.T) {
	store := &logging.Metrics{}
	counters := newTelemetryCounters(telemetry.WrapMetrics(store))

	counters.RecordStep()
	counters.RecordEntityCollision()
	counters.RecordTileCollision()
	counters.RecordUnsolvedStep()
	counters.RecordBroadcast(128, 3)
	counters.RecordTickDuration(7 * time.Millisecond)

	mirrored := store.Snapshot()
	want := map[string]uint64{
		"steps_total":          1,
		"entity_collisions":    1,
		"tile_collisions":      1,
		"unsolved_steps":       1,
		"broadcast_bytes":      128,
		"broadcast_players":    3,
		"tick_duration_millis": 7,
	}
	for key, value := range want {
		if mirrored[key] != value {
			t.Fatalf("mirrored %s = %d, want %d", key, mirrored[key], value)
		}
	}
}
