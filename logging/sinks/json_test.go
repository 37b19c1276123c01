package sinks_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gridfall/server/logging"
	"gridfall/server/logging/sinks"
)

func TestJSONSinkWritesNewlineDelimitedEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := sinks.NewJSON(&buf, 0)

	err := sink.Write(logging.Event{
		Type:     "physics.tile_collision",
		Tick:     9,
		Time:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPhysics,
		Actor:    logging.EntityRef{ID: "player-1", Kind: logging.EntityKindPlayer},
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := sink.Write(logging.Event{Type: "simulation.tick_budget_overrun", Tick: 10}); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var wire map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &wire); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if wire["type"] != "physics.tile_collision" {
		t.Fatalf("unexpected type field: %v", wire["type"])
	}
	if tick, ok := wire["tick"].(float64); !ok || tick != 9 {
		t.Fatalf("unexpected tick field: %v", wire["tick"])
	}
	if wire["time"] != "2026-08-01T12:00:00Z" {
		t.Fatalf("unexpected time field: %v", wire["time"])
	}
	actor, ok := wire["actor"].(map[string]any)
	if !ok || actor["id"] != "player-1" {
		t.Fatalf("unexpected actor field: %v", wire["actor"])
	}
}

func TestJSONSinkFlushesOnCloseWhenBatching(t *testing.T) {
	var buf bytes.Buffer
	sink := sinks.NewJSON(&buf, time.Hour)

	if err := sink.Write(logging.Event{Type: "physics.entity_collision", Tick: 1}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !strings.Contains(buf.String(), "physics.entity_collision") {
		t.Fatalf("expected buffered event to flush on close, got %q", buf.String())
	}
}
