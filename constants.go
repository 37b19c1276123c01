package server

import "time"

const (
	ProtocolVersion   = 1
	writeWait         = 10 * time.Second
	tickRate          = 15    // simulation steps per second
	moveSpeed         = 160.0 // pixels per second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval

	defaultTileSize   = 32
	defaultGridWidth  = 40
	defaultGridHeight = 30

	playerWidth  = 24.0
	playerHeight = 24.0

	playerClassName = "player"
)

// TickRate exposes the step frequency for diagnostics payloads.
func TickRate() int {
	return tickRate
}

// HeartbeatInterval exposes the expected client heartbeat cadence.
func HeartbeatInterval() time.Duration {
	return heartbeatInterval
}
