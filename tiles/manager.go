package tiles

import (
	"fmt"

	"gridfall/server/internal/physics"
)

// Manager registers tile definitions and resolves their collision behavior.
// Tile id 0 is reserved for the empty tile: nothing renders there and
// nothing collides with it, so registration starts at id 1. A manager must
// be fully populated before levels referencing it start simulating.
type Manager struct {
	tileSize int
	masks    []physics.EdgeMask
	tiles    []int
	names    []string
}

// NewManager creates a tile manager with the given tile edge length in
// world units.
func NewManager(tileSize int) (*Manager, error) {
	if tileSize < 1 {
		return nil, fmt.Errorf("tiles: tile size must be positive, got %d", tileSize)
	}
	return &Manager{tileSize: tileSize}, nil
}

// TileSize returns the edge length of a tile in world units.
func (m *Manager) TileSize() int {
	return m.tileSize
}

// RegisterMask stores an edge mask and returns its index for RegisterTile.
func (m *Manager) RegisterMask(mask physics.EdgeMask) int {
	m.masks = append(m.masks, mask)
	return len(m.masks) - 1
}

// RegisterTile registers a named tile backed by a previously registered
// mask and returns the new tile id.
func (m *Manager) RegisterTile(name string, maskIndex int) (int, error) {
	if maskIndex < 0 || maskIndex >= len(m.masks) {
		return 0, fmt.Errorf("tiles: tile %q references unknown mask %d", name, maskIndex)
	}
	m.tiles = append(m.tiles, maskIndex)
	m.names = append(m.names, name)
	return len(m.tiles), nil
}

// MaskFor resolves the edge mask for a registered tile id. Id 0 is the
// empty tile and is rejected; nothing should ever query it.
func (m *Manager) MaskFor(id int) (physics.EdgeMask, error) {
	if id < 1 || id > len(m.tiles) {
		return physics.EdgeMask{}, fmt.Errorf("tiles: tile id %d is not registered", id)
	}
	return m.masks[m.tiles[id-1]], nil
}

// Name returns the registered name for a tile id, or "" for the empty tile
// and unknown ids.
func (m *Manager) Name(id int) string {
	if id < 1 || id > len(m.names) {
		return ""
	}
	return m.names[id-1]
}

// Count returns the number of registered tiles, the empty tile excluded.
func (m *Manager) Count() int {
	return len(m.tiles)
}
