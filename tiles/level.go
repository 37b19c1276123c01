package tiles

import (
	"fmt"

	"gridfall/server/internal/physics"
)

// Level is a rectangular tile grid bound to a manager. It satisfies the
// engine's tile source contract; out-of-range lookups resolve to no
// collision rather than an error.
type Level struct {
	manager *Manager
	width   int
	height  int
	cells   []int
}

// NewLevel creates an empty level of the given dimensions in tiles.
func NewLevel(manager *Manager, width, height int) (*Level, error) {
	if manager == nil {
		return nil, fmt.Errorf("tiles: level requires a manager")
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("tiles: level dimensions must be positive, got %dx%d", width, height)
	}
	return &Level{
		manager: manager,
		width:   width,
		height:  height,
		cells:   make([]int, width*height),
	}, nil
}

// Set places a tile id at a cell. The id must be 0 (empty) or registered
// with the manager; the level never holds ids the manager cannot resolve.
func (l *Level) Set(x, y, id int) error {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return fmt.Errorf("tiles: cell (%d, %d) outside %dx%d level", x, y, l.width, l.height)
	}
	if id != 0 {
		if _, err := l.manager.MaskFor(id); err != nil {
			return err
		}
	}
	l.cells[y*l.width+x] = id
	return nil
}

// Fill sets every cell in the given tile rectangle to one id.
func (l *Level) Fill(x0, y0, x1, y1, id int) error {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if err := l.Set(x, y, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// TileAt returns the tile id at a cell, or physics.NoTile outside the grid.
func (l *Level) TileAt(x, y int) int {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return physics.NoTile
	}
	return l.cells[y*l.width+x]
}

// EdgeMask resolves the collision mask for a tile id. Ids that slipped past
// registration resolve to a fully open mask.
func (l *Level) EdgeMask(id int) physics.EdgeMask {
	mask, err := l.manager.MaskFor(id)
	if err != nil {
		return physics.EdgeMask{}
	}
	return mask
}

// TileSize returns the manager's tile edge length.
func (l *Level) TileSize() int {
	return l.manager.TileSize()
}

// GridSize returns the level dimensions in tiles.
func (l *Level) GridSize() (int, int) {
	return l.width, l.height
}
