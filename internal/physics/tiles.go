package physics

// NoTile is returned by TileAt for coordinates outside the grid. Lookups
// out of range are not errors; they resolve to "no collision".
const NoTile = -1

// EdgeMask describes which edges of a tile are collidable. Collision is
// per edge, not per cell, so a box may pass through a tile via a
// non-collidable edge.
type EdgeMask struct {
	North bool `json:"north"`
	East  bool `json:"east"`
	South bool `json:"south"`
	West  bool `json:"west"`
}

// TileSource is the external tile collaborator consumed by the engine.
// Tile id 0 means no collision.
type TileSource interface {
	// TileAt returns the tile id at the given cell, or NoTile when the
	// cell lies outside the grid.
	TileAt(x, y int) int
	// EdgeMask returns the collision behavior registered for a tile id.
	EdgeMask(id int) EdgeMask
	// TileSize returns the edge length of a tile in world units.
	TileSize() int
}
