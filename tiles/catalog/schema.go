package catalog

// EdgesDocument mirrors the per-edge collision flags of a tile as authored
// in JSON. Absent edges default to open.
type EdgesDocument struct {
	North bool `json:"north,omitempty" jsonschema:"description=Collide with the top edge of the tile."`
	East  bool `json:"east,omitempty" jsonschema:"description=Collide with the right edge of the tile."`
	South bool `json:"south,omitempty" jsonschema:"description=Collide with the bottom edge of the tile."`
	West  bool `json:"west,omitempty" jsonschema:"description=Collide with the left edge of the tile."`
}

// EntryDocument represents a single tile definition as it appears on disk.
// The struct is exported so tooling (the schema generator in cmd/schema)
// can reflect over the configuration contract shared with level designers.
type EntryDocument struct {
	Name  string        `json:"name" jsonschema:"title=Tile Name,description=Designer-facing identifier for the tile.,pattern=^[a-z0-9-]+$,minLength=1,required"`
	Edges EdgesDocument `json:"edges" jsonschema:"title=Collision Edges,description=Which edges of the tile stop a moving box."`
}

// FileDefinitions is the canonical on-disk format: an ordered array of tile
// definitions. Order matters, it fixes the tile ids starting at 1.
type FileDefinitions []EntryDocument
