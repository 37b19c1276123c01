package server

// WorldConfig captures the knobs used when building a world. It is echoed
// back to clients in join and state messages so they can size the grid.
type WorldConfig struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	TileSize int  `json:"tileSize"`
	SafeMode bool `json:"safeMode"`
	Workers  int  `json:"-"`
}

// Normalized returns a config with defaults applied.
func (cfg WorldConfig) Normalized() WorldConfig {
	normalized := cfg
	if normalized.Width < 1 {
		normalized.Width = defaultGridWidth
	}
	if normalized.Height < 1 {
		normalized.Height = defaultGridHeight
	}
	if normalized.TileSize < 1 {
		normalized.TileSize = defaultTileSize
	}
	if normalized.Workers < 1 {
		normalized.Workers = 4
	}
	return normalized
}

// DefaultWorldConfig returns the configuration used when nothing overrides it.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Width:    defaultGridWidth,
		Height:   defaultGridHeight,
		TileSize: defaultTileSize,
		SafeMode: false,
		Workers:  4,
	}
}
