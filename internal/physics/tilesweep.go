package physics

import "math"

// tileHit is the result of sweeping a snapshot against the tile grid.
type tileHit struct {
	toi       float64
	tile      int
	x, y      int
	direction Direction
}

var noTileHit = tileHit{toi: 1, tile: NoTile, x: -1, y: -1, direction: DirectionNone}

type cell struct {
	x, y int
}

func floorInt(v float64) int {
	return int(math.Floor(v))
}

func divFloor(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func modFloor(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// sweepTiles finds the first collidable tile edge crossed by the snapshot
// during the remainder of the step. The returned time of impact is
// absolute within the step. No hit yields noTileHit.
func sweepTiles(src TileSource, s *snapshot) tileHit {
	tileSize := src.TileSize()
	speed := s.velocity
	localTime := s.localTime
	remaining := 1 - localTime

	preMin := cell{floorInt(s.box.Pos.X), floorInt(s.box.Pos.Y)}
	preMax := cell{
		floorInt(s.box.Pos.X + s.box.Bounds.X),
		floorInt(s.box.Pos.Y + s.box.Bounds.Y),
	}
	postMin := cell{
		floorInt(float64(preMin.x) + speed.X*remaining),
		floorInt(float64(preMin.y) + speed.Y*remaining),
	}
	postMax := cell{
		floorInt(float64(preMax.x) + speed.X*remaining),
		floorInt(float64(preMax.y) + speed.Y*remaining),
	}

	preMinTile := cell{divFloor(preMin.x, tileSize), divFloor(preMin.y, tileSize)}
	preMaxTile := cell{divFloor(preMax.x, tileSize), divFloor(preMax.y, tileSize)}
	postMinTile := cell{divFloor(postMin.x, tileSize), divFloor(postMin.y, tileSize)}
	postMaxTile := cell{divFloor(postMax.x, tileSize), divFloor(postMax.y, tileSize)}

	// A max corner sitting exactly on a tile boundary occupies the lower
	// tile, not the one it merely touches.
	if modFloor(preMax.x, tileSize) == 0 {
		preMaxTile.x--
	}
	if modFloor(preMax.y, tileSize) == 0 {
		preMaxTile.y--
	}
	if modFloor(postMax.x, tileSize) == 0 {
		postMaxTile.x--
	}
	if modFloor(postMax.y, tileSize) == 0 {
		postMaxTile.y--
	}

	if preMinTile == postMinTile && preMaxTile == postMaxTile {
		return noTileHit
	}

	if postMinTile.y == preMinTile.y && postMaxTile.y == preMaxTile.y {
		// Purely horizontal tile crossing: scan the entered columns in
		// travel order and take the first collidable facing edge.
		if postMaxTile.x > preMaxTile.x {
			for x := preMaxTile.x + 1; x <= postMaxTile.x; x++ {
				for y := preMinTile.y; y <= preMaxTile.y; y++ {
					tile := src.TileAt(x, y)
					if tile > 0 && src.EdgeMask(tile).West {
						toi := (float64(x*tileSize-preMax.x))/speed.X + localTime
						return tileHit{toi: toi, tile: tile, x: x, y: y, direction: DirectionEast}
					}
				}
			}
			return noTileHit
		}
		if postMinTile.x < preMinTile.x {
			for x := preMinTile.x - 1; x >= postMinTile.x; x-- {
				for y := preMinTile.y; y <= preMaxTile.y; y++ {
					tile := src.TileAt(x, y)
					if tile > 0 && src.EdgeMask(tile).East {
						toi := (float64((x+1)*tileSize-preMin.x))/speed.X + localTime
						return tileHit{toi: toi, tile: tile, x: x, y: y, direction: DirectionWest}
					}
				}
			}
			return noTileHit
		}
	} else if postMinTile.x == preMinTile.x && postMaxTile.x == preMaxTile.x {
		if postMaxTile.y > preMaxTile.y {
			for y := preMaxTile.y + 1; y <= postMaxTile.y; y++ {
				for x := preMinTile.x; x <= preMaxTile.x; x++ {
					tile := src.TileAt(x, y)
					if tile > 0 && src.EdgeMask(tile).South {
						toi := (float64(y*tileSize-preMax.y))/speed.Y + localTime
						return tileHit{toi: toi, tile: tile, x: x, y: y, direction: DirectionNorth}
					}
				}
			}
			return noTileHit
		}
		if postMinTile.y < preMinTile.y {
			for y := preMinTile.y - 1; y >= postMinTile.y; y-- {
				for x := preMinTile.x; x <= preMaxTile.x; x++ {
					tile := src.TileAt(x, y)
					if tile > 0 && src.EdgeMask(tile).North {
						toi := (float64((y+1)*tileSize-preMin.y))/speed.Y + localTime
						return tileHit{toi: toi, tile: tile, x: x, y: y, direction: DirectionSouth}
					}
				}
			}
			return noTileHit
		}
	}

	return sweepTilesDiagonal(src, s, diagonalSweep{
		preMin: preMin, preMax: preMax,
		postMin: postMin, postMax: postMax,
		preMinTile: preMinTile, preMaxTile: preMaxTile,
		postMinTile: postMinTile, postMaxTile: postMaxTile,
	})
}

type diagonalSweep struct {
	preMin, preMax         cell
	postMin, postMax       cell
	preMinTile, preMaxTile cell
	postMinTile            cell
	postMaxTile            cell
}

// sweepTilesDiagonal handles motion that crosses tile boundaries on both
// axes. The swept area is the hexagon traced by the box; candidate cells
// are rasterized with a point-in-polygon test so a fast box cannot tunnel
// through a tile corner, then scanned in travel order.
//
// Tie-break policy: the first hit found in scan order wins as soon as both
// axes have produced one, because later-scanned cells cannot cross the
// already-bound leading edge any earlier.
func sweepTilesDiagonal(src TileSource, s *snapshot, d diagonalSweep) tileHit {
	tileSize := src.TileSize()
	speed := s.velocity
	localTime := s.localTime

	vertices := sweptHexagon(speed, d)

	minTile := cell{minInt(d.preMinTile.x, d.postMinTile.x), minInt(d.preMinTile.y, d.postMinTile.y)}
	maxTile := cell{maxInt(d.preMaxTile.x, d.postMaxTile.x), maxInt(d.preMaxTile.y, d.postMaxTile.y)}

	raster := rasterizeSweep(vertices, minTile, maxTile, tileSize, s.box.Bounds)

	bestTime := 1 - localTime
	best := noTileHit
	foundX := false
	foundY := false

	// Impact-time formulas and edge selection depend only on the sign of
	// each velocity component: the leading face of the box meets the
	// facing edge of the tile.
	timeX := func(x int) float64 {
		if speed.X > 0 {
			return float64(x*tileSize-d.preMax.x) / speed.X
		}
		return float64((x+1)*tileSize-d.preMin.x) / speed.X
	}
	timeY := func(y int) float64 {
		if speed.Y > 0 {
			return float64(y*tileSize-d.preMax.y) / speed.Y
		}
		return float64((y+1)*tileSize-d.preMin.y) / speed.Y
	}
	edgeX := func(mask EdgeMask) (bool, Direction) {
		if speed.X > 0 {
			return mask.West, DirectionEast
		}
		return mask.East, DirectionWest
	}
	edgeY := func(mask EdgeMask) (bool, Direction) {
		if speed.Y > 0 {
			return mask.South, DirectionNorth
		}
		return mask.North, DirectionSouth
	}

	xStart, xEnd, xStep := scanRange(speed.X, d.preMinTile.x, d.preMaxTile.x, d.postMinTile.x, d.postMaxTile.x)
	yStart, yEnd, yStep := scanRange(speed.Y, d.preMinTile.y, d.preMaxTile.y, d.postMinTile.y, d.postMaxTile.y)

	for x := xStart; x != xEnd+xStep; x += xStep {
		for y := yStart; y != yEnd+yStep; y += yStep {
			if x >= d.preMinTile.x && x <= d.preMaxTile.x && y >= d.preMinTile.y && y <= d.preMaxTile.y {
				continue
			}
			if !raster[x-minTile.x][y-minTile.y] {
				continue
			}
			tile := src.TileAt(x, y)
			if tile <= 0 {
				continue
			}
			mask := src.EdgeMask(tile)
			tx := timeX(x)
			ty := timeY(y)
			if tx >= ty {
				collidable, direction := edgeX(mask)
				if collidable && tx < bestTime {
					bestTime = tx
					if foundY {
						return tileHit{toi: tx + localTime, tile: tile, x: x, y: y, direction: direction}
					}
					best = tileHit{toi: tx + localTime, tile: tile, x: x, y: y, direction: direction}
					foundX = true
				}
			} else {
				collidable, direction := edgeY(mask)
				if collidable && ty < bestTime {
					bestTime = ty
					if foundX {
						return tileHit{toi: ty + localTime, tile: tile, x: x, y: y, direction: direction}
					}
					best = tileHit{toi: ty + localTime, tile: tile, x: x, y: y, direction: direction}
					foundY = true
				}
			}
		}
	}

	if foundX || foundY {
		return best
	}
	return noTileHit
}

// sweptHexagon returns the six vertices of the area swept by the box,
// ordered per velocity quadrant so the polygon winds consistently.
func sweptHexagon(speed Vec2, d diagonalSweep) []cell {
	if speed.X > 0 {
		if speed.Y > 0 {
			return []cell{
				{d.preMin.x, d.preMin.y}, {d.preMax.x + 1, d.preMin.y},
				{d.postMax.x + 1, d.postMin.y}, {d.postMax.x + 1, d.postMax.y + 1},
				{d.postMin.x, d.postMax.y + 1}, {d.preMin.x, d.preMax.y + 1},
			}
		}
		return []cell{
			{d.preMin.x, d.preMax.y + 1}, {d.preMin.x, d.preMin.y},
			{d.postMin.x, d.postMin.y}, {d.postMax.x + 1, d.postMin.y},
			{d.postMax.x + 1, d.postMax.y + 1}, {d.preMax.x + 1, d.preMax.y + 1},
		}
	}
	if speed.Y > 0 {
		return []cell{
			{d.preMax.x + 1, d.preMin.y}, {d.preMax.x + 1, d.preMax.y + 1},
			{d.postMax.x + 1, d.postMax.y + 1}, {d.postMin.x, d.postMax.y + 1},
			{d.postMin.x, d.postMin.y}, {d.preMin.x, d.preMin.y},
		}
	}
	return []cell{
		{d.preMax.x + 1, d.preMax.y + 1}, {d.preMin.x, d.preMax.y + 1},
		{d.postMin.x, d.postMax.y + 1}, {d.postMin.x, d.postMin.y},
		{d.postMax.x + 1, d.postMin.y}, {d.preMax.x + 1, d.preMin.y},
	}
}

// rasterizeSweep marks every tile cell touched by the swept hexagon. Cell
// edges are sampled at box-sized intervals so no candidate narrower than
// the box slips between sample points.
func rasterizeSweep(vertices []cell, minTile, maxTile cell, tileSize int, bounds Vec2) [][]bool {
	width := maxTile.x - minTile.x + 1
	height := maxTile.y - minTile.y + 1
	raster := make([][]bool, width)
	for i := range raster {
		raster[i] = make([]bool, height)
	}

	offsetsX := sampleOffsets(tileSize, int(bounds.X))
	offsetsY := sampleOffsets(tileSize, int(bounds.Y))

	for xTile := 0; xTile < width; xTile++ {
		for yTile := 0; yTile < height; yTile++ {
			x := (xTile + minTile.x) * tileSize
			y := (yTile + minTile.y) * tileSize

			marked := false
			for _, offset := range offsetsX {
				if innerPolygonTest(vertices, x+offset, y) ||
					innerPolygonTest(vertices, x+offset, y+tileSize) {
					raster[xTile][yTile] = true
					marked = true
					break
				}
			}
			if marked {
				continue
			}
			for _, offset := range offsetsY {
				if innerPolygonTest(vertices, x+tileSize, y+offset) ||
					innerPolygonTest(vertices, x, y+offset) {
					raster[xTile][yTile] = true
					break
				}
			}
		}
	}
	return raster
}

func sampleOffsets(tileSize, step int) []int {
	if step <= 0 {
		step = 1
	}
	offsets := make([]int, 0, tileSize/step+1)
	for offset := 0; offset < tileSize; offset += step {
		offsets = append(offsets, offset)
	}
	if offsets[len(offsets)-1] != tileSize-1 {
		offsets = append(offsets, tileSize-1)
	}
	return offsets
}

// innerPolygonTest is a crossing-number test run twice: once for the point
// itself and once mirrored against the opposite cell corner, so a cell is
// also caught when only its far corner dips into the polygon.
func innerPolygonTest(vertices []cell, x, y int) bool {
	validPositive := false
	validNegative := false

	for i := 0; i < len(vertices); i++ {
		cur := vertices[i]
		prev := vertices[(i+len(vertices)-1)%len(vertices)]

		if (cur.y > y) != (prev.y > y) {
			crossing := float64(cur.x) + float64(prev.x-cur.x)*float64(y-cur.y)/float64(prev.y-cur.y)
			if float64(x) < crossing {
				validPositive = !validPositive
			}
		}
		if (cur.y < y+1) != (prev.y < y+1) {
			crossing := float64(-cur.x) + float64(cur.x-prev.x)*float64(-y-1+cur.y)/float64(cur.y-prev.y)
			if float64(-x-1) < crossing {
				validNegative = !validNegative
			}
		}
	}
	return validPositive || validNegative
}

func scanRange(speed float64, preMin, preMax, postMin, postMax int) (start, end, step int) {
	if speed > 0 {
		return preMin, postMax, 1
	}
	return preMax, postMin, -1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
