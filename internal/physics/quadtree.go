package physics

import "math"

const (
	defaultNodeCapacity = 32
	defaultMaxDepth     = 5
)

// quadtree partitions the round's swept snapshots for broad-phase candidate
// queries. Items whose expanded box straddles a split line are inserted
// into every quadrant they overlap (or kept at the node when they cover the
// split center), so queries deduplicate by snapshot index.
type quadtree struct {
	bounds   AABB
	center   Vec2
	capacity int
	depth    int
	items    []*snapshot
	children [4]*quadtree
}

// Child order matches the split layout: 0=low/low, 1=low-x/high-y,
// 2=high/high, 3=high-x/low-y.

func newQuadtree(bounds AABB, capacity, maxDepth int) *quadtree {
	return &quadtree{
		bounds:   bounds,
		center:   bounds.Center(),
		capacity: capacity,
		depth:    maxDepth,
	}
}

func (q *quadtree) insert(item *snapshot) {
	if q.children[0] == nil {
		q.items = append(q.items, item)
		if len(q.items) > q.capacity && q.depth > 0 {
			q.split()
		}
		return
	}
	q.insertIntoChildren(item)
}

// split divides the node into four quadrants using floor/ceil halves so odd
// integral extents stay exactly covered, then redistributes the items.
func (q *quadtree) split() {
	widthLow := math.Floor(q.bounds.Bounds.X / 2)
	widthHigh := q.bounds.Bounds.X - widthLow
	heightLow := math.Floor(q.bounds.Bounds.Y / 2)
	heightHigh := q.bounds.Bounds.Y - heightLow

	x := q.bounds.Pos.X
	y := q.bounds.Pos.Y

	q.children[0] = newQuadtree(NewAABB(x, y, widthLow, heightLow), q.capacity, q.depth-1)
	q.children[1] = newQuadtree(NewAABB(x, y+heightLow, widthLow, heightHigh), q.capacity, q.depth-1)
	q.children[2] = newQuadtree(NewAABB(x+widthLow, y+heightLow, widthHigh, heightHigh), q.capacity, q.depth-1)
	q.children[3] = newQuadtree(NewAABB(x+widthLow, y, widthHigh, heightLow), q.capacity, q.depth-1)

	items := q.items
	q.items = nil
	for _, item := range items {
		q.insertIntoChildren(item)
	}
}

func (q *quadtree) insertIntoChildren(item *snapshot) {
	box := item.expanded
	if box.ContainsPoint(q.center) {
		// The item covers the split center; no single quadrant owns it.
		q.items = append(q.items, item)
		return
	}
	if box.Pos.X <= q.center.X {
		if box.Pos.Y <= q.center.Y {
			q.children[0].insert(item)
		}
		if box.Pos.Y+box.Bounds.Y >= q.center.Y {
			q.children[1].insert(item)
		}
	}
	if box.Pos.X+box.Bounds.X > q.center.X {
		if box.Pos.Y <= q.center.Y {
			q.children[3].insert(item)
		}
		if box.Pos.Y+box.Bounds.Y >= q.center.Y {
			q.children[2].insert(item)
		}
	}
}

// intersect collects every snapshot whose expanded box overlaps the query
// box, deduplicated by snapshot index.
func (q *quadtree) intersect(query AABB) []*snapshot {
	results := make([]*snapshot, 0, q.capacity)
	seen := make(map[int]struct{}, q.capacity)
	q.collect(query, &results, seen)
	return results
}

func (q *quadtree) collect(query AABB, results *[]*snapshot, seen map[int]struct{}) {
	if q.children[0] != nil {
		if query.Pos.X <= q.center.X {
			if query.Pos.Y <= q.center.Y {
				q.children[0].collect(query, results, seen)
			}
			if query.Pos.Y+query.Bounds.Y >= q.center.Y {
				q.children[1].collect(query, results, seen)
			}
		}
		if query.Pos.X+query.Bounds.X >= q.center.X {
			if query.Pos.Y <= q.center.Y {
				q.children[3].collect(query, results, seen)
			}
			if query.Pos.Y+query.Bounds.Y >= q.center.Y {
				q.children[2].collect(query, results, seen)
			}
		}
	}
	for _, item := range q.items {
		if _, dup := seen[item.index]; dup {
			continue
		}
		if query.Intersects(item.expanded) {
			*results = append(*results, item)
			seen[item.index] = struct{}{}
		}
	}
}
