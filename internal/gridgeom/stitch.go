package gridgeom

// stitch.go - boundary ring extraction by edge cancellation
//
// Neighbouring grid cells share their corner vertices exactly (the corner
// values come from the same coordinate arrays), so an edge interior to the
// domain is contributed by exactly two cell rings and an edge on the domain
// boundary by exactly one. Collecting the once-used directed edges and
// walking them start-to-end yields the boundary rings of the cell union,
// holes included, without any polygon clipping.

import (
	"math"

	"github.com/ctessum/geom"
)

// vertex is a map key for exact coordinate matching.
type vertex struct {
	x, y float64
}

// dirEdge is a directed boundary edge candidate.
type dirEdge struct {
	from, to vertex
}

// undirected returns the canonical key for an edge regardless of direction.
func (e dirEdge) undirected() dirEdge {
	if e.to.x < e.from.x || (e.to.x == e.from.x && e.to.y < e.from.y) {
		return dirEdge{e.to, e.from}
	}
	return e
}

// RingBuilder accumulates cell rings and extracts the boundary rings of
// their union. Input rings must share vertices exactly and wind
// counter-clockwise; the resulting outer rings then wind counter-clockwise
// and hole rings clockwise, with the valid region on the left of every
// directed boundary edge.
type RingBuilder struct {
	count map[dirEdge]int     // undirected edge -> number of uses
	dir   map[dirEdge]dirEdge // undirected edge -> direction of first use
}

// NewRingBuilder creates an empty builder.
func NewRingBuilder() *RingBuilder {
	return &RingBuilder{
		count: make(map[dirEdge]int),
		dir:   make(map[dirEdge]dirEdge),
	}
}

// AddRing records one cell ring (implicit closure).
func (b *RingBuilder) AddRing(ring []geom.Point) {
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		e := dirEdge{vertex{p.X, p.Y}, vertex{q.X, q.Y}}
		if e.from == e.to {
			continue
		}
		key := e.undirected()
		b.count[key]++
		if b.count[key] == 1 {
			b.dir[key] = e
		}
	}
}

// Rings stitches the once-used edges into closed rings and returns them.
// Ring order is deterministic for identical input: walks start from the
// lexicographically smallest unvisited vertex.
func (b *RingBuilder) Rings() [][]geom.Point {
	// Group boundary edges by start vertex.
	next := make(map[vertex][]vertex)
	var starts []vertex
	for key, n := range b.count {
		if n != 1 {
			continue
		}
		e := b.dir[key]
		if len(next[e.from]) == 0 {
			starts = append(starts, e.from)
		}
		next[e.from] = append(next[e.from], e.to)
	}
	sortVertices(starts)
	for _, outs := range next {
		sortVertices(outs)
	}

	var rings [][]geom.Point
	for _, start := range starts {
		for len(next[start]) > 0 {
			ring := walkRing(start, next)
			if len(ring) >= 3 {
				rings = append(rings, ring)
			}
		}
	}
	return rings
}

// walkRing follows boundary edges from start until the walk closes,
// consuming each edge it uses. Where several boundary edges leave the same
// vertex (two parts of the domain touching at a corner), the walk takes the
// sharpest left turn, which keeps it on the boundary of a single wedge.
func walkRing(start vertex, next map[vertex][]vertex) []geom.Point {
	ring := []geom.Point{{X: start.x, Y: start.y}}
	cur := start
	prev := vertex{}
	hasPrev := false
	for {
		outs := next[cur]
		if len(outs) == 0 {
			// Open chain; should not happen for well-formed cell unions.
			return nil
		}
		pick := 0
		if hasPrev && len(outs) > 1 {
			pick = leftmostTurn(prev, cur, outs)
		}
		to := outs[pick]
		next[cur] = append(outs[:pick], outs[pick+1:]...)
		if to == start {
			return ring
		}
		ring = append(ring, geom.Point{X: to.x, Y: to.y})
		prev, cur, hasPrev = cur, to, true
	}
}

// leftmostTurn returns the index of the candidate that turns furthest to
// the left relative to the incoming direction prev->cur.
func leftmostTurn(prev, cur vertex, outs []vertex) int {
	in := math.Atan2(cur.y-prev.y, cur.x-prev.x)
	best, bestTurn := 0, math.Inf(-1)
	for i, out := range outs {
		o := math.Atan2(out.y-cur.y, out.x-cur.x)
		turn := o - in
		for turn <= -math.Pi {
			turn += 2 * math.Pi
		}
		for turn > math.Pi {
			turn -= 2 * math.Pi
		}
		if turn > bestTurn {
			best, bestTurn = i, turn
		}
	}
	return best
}

func sortVertices(vs []vertex) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && less(vs[j], vs[j-1]); j-- {
			vs[j], vs[j-1] = vs[j-1], vs[j]
		}
	}
}

func less(a, b vertex) bool {
	if a.x != b.x {
		return a.x < b.x
	}
	return a.y < b.y
}
