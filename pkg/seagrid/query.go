package seagrid

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// PointSelection is the result of selecting one point from a batch.
type PointSelection struct {
	Point geom.Point
	Found bool
	Index NativeIndex
}

// SelectPoint returns the native index of the valid cell containing the
// point (x, y). A point on a cell edge counts as contained; a point on an
// edge shared by several cells resolves to the lowest linear index among
// them, which keeps results deterministic but is an implementation choice,
// not a guarantee. The second result is false when no valid cell contains
// the point.
func (g *Grid) SelectPoint(x, y float64) (NativeIndex, bool, error) {
	p := geom.Point{X: x, Y: y}
	if !isFinitePoint(p) {
		return NativeIndex{}, false, fmt.Errorf("seagrid: select point (%v, %v): %w",
			x, y, ErrInvalidGeometry)
	}
	if err := g.ensureIndex(); err != nil {
		return NativeIndex{}, false, err
	}

	cells, err := g.candidateCells(&geom.Bounds{Min: p, Max: p})
	if err != nil {
		return NativeIndex{}, false, err
	}
	sort.Slice(cells, func(i, j int) bool {
		return cells[i].linear < cells[j].linear
	})
	for _, c := range cells {
		if p.Within(c.polygon) != geom.Outside {
			return c.native, true, nil
		}
	}
	return NativeIndex{}, false, nil
}

// SelectPoints runs SelectPoint for every point. All points are validated
// up front, so either every point is processed or none is.
func (g *Grid) SelectPoints(points []geom.Point) ([]PointSelection, error) {
	for i, p := range points {
		if !isFinitePoint(p) {
			return nil, fmt.Errorf("seagrid: select points: point %d (%v, %v): %w",
				i, p.X, p.Y, ErrInvalidGeometry)
		}
	}
	if err := g.ensureIndex(); err != nil {
		return nil, err
	}

	out := make([]PointSelection, len(points))
	for i, p := range points {
		idx, found, err := g.SelectPoint(p.X, p.Y)
		if err != nil {
			return nil, err
		}
		out[i] = PointSelection{Point: p, Found: found, Index: idx}
	}
	return out, nil
}

// SelectNearest returns the valid cell whose centroid lies closest to the
// point (x, y). Search starts from a small box around the point and doubles
// its radius until candidates appear, then widens once more so a nearer
// centroid just outside the last box cannot be missed. Returns
// ErrEmptyDomain when the grid has no valid cells.
func (g *Grid) SelectNearest(x, y float64) (NativeIndex, error) {
	p := geom.Point{X: x, Y: y}
	if !isFinitePoint(p) {
		return NativeIndex{}, fmt.Errorf("seagrid: select nearest (%v, %v): %w",
			x, y, ErrInvalidGeometry)
	}
	if err := g.ensureIndex(); err != nil {
		return NativeIndex{}, err
	}
	if len(g.polygons) == 0 {
		return NativeIndex{}, fmt.Errorf("seagrid: select nearest (%v, %v): %w",
			x, y, ErrEmptyDomain)
	}

	// Seed the search radius from the domain extent so the first box has a
	// realistic chance of holding a neighbour.
	width := g.bounds.Max.X - g.bounds.Min.X
	height := g.bounds.Max.Y - g.bounds.Min.Y
	radius := math.Hypot(width, height) / 32
	if radius < epsilon {
		radius = epsilon
	}

	// The box must eventually cover the whole domain from wherever the
	// query point sits.
	limit := math.Hypot(width, height) +
		math.Hypot(math.Max(math.Abs(x-g.bounds.Min.X), math.Abs(x-g.bounds.Max.X)),
			math.Max(math.Abs(y-g.bounds.Min.Y), math.Abs(y-g.bounds.Max.Y)))

	var cells []*indexedCell
	for {
		var err error
		cells, err = g.candidateCells(radiusBounds(p, radius))
		if err != nil {
			return NativeIndex{}, err
		}
		if len(cells) > 0 || radius > limit {
			break
		}
		radius *= 2
	}

	best, bestDist := nearestByCentroid(g, cells, p)

	// A centroid nearer than the best may hide just outside the box when
	// the best distance exceeds the search radius.
	if best != nil && bestDist > radius {
		cells, err := g.candidateCells(radiusBounds(p, bestDist))
		if err != nil {
			return NativeIndex{}, err
		}
		best, _ = nearestByCentroid(g, cells, p)
	}

	if best == nil {
		// Unreachable with a nonempty domain; keep the failure explicit.
		return NativeIndex{}, fmt.Errorf("seagrid: select nearest (%v, %v): %w",
			x, y, ErrEmptyDomain)
	}
	return best.native, nil
}

// nearestByCentroid scans candidates for the smallest centroid distance,
// breaking ties towards the lowest linear index.
func nearestByCentroid(g *Grid, cells []*indexedCell, p geom.Point) (*indexedCell, float64) {
	var best *indexedCell
	bestDist := math.Inf(1)
	for _, c := range cells {
		centroid := g.centroids[c.position]
		d := math.Hypot(centroid.X-p.X, centroid.Y-p.Y)
		if d < bestDist || (d == bestDist && best != nil && c.linear < best.linear) {
			best = c
			bestDist = d
		}
	}
	return best, bestDist
}

func radiusBounds(p geom.Point, r float64) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: p.X - r, Y: p.Y - r},
		Max: geom.Point{X: p.X + r, Y: p.Y + r},
	}
}

// SelectPolygon returns the native index of every valid cell whose polygon
// intersects clip with positive area, in ascending linear order.
func (g *Grid) SelectPolygon(clip geom.Polygonal) ([]NativeIndex, error) {
	cells, err := g.intersectingCells(clip)
	if err != nil {
		return nil, err
	}
	out := make([]NativeIndex, len(cells))
	for i, c := range cells {
		out[i] = c.native
	}
	return out, nil
}

// intersectingCells returns the cells whose polygon truly intersects clip,
// sorted by polygon-list position. ClipMask and SelectPolygon share it.
func (g *Grid) intersectingCells(clip geom.Polygonal) ([]*indexedCell, error) {
	if err := validateClip(clip); err != nil {
		return nil, err
	}
	if err := g.ensureIndex(); err != nil {
		return nil, err
	}

	candidates, err := g.candidateCells(clip.Bounds())
	if err != nil {
		return nil, err
	}
	var cells []*indexedCell
	for _, c := range candidates {
		isect := c.polygon.Intersection(clip)
		if isect == nil || isect.Area() == 0 {
			continue
		}
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		return cells[i].position < cells[j].position
	})
	return cells, nil
}

// validateClip rejects clip geometries no cell test could make sense of:
// nil, empty, or carrying non-finite vertices.
func validateClip(clip geom.Polygonal) error {
	if clip == nil {
		return fmt.Errorf("seagrid: nil clip geometry: %w", ErrInvalidGeometry)
	}
	vertices := 0
	for _, poly := range clip.Polygons() {
		for _, ring := range poly {
			for _, p := range ring {
				if !isFinitePoint(p) {
					return fmt.Errorf("seagrid: clip vertex (%v, %v): %w",
						p.X, p.Y, ErrInvalidGeometry)
				}
				vertices++
			}
		}
	}
	if vertices == 0 {
		return fmt.Errorf("seagrid: empty clip geometry: %w", ErrInvalidGeometry)
	}
	return nil
}

// candidateCells returns cells whose bounding boxes intersect b, through
// the R-tree when built, by linear scan otherwise.
func (g *Grid) candidateCells(b *geom.Bounds) ([]*indexedCell, error) {
	if g.index != nil {
		return g.index.search(b), nil
	}
	topo := g.topologies[g.source.defaultKind()]
	var out []*indexedCell
	for pos, poly := range g.polygons {
		pb := poly.Bounds()
		if !pb.Overlaps(b) {
			continue
		}
		linear := g.cellLinear[pos]
		native, err := topo.Unravel(linear)
		if err != nil {
			return nil, err
		}
		out = append(out, &indexedCell{
			position: pos,
			linear:   linear,
			native:   native,
			polygon:  poly,
			bounds:   pb,
		})
	}
	return out, nil
}
