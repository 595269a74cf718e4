package seagrid

import (
	"github.com/ctessum/geom"
	"github.com/dhconnelly/rtreego"
)

// epsilon pads degenerate extents so the R-tree always stores boxes with
// positive area (~11 metres at the equator for geographic coordinates).
const epsilon = 0.0001

// spatialIndex provides O(log n) cell lookup using an R-tree.
// Dramatically faster than a linear scan over the polygon list.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedCell wraps one valid cell for R-tree storage.
type indexedCell struct {
	position int // position in the compacted polygon list
	linear   int // linear index within the default kind
	native   NativeIndex
	polygon  geom.Polygon
	bounds   *geom.Bounds
}

// Bounds implements the rtreego.Spatial interface.
func (c *indexedCell) Bounds() rtreego.Rect {
	point := rtreego.Point{c.bounds.Min.X, c.bounds.Min.Y}

	xLength := c.bounds.Max.X - c.bounds.Min.X
	yLength := c.bounds.Max.Y - c.bounds.Min.Y
	if xLength < epsilon {
		xLength = epsilon
	}
	if yLength < epsilon {
		yLength = epsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{xLength, yLength})
	return rect
}

// newSpatialIndex builds an R-tree over the given cells.
// 2D with 25..50 children per node works well for typical grids.
func newSpatialIndex(cells []*indexedCell) *spatialIndex {
	rtree := rtreego.NewTree(2, 25, 50)
	for _, c := range cells {
		rtree.Insert(c)
	}
	return &spatialIndex{rtree: rtree}
}

// search returns the cells whose bounding boxes intersect the query box.
// Degenerate query boxes (points, vertical or horizontal lines) are padded
// to positive extent.
func (s *spatialIndex) search(b *geom.Bounds) []*indexedCell {
	point := rtreego.Point{b.Min.X, b.Min.Y}

	xLength := b.Max.X - b.Min.X
	yLength := b.Max.Y - b.Min.Y
	if xLength < epsilon {
		xLength = epsilon
	}
	if yLength < epsilon {
		yLength = epsilon
	}

	queryRect, _ := rtreego.NewRect(point, []float64{xLength, yLength})
	spatials := s.rtree.SearchIntersect(queryRect)

	result := make([]*indexedCell, 0, len(spatials))
	for _, spatial := range spatials {
		result = append(result, spatial.(*indexedCell))
	}
	return result
}
