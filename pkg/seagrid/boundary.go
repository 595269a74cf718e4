package seagrid

import (
	"github.com/ctessum/geom"
	"github.com/seagrid/seagrid/internal/gridgeom"
)

// Boundary returns the rings outlining the union of all valid cells. Every
// edge used by exactly one valid cell is a boundary edge; stitching those
// edges yields the outline. Outer rings wind counter-clockwise and holes
// clockwise, each closed implicitly. Disconnected regions and holes produce
// multiple rings. A grid with no valid cells returns no rings and no error.
//
// Cells must share vertices exactly for edges to cancel; all bundled
// conventions guarantee that, since neighbouring cells read their shared
// corners from the same arrays.
func (g *Grid) Boundary() ([][]geom.Point, error) {
	if err := g.ensurePolygons(); err != nil {
		return nil, err
	}
	if len(g.polygons) == 0 {
		return nil, nil
	}
	builder := gridgeom.NewRingBuilder()
	for _, poly := range g.polygons {
		builder.AddRing(poly[0])
	}
	return builder.Rings(), nil
}
