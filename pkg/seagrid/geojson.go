package seagrid

import (
	"encoding/json"
	"io"

	"github.com/ctessum/geom"
	geojson "github.com/paulmach/go.geojson"
)

// ToGeoJSON exports one Feature per valid cell. Each feature carries the
// cell outline as an explicitly closed polygon ring and two properties:
// "linear_index", the cell's linear index, and "index", the native index as
// kind followed by coordinates.
func ToGeoJSON(g *Grid) (*geojson.FeatureCollection, error) {
	polygons, err := g.Polygons()
	if err != nil {
		return nil, err
	}
	cellIndexes, err := g.CellIndexes()
	if err != nil {
		return nil, err
	}
	topo, err := g.Topology(g.DefaultKind())
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for pos, poly := range polygons {
		linear := cellIndexes[pos]
		native, err := topo.Unravel(linear)
		if err != nil {
			return nil, err
		}

		coords := make([][][]float64, len(poly))
		for r, ring := range poly {
			coords[r] = closedRing(ring)
		}
		feature := geojson.NewPolygonFeature(coords)
		feature.SetProperty("linear_index", linear)

		index := make([]interface{}, 0, 1+len(native.Coords))
		index = append(index, string(native.Kind))
		for _, c := range native.Coords {
			index = append(index, c)
		}
		feature.SetProperty("index", index)

		fc.AddFeature(feature)
	}
	return fc, nil
}

// WriteGeoJSON writes the ToGeoJSON feature collection to w.
func WriteGeoJSON(g *Grid, w io.Writer) error {
	fc, err := ToGeoJSON(g)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(fc)
}

// BoundaryGeoJSON exports the domain boundary as one MultiLineString
// feature, one closed line per boundary ring. A grid with no valid cells
// exports an empty MultiLineString.
func BoundaryGeoJSON(g *Grid) (*geojson.Feature, error) {
	rings, err := g.Boundary()
	if err != nil {
		return nil, err
	}
	lines := make([][][]float64, len(rings))
	for i, ring := range rings {
		lines[i] = closedRing(ring)
	}
	return geojson.NewMultiLineStringFeature(lines...), nil
}

// closedRing converts a ring to GeoJSON coordinates with the first vertex
// repeated at the end.
func closedRing(ring []geom.Point) [][]float64 {
	coords := make([][]float64, 0, len(ring)+1)
	for _, p := range ring {
		coords = append(coords, []float64{p.X, p.Y})
	}
	if len(ring) > 0 {
		coords = append(coords, []float64{ring[0].X, ring[0].Y})
	}
	return coords
}
