package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/ctessum/sparse"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// buildDataset assembles an 8x10 curvilinear grid with a dry island in the
// middle, so the boundary export shows an outer ring and a hole.
func buildDataset() (*seagrid.Dataset, error) {
	nj, ni := 8, 10
	ds := seagrid.NewDataset()

	lat := sparse.ZerosDense(nj, ni)
	lon := sparse.ZerosDense(nj, ni)
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			y := -39.0 + 0.1*float64(j)
			x := 152.0 + 0.1*float64(i)
			if j >= 3 && j <= 4 && i >= 4 && i <= 6 {
				// Dry cells carry no coordinates
				y, x = math.NaN(), math.NaN()
			}
			lat.Set(y, j, i)
			lon.Set(x, j, i)
		}
	}
	latVar := seagrid.NewVariable("lat", []string{"j", "i"}, lat)
	latVar.Attrs["standard_name"] = "latitude"
	lonVar := seagrid.NewVariable("lon", []string{"j", "i"}, lon)
	lonVar.Attrs["standard_name"] = "longitude"

	if err := ds.AddVariable(latVar); err != nil {
		return nil, err
	}
	return ds, ds.AddVariable(lonVar)
}

func main() {
	ds, err := buildDataset()
	if err != nil {
		log.Fatal(err)
	}
	grid, err := seagrid.Bind(ds, nil)
	if err != nil {
		log.Fatal(err)
	}

	// Trace the domain boundary: outer rings counter-clockwise, holes
	// clockwise
	rings, err := grid.Boundary()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Boundary rings: %d\n", len(rings))
	for i, ring := range rings {
		fmt.Printf("  ring %d: %d vertices\n", i, len(ring))
	}

	// Export every wet cell as a GeoJSON feature
	f, err := os.Create("cells.geojson")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := seagrid.WriteGeoJSON(grid, f); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote cells.geojson")

	// Export the boundary as a single MultiLineString feature
	feature, err := seagrid.BoundaryGeoJSON(grid)
	if err != nil {
		log.Fatal(err)
	}
	data, err := json.Marshal(feature)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("boundary.geojson", data, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote boundary.geojson")
}
