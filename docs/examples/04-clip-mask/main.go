package main

import (
	"fmt"
	"log"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// buildDataset assembles a 30x30 curvilinear grid with a temperature field.
// Two-dimensional coordinates matter here: clipping marks dropped cells by
// blanking their coordinates, which only works when each cell has its own.
func buildDataset() (*seagrid.Dataset, error) {
	n := 30
	ds := seagrid.NewDataset()

	lat := sparse.ZerosDense(n, n)
	lon := sparse.ZerosDense(n, n)
	temp := sparse.ZerosDense(n, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			lat.Set(-40.0+0.1*float64(j), j, i)
			lon.Set(150.0+0.1*float64(i), j, i)
			temp.Set(15.0+0.1*float64(j), j, i)
		}
	}
	latVar := seagrid.NewVariable("lat", []string{"j", "i"}, lat)
	latVar.Attrs["standard_name"] = "latitude"
	lonVar := seagrid.NewVariable("lon", []string{"j", "i"}, lon)
	lonVar.Attrs["standard_name"] = "longitude"
	tempVar := seagrid.NewVariable("temp", []string{"j", "i"}, temp)
	tempVar.Attrs["units"] = "degC"

	for _, v := range []*seagrid.Variable{latVar, lonVar, tempVar} {
		if err := ds.AddVariable(v); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func cellCount(grid *seagrid.Grid) (int, error) {
	topo, err := grid.Topology(grid.DefaultKind())
	if err != nil {
		return 0, err
	}
	return topo.Size()
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

	before, err := cellCount(grid)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Full domain: %d cells\n", before)

	// Clip to a small area of interest, keeping one ring of context cells
	// around it
	region := geom.Polygon{{
		{X: 151.0, Y: -39.0},
		{X: 152.0, Y: -39.0},
		{X: 152.0, Y: -38.2},
		{X: 151.0, Y: -38.2},
	}}
	masks, err := grid.ClipMask(region, 1)
	if err != nil {
		log.Fatal(err)
	}

	clipped, err := grid.ApplyClipMask(masks)
	if err != nil {
		log.Fatal(err)
	}

	// The clipped dataset binds like any other: cells outside the region
	// are dry
	clippedGrid, err := seagrid.Bind(clipped, nil)
	if err != nil {
		log.Fatal(err)
	}
	after, err := cellCount(clippedGrid)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Clipped domain: %d cells\n", after)

	// Data outside the clip is NaN; inside it is untouched
	idx, found, err := clippedGrid.SelectPoint(151.5, -38.6)
	if err != nil {
		log.Fatal(err)
	}
	if found {
		values, err := clippedGrid.LinearValues(clipped.Variable("temp"))
		if err != nil {
			log.Fatal(err)
		}
		linear, err := clippedGrid.Ravel(idx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("temp at %s: %.2f degC\n", idx, values.Elements[linear])
	}
}
