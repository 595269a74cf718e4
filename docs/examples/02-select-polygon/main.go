package main

import (
	"fmt"
	"log"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// buildDataset assembles a 20x20 CF 1-D grid with a synthetic chlorophyll
// field that peaks in the north-east corner.
func buildDataset() (*seagrid.Dataset, error) {
	n := 20
	ds := seagrid.NewDataset()

	lat := sparse.ZerosDense(n)
	lon := sparse.ZerosDense(n)
	for i := 0; i < n; i++ {
		lat.Elements[i] = -40.0 + 0.1*float64(i)
		lon.Elements[i] = 150.0 + 0.1*float64(i)
	}
	latVar := seagrid.NewVariable("lat", []string{"lat"}, lat)
	latVar.Attrs["units"] = "degrees_north"
	lonVar := seagrid.NewVariable("lon", []string{"lon"}, lon)
	lonVar.Attrs["units"] = "degrees_east"

	chl := sparse.ZerosDense(n, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			chl.Set(0.2+0.01*float64(j+i), j, i)
		}
	}
	chlVar := seagrid.NewVariable("chl", []string{"lat", "lon"}, chl)
	chlVar.Attrs["units"] = "mg m-3"

	for _, v := range []*seagrid.Variable{latVar, lonVar, chlVar} {
		if err := ds.AddVariable(v); err != nil {
			return nil, err
		}
	}
	return ds, nil
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

	// A study region in the middle of the domain
	region := geom.Polygon{{
		{X: 150.6, Y: -39.7},
		{X: 151.4, Y: -39.7},
		{X: 151.4, Y: -39.1},
		{X: 150.6, Y: -39.1},
	}}

	cells, err := grid.SelectPolygon(region)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Cells intersecting region: %d\n", len(cells))

	// Average the chlorophyll over the selected cells
	values, err := grid.LinearValues(ds.Variable("chl"))
	if err != nil {
		log.Fatal(err)
	}
	sum := 0.0
	for _, idx := range cells {
		linear, err := grid.Ravel(idx)
		if err != nil {
			log.Fatal(err)
		}
		sum += values.Elements[linear]
	}
	fmt.Printf("Mean chl in region: %.3f mg m-3\n", sum/float64(len(cells)))

	// Batch point extraction along a transect
	transect := make([]geom.Point, 10)
	for i := range transect {
		transect[i] = geom.Point{X: 150.3 + 0.15*float64(i), Y: -39.5}
	}
	selections, err := grid.SelectPoints(transect)
	if err != nil {
		log.Fatal(err)
	}
	for _, sel := range selections {
		if !sel.Found {
			fmt.Printf("  (%.2f, %.2f): outside domain\n", sel.Point.X, sel.Point.Y)
			continue
		}
		linear, err := grid.Ravel(sel.Index)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  (%.2f, %.2f): %s chl=%.3f\n",
			sel.Point.X, sel.Point.Y, sel.Index, values.Elements[linear])
	}
}
