package main

import (
	"fmt"
	"log"

	"github.com/ctessum/sparse"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// buildDataset assembles a small CF 1-D grid in memory: 5x8 cells off the
// Tasmanian east coast. Real applications usually load a file with
// cdfio.Open instead.
func buildDataset() (*seagrid.Dataset, error) {
	nj, ni := 5, 8
	ds := seagrid.NewDataset()

	lat := sparse.ZerosDense(nj)
	for j := 0; j < nj; j++ {
		lat.Elements[j] = -42.0 + 0.1*float64(j)
	}
	latVar := seagrid.NewVariable("lat", []string{"lat"}, lat)
	latVar.Attrs["units"] = "degrees_north"
	if err := ds.AddVariable(latVar); err != nil {
		return nil, err
	}

	lon := sparse.ZerosDense(ni)
	for i := 0; i < ni; i++ {
		lon.Elements[i] = 147.0 + 0.1*float64(i)
	}
	lonVar := seagrid.NewVariable("lon", []string{"lon"}, lon)
	lonVar.Attrs["units"] = "degrees_east"
	if err := ds.AddVariable(lonVar); err != nil {
		return nil, err
	}

	sst := sparse.ZerosDense(nj, ni)
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			sst.Set(18.0+0.05*float64(j+i), j, i)
		}
	}
	sstVar := seagrid.NewVariable("sst", []string{"lat", "lon"}, sst)
	sstVar.Attrs["units"] = "degC"
	return ds, ds.AddVariable(sstVar)
}

func main() {
	ds, err := buildDataset()
	if err != nil {
		log.Fatal(err)
	}

	// Detect which convention the dataset follows
	conv, err := seagrid.Detect(ds)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Convention: %s\n", conv.Name())

	// Bind the grid and build its geometry
	grid, err := seagrid.Bind(ds, nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := grid.Build(); err != nil {
		log.Fatal(err)
	}

	topo, err := grid.Topology(grid.DefaultKind())
	if err != nil {
		log.Fatal(err)
	}
	size, err := topo.Size()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Cells: %d over shape %v\n", size, topo.Shape())

	// Which cell contains this point?
	idx, found, err := grid.SelectPoint(147.33, -41.76)
	if err != nil {
		log.Fatal(err)
	}
	if found {
		fmt.Printf("(147.33, -41.76) falls in cell %s\n", idx)
	}

	// Pull the sst value for that cell
	values, err := grid.LinearValues(ds.Variable("sst"))
	if err != nil {
		log.Fatal(err)
	}
	linear, err := grid.Ravel(idx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("sst there: %.2f degC\n", values.Elements[linear])

	// Points outside the domain snap to the closest cell
	nearest, err := grid.SelectNearest(146.0, -43.0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Closest cell to (146.0, -43.0): %s\n", nearest)
}
