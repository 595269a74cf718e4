package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/seagrid/seagrid/pkg/cdfio"
	"github.com/seagrid/seagrid/pkg/seagrid"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.nc>\n", os.Args[0])
		os.Exit(1)
	}
	path := os.Args[1]

	// Load the NetCDF file, logging skipped variables
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	ds, err := cdfio.OpenWith(path, &cdfio.Options{Logger: logger})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Variables: %d\n", len(ds.Variables()))

	// Detect the grid convention and bind
	conv, err := seagrid.Detect(ds)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Convention: %s\n", conv.Name())

	grid, err := seagrid.Bind(ds, &seagrid.BindOptions{Logger: logger})
	if err != nil {
		log.Fatal(err)
	}
	if err := grid.Build(); err != nil {
		log.Fatal(err)
	}

	// Report the grid's shape per kind
	for _, kind := range grid.Kinds() {
		topo, err := grid.Topology(kind)
		if err != nil {
			log.Fatal(err)
		}
		size, err := topo.Size()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %s: shape %v, %d of %d cells valid\n",
			kind, topo.Shape(), size, topo.LinearSize())
	}

	bounds, err := grid.Bounds()
	if err != nil {
		log.Fatal(err)
	}
	if bounds != nil {
		fmt.Printf("Bounds: [%.4f, %.4f] to [%.4f, %.4f]\n",
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
}
