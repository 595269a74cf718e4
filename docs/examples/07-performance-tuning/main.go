package main

import (
	"fmt"
	"log"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// buildDataset assembles a 100x100 CF 1-D grid.
func buildDataset() (*seagrid.Dataset, error) {
	n := 100
	ds := seagrid.NewDataset()

	lat := sparse.ZerosDense(n)
	lon := sparse.ZerosDense(n)
	for i := 0; i < n; i++ {
		lat.Elements[i] = -44.0 + 0.05*float64(i)
		lon.Elements[i] = 146.0 + 0.05*float64(i)
	}
	latVar := seagrid.NewVariable("lat", []string{"lat"}, lat)
	latVar.Attrs["units"] = "degrees_north"
	if err := ds.AddVariable(latVar); err != nil {
		return nil, err
	}
	lonVar := seagrid.NewVariable("lon", []string{"lon"}, lon)
	lonVar.Attrs["units"] = "degrees_east"
	return ds, ds.AddVariable(lonVar)
}

// Share built grids across requests with an LRU cache
func cachedGrids() error {
	cache := seagrid.NewGridCache(256 * 1024 * 1024) // 256MB

	load := func() (*seagrid.Grid, error) {
		ds, err := buildDataset()
		if err != nil {
			return nil, err
		}
		grid, err := seagrid.Bind(ds, nil)
		if err != nil {
			return nil, err
		}
		// Build before caching so shared readers never trigger a build
		return grid, grid.Build()
	}

	// First access builds, later accesses hit the cache
	for i := 0; i < 3; i++ {
		if _, err := cache.Get("model_grid", load); err != nil {
			return err
		}
	}

	stats := cache.Stats()
	fmt.Printf("Cached grids: %d, accesses: %d, memory: %d bytes\n",
		stats.GridCount, stats.TotalAccess, stats.UsedMemory)
	return nil
}

// Extract many points with a worker pool
func parallelExtraction() error {
	ds, err := buildDataset()
	if err != nil {
		return err
	}
	grid, err := seagrid.Bind(ds, nil)
	if err != nil {
		return err
	}

	points := make([]geom.Point, 5000)
	for i := range points {
		points[i] = geom.Point{
			X: 146.0 + 0.001*float64(i%5000),
			Y: -44.0 + 0.0009*float64(i),
		}
	}

	results, err := grid.SelectPointsParallel(points, seagrid.BatchOptions{
		Parallel: true,
		Workers:  8,
		Progress: func(done, total int) {
			if done%1000 == 0 || done == total {
				fmt.Printf("\r  extracting %d/%d", done, total)
			}
		},
	})
	if err != nil {
		return err
	}
	fmt.Println()

	hits := 0
	for _, sel := range results {
		if sel.Found {
			hits++
		}
	}
	fmt.Printf("Points inside the domain: %d of %d\n", hits, len(results))
	return nil
}

func main() {
	fmt.Println("=== Grid cache ===")
	if err := cachedGrids(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("\n=== Parallel point extraction ===")
	if err := parallelExtraction(); err != nil {
		log.Fatal(err)
	}
}
