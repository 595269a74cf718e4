// Package seagrid provides one geometric and indexing abstraction over
// gridded geospatial datasets whose layouts differ.
//
// Model output comes on many grids: staggered curvilinear grids, plain 1-D
// or curvilinear 2-D latitude/longitude grids, and unstructured meshes.
// This package detects which convention a dataset follows and answers the
// questions that should not depend on the layout: what are the cells, where
// are they, which cell is at this point, which cells fall in this region,
// and where does the domain end.
//
// # Basic Usage
//
//	conv, err := seagrid.Detect(ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	grid, err := conv.Bind(ds, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	idx, found, err := grid.SelectPoint(152.3, -24.1)
//	if found {
//	    fmt.Printf("cell at point: %s\n", idx)
//	}
//
// # Grid Kinds and Indexes
//
// A convention exposes one or more index spaces called grid kinds. Simple
// grids have just the face kind for cell centres; staggered grids add left,
// back and node kinds sharing the same domain. Cells are addressed two
// ways:
//
//	native := seagrid.FaceIndex(3, 4)    // kind plus per-dimension coordinates
//	linear, err := grid.Ravel(native)    // dense row-major position
//	back, err := grid.Unravel(seagrid.KindFace, linear)
//
// Linear indexes cover every cell, valid or masked; the topology of each
// kind reports shape, size and validity:
//
//	topo, err := grid.Topology(seagrid.KindFace)
//	fmt.Println(topo.Shape(), topo.LinearSize())
//	valid, err := topo.Size() // only mask-true cells
//
// # Geometry and Queries
//
// Every valid cell of the default kind has one polygon. Polygons drive the
// spatial queries:
//
//	cells, err := grid.SelectPolygon(region)  // cells intersecting a polygon
//	idx, err := grid.SelectNearest(x, y)      // closest cell by centroid
//	rings, err := grid.Boundary()             // domain outline with holes
//
// Construction is staged and lazy: binding captures metadata, and
// topologies, polygons and the spatial index materialise on first use.
// Call Build before sharing a grid across goroutines:
//
//	if err := grid.Build(); err != nil {
//	    log.Fatal(err)
//	}
//	results, err := grid.SelectPointsParallel(points, seagrid.DefaultBatchOptions())
//
// # Clipping
//
// ClipMask and ApplyClipMask restrict a dataset to a region. The clip mask
// keeps every cell intersecting the region, optionally buffered by extra
// cells; applying it blanks everything else with NaN so the clipped dataset
// binds again as a smaller domain:
//
//	masks, err := grid.ClipMask(region, 1)
//	clipped, err := grid.ApplyClipMask(masks)
package seagrid
