package main

import (
	"fmt"
	"log"
	"math"

	"github.com/ctessum/sparse"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// buildDataset assembles a small unstructured mesh: six nodes around a
// centre node, fanned into six triangles, UGRID style.
func buildDataset() (*seagrid.Dataset, error) {
	ds := seagrid.NewDataset()

	nodeX := sparse.ZerosDense(7)
	nodeY := sparse.ZerosDense(7)
	for k := 0; k < 6; k++ {
		angle := 2 * math.Pi * float64(k) / 6
		nodeX.Elements[k+1] = math.Cos(angle)
		nodeY.Elements[k+1] = math.Sin(angle)
	}
	if err := ds.AddVariable(seagrid.NewVariable("node_x", []string{"node"}, nodeX)); err != nil {
		return nil, err
	}
	if err := ds.AddVariable(seagrid.NewVariable("node_y", []string{"node"}, nodeY)); err != nil {
		return nil, err
	}

	// Each triangle joins the centre node to two neighbouring rim nodes
	conn := sparse.ZerosDense(6, 3)
	for f := 0; f < 6; f++ {
		conn.Set(0, f, 0)
		conn.Set(float64(1+f), f, 1)
		conn.Set(float64(1+(f+1)%6), f, 2)
	}
	if err := ds.AddVariable(seagrid.NewVariable("face_nodes", []string{"nface", "max_nodes"}, conn)); err != nil {
		return nil, err
	}

	mesh := seagrid.NewVariable("mesh", nil, sparse.ZerosDense())
	mesh.Attrs["cf_role"] = "mesh_topology"
	mesh.Attrs["topology_dimension"] = int32(2)
	mesh.Attrs["face_node_connectivity"] = "face_nodes"
	mesh.Attrs["node_coordinates"] = "node_x node_y"
	if err := ds.AddVariable(mesh); err != nil {
		return nil, err
	}

	depth := sparse.ZerosDense(6)
	for f := 0; f < 6; f++ {
		depth.Elements[f] = 10.0 + float64(f)
	}
	return ds, ds.AddVariable(seagrid.NewVariable("depth", []string{"nface"}, depth))
}

func main() {
	ds, err := buildDataset()
	if err != nil {
		log.Fatal(err)
	}

	conv, err := seagrid.Detect(ds)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Convention: %s\n", conv.Name())

	grid, err := seagrid.Bind(ds, nil)
	if err != nil {
		log.Fatal(err)
	}

	// Mesh grids expose faces and nodes
	for _, kind := range grid.Kinds() {
		topo, err := grid.Topology(kind)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %s: %d entries over dimension %v\n",
			kind, topo.LinearSize(), topo.Dimensions())
	}

	// Face indexes are one-dimensional on a mesh
	idx, found, err := grid.SelectPoint(0.4, 0.3)
	if err != nil {
		log.Fatal(err)
	}
	if found {
		fmt.Printf("(0.4, 0.3) falls in %s\n", idx)

		// Map the index back to a dimension selector for data access
		sel, err := grid.SelectorForIndex(idx)
		if err != nil {
			log.Fatal(err)
		}
		depth := ds.Variable("depth")
		fmt.Printf("depth there: %.1f m\n", depth.Data.Get(sel["nface"]))
	}

	// The mesh boundary is the rim of the fan
	rings, err := grid.Boundary()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Boundary: %d ring with %d vertices\n", len(rings), len(rings[0]))
}
