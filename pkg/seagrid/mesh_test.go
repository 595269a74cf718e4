package seagrid

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

func TestMeshDetect(t *testing.T) {
	conv := NewMesh()
	if !conv.Detect(makeTriangleFan(t)) {
		t.Fatal("fan fixture should be detected")
	}
	if conv.Detect(makeTriangleFan(t).Without("mesh")) {
		t.Error("dataset without a mesh topology variable should not be detected")
	}

	// cf_role alone is not enough; the topology must name its connectivity.
	bare := NewDataset()
	addVariable(t, bare, "mesh", nil, sparse.ZerosDense(),
		map[string]interface{}{"cf_role": "mesh_topology"})
	if conv.Detect(bare) {
		t.Error("mesh variable without face_node_connectivity should not be detected")
	}
}

func TestMeshBindFan(t *testing.T) {
	ds := makeTriangleFan(t)
	grid := mustBind(t, NewMesh(), ds)

	kinds := grid.Kinds()
	if len(kinds) != 2 {
		t.Fatalf("Kinds() = %v, want face and node", kinds)
	}

	face, err := grid.Topology(KindFace)
	if err != nil {
		t.Fatal(err)
	}
	if face.Arity() != 1 || face.LinearSize() != 6 {
		t.Errorf("face topology %v x %d, want 1-D over 6 faces", face.Shape(), face.Arity())
	}
	node, err := grid.Topology(KindNode)
	if err != nil {
		t.Fatal(err)
	}
	if node.LinearSize() != 7 {
		t.Errorf("node LinearSize() = %d, want 7", node.LinearSize())
	}

	polys, err := grid.Polygons()
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 6 {
		t.Fatalf("got %d polygons, want 6", len(polys))
	}
	for pos, poly := range polys {
		if len(poly[0]) != 3 {
			t.Errorf("face %d has %d vertices, want 3", pos, len(poly[0]))
		}
		if poly.Area() <= 0 {
			t.Errorf("face %d has area %v", pos, poly.Area())
		}
	}

	// Centres come from the face_coordinates variables, not centroids.
	centres, err := grid.FaceCentres()
	if err != nil {
		t.Fatal(err)
	}
	fx := ds.Variable("face_x").Data.Elements
	fy := ds.Variable("face_y").Data.Elements
	for f := 0; f < 6; f++ {
		if centres[f].X != fx[f] || centres[f].Y != fy[f] {
			t.Errorf("centre[%d] = %v, want (%v, %v)", f, centres[f], fx[f], fy[f])
		}
	}
}

func TestMeshNodeMaskFollowsFaces(t *testing.T) {
	grid := mustBind(t, NewMesh(), makeTriangleFan(t))
	node, err := grid.Topology(KindNode)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := node.Mask()
	if err != nil {
		t.Fatal(err)
	}
	for id, ok := range mask {
		if !ok {
			t.Errorf("node %d is referenced by a valid face but masked", id)
		}
	}
}

func TestMeshBindErrors(t *testing.T) {
	conv := NewMesh()

	if _, err := conv.Bind(makeTriangleFan(t).Without("face_nodes"), nil); err == nil {
		t.Error("missing connectivity variable should fail")
	}

	badStart := makeTriangleFan(t)
	badStart.Variable("face_nodes").Attrs["start_index"] = int32(2)
	if _, err := conv.Bind(badStart, nil); err == nil {
		t.Error("start_index 2 should fail")
	}

	badDim := makeTriangleFan(t)
	badDim.Variable("mesh").Attrs["face_dimension"] = "bogus"
	if _, err := conv.Bind(badDim, nil); err == nil {
		t.Error("face_dimension naming no connectivity axis should fail")
	}

	badCoords := makeTriangleFan(t)
	badCoords.Variable("mesh").Attrs["node_coordinates"] = "node_x"
	if _, err := conv.Bind(badCoords, nil); err == nil {
		t.Error("single-name node_coordinates should fail")
	}

	flat := makeTriangleFan(t).Without("face_nodes")
	addVariable(t, flat, "face_nodes", []string{"flat"}, dense(t, []int{18}, make([]float64, 18)), nil)
	if _, err := conv.Bind(flat, nil); err == nil {
		t.Error("1-D connectivity should fail")
	}
}

func TestMeshRaggedConnectivity(t *testing.T) {
	// One quad, one triangle padded with a negative entry, and a row that
	// cannot make a polygon: a repeated node, an out-of-range id and fill.
	ds := NewDataset()
	nodeX := []float64{0, 1, 1, 0, 2, 2, 5}
	nodeY := []float64{0, 0, 1, 1, 0, 1, 5}
	addVariable(t, ds, "node_x", []string{"node"}, dense(t, []int{7}, nodeX), nil)
	addVariable(t, ds, "node_y", []string{"node"}, dense(t, []int{7}, nodeY), nil)

	conn := []float64{
		1, 2, 3, 4, // quad over nodes 0-3 (one-based ids)
		2, 5, 6, -1, // triangle over nodes 1, 4, 5
		7, 7, 50, 999, // repeated node, out-of-range, fill
	}
	connVar := NewVariable("face_nodes", []string{"nface", "max_nodes"}, dense(t, []int{3, 4}, conn))
	connVar.Attrs["start_index"] = int32(1)
	connVar.Attrs["_FillValue"] = 999.0
	if err := ds.AddVariable(connVar); err != nil {
		t.Fatal(err)
	}

	addVariable(t, ds, "mesh", nil, sparse.ZerosDense(), map[string]interface{}{
		"cf_role":                "mesh_topology",
		"face_node_connectivity": "face_nodes",
		"node_coordinates":       "node_x node_y",
	})

	grid := mustBind(t, NewMesh(), ds)
	polys, err := grid.Polygons()
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 2 {
		t.Fatalf("got %d polygons, want 2", len(polys))
	}
	if len(polys[0][0]) != 4 {
		t.Errorf("face 0 has %d vertices, want 4", len(polys[0][0]))
	}
	if len(polys[1][0]) != 3 {
		t.Errorf("face 1 has %d vertices, want 3", len(polys[1][0]))
	}

	face, err := grid.Topology(KindFace)
	if err != nil {
		t.Fatal(err)
	}
	valid, err := face.Valid(NewIndex(KindFace, 2))
	if err != nil {
		t.Fatal(err)
	}
	if valid {
		t.Error("face 2 has no usable polygon and should be masked")
	}

	// Node 6 is referenced only by the masked face.
	node, err := grid.Topology(KindNode)
	if err != nil {
		t.Fatal(err)
	}
	mask, err := node.Mask()
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{true, true, true, true, true, true, false}
	for id := range want {
		if mask[id] != want[id] {
			t.Errorf("node mask[%d] = %v, want %v", id, mask[id], want[id])
		}
	}
}

func TestMeshTransposedConnectivity(t *testing.T) {
	// The fan again, with the connectivity stored (max_nodes, nface) and
	// face_dimension marking the second axis.
	const nface = 6
	ds := NewDataset()
	nodeX := make([]float64, nface+1)
	nodeY := make([]float64, nface+1)
	for k := 1; k <= nface; k++ {
		angle := 2 * math.Pi * float64(k-1) / nface
		nodeX[k] = math.Cos(angle)
		nodeY[k] = math.Sin(angle)
	}
	addVariable(t, ds, "node_x", []string{"node"}, dense(t, []int{nface + 1}, nodeX), nil)
	addVariable(t, ds, "node_y", []string{"node"}, dense(t, []int{nface + 1}, nodeY), nil)

	conn := make([]float64, 3*nface)
	for f := 0; f < nface; f++ {
		conn[0*nface+f] = 0
		conn[1*nface+f] = float64(1 + f)
		conn[2*nface+f] = float64(1 + (f+1)%nface)
	}
	addVariable(t, ds, "face_nodes", []string{"max_nodes", "nface"},
		dense(t, []int{3, nface}, conn), nil)
	addVariable(t, ds, "mesh", nil, sparse.ZerosDense(), map[string]interface{}{
		"cf_role":                "mesh_topology",
		"face_node_connectivity": "face_nodes",
		"node_coordinates":       "node_x node_y",
		"face_dimension":         "nface",
	})

	grid := mustBind(t, NewMesh(), ds)
	face, err := grid.Topology(KindFace)
	if err != nil {
		t.Fatal(err)
	}
	if face.LinearSize() != nface {
		t.Fatalf("face LinearSize() = %d, want %d", face.LinearSize(), nface)
	}
	if face.Dimensions()[0] != "nface" {
		t.Errorf("face dimension = %q, want nface", face.Dimensions()[0])
	}
	polys, err := grid.Polygons()
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != nface {
		t.Errorf("got %d polygons, want %d", len(polys), nface)
	}
}

// makeQuadRow builds three unit quads in a row sharing edges, without face
// centre coordinates.
func makeQuadRow(t testing.TB) *Dataset {
	t.Helper()
	ds := NewDataset()
	nodeX := []float64{0, 1, 2, 3, 0, 1, 2, 3}
	nodeY := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	addVariable(t, ds, "node_x", []string{"node"}, dense(t, []int{8}, nodeX), nil)
	addVariable(t, ds, "node_y", []string{"node"}, dense(t, []int{8}, nodeY), nil)

	conn := make([]float64, 3*4)
	for f := 0; f < 3; f++ {
		conn[f*4] = float64(f)
		conn[f*4+1] = float64(f + 1)
		conn[f*4+2] = float64(f + 5)
		conn[f*4+3] = float64(f + 4)
	}
	addVariable(t, ds, "face_nodes", []string{"nface", "max_nodes"},
		dense(t, []int{3, 4}, conn), nil)
	addVariable(t, ds, "mesh", nil, sparse.ZerosDense(), map[string]interface{}{
		"cf_role":                "mesh_topology",
		"face_node_connectivity": "face_nodes",
		"node_coordinates":       "node_x node_y",
	})
	return ds
}

func TestMeshCentroidFallback(t *testing.T) {
	grid := mustBind(t, NewMesh(), makeQuadRow(t))
	centres, err := grid.FaceCentres()
	if err != nil {
		t.Fatal(err)
	}
	if centres[0].X != 0.5 || centres[0].Y != 0.5 {
		t.Errorf("centre[0] = %v, want the centroid (0.5, 0.5)", centres[0])
	}
}

func TestMeshClipBufferFollowsSharedNodes(t *testing.T) {
	grid := mustBind(t, NewMesh(), makeQuadRow(t))
	sliver := geom.Polygon{{
		{X: 0.4, Y: 0.4}, {X: 0.6, Y: 0.4}, {X: 0.6, Y: 0.6}, {X: 0.4, Y: 0.6},
	}}

	masks, err := grid.ClipMask(sliver, 0)
	if err != nil {
		t.Fatal(err)
	}
	wantFace := []bool{true, false, false}
	for f := range wantFace {
		if masks[KindFace][f] != wantFace[f] {
			t.Errorf("buffer 0: face mask[%d] = %v, want %v", f, masks[KindFace][f], wantFace[f])
		}
	}

	// One buffer step reaches the quad sharing nodes 1 and 5, not the far one.
	masks, err = grid.ClipMask(sliver, 1)
	if err != nil {
		t.Fatal(err)
	}
	wantFace = []bool{true, true, false}
	for f := range wantFace {
		if masks[KindFace][f] != wantFace[f] {
			t.Errorf("buffer 1: face mask[%d] = %v, want %v", f, masks[KindFace][f], wantFace[f])
		}
	}
	wantNode := []bool{true, true, true, false, true, true, true, false}
	for id := range wantNode {
		if masks[KindNode][id] != wantNode[id] {
			t.Errorf("buffer 1: node mask[%d] = %v, want %v", id, masks[KindNode][id], wantNode[id])
		}
	}

	masks, err = grid.ClipMask(sliver, 2)
	if err != nil {
		t.Fatal(err)
	}
	for f := 0; f < 3; f++ {
		if !masks[KindFace][f] {
			t.Errorf("buffer 2 should reach every face, missing %d", f)
		}
	}
}

func TestMeshSelectorForIndex(t *testing.T) {
	grid := mustBind(t, NewMesh(), makeTriangleFan(t))
	sel, err := grid.SelectorForIndex(NewIndex(KindFace, 4))
	if err != nil {
		t.Fatal(err)
	}
	if len(sel) != 1 || sel["nface"] != 4 {
		t.Errorf("SelectorForIndex = %v, want map[nface:4]", sel)
	}

	sel, err = grid.SelectorForIndex(NewIndex(KindNode, 6))
	if err != nil {
		t.Fatal(err)
	}
	if sel["node"] != 6 {
		t.Errorf("SelectorForIndex = %v, want map[node:6]", sel)
	}
}
