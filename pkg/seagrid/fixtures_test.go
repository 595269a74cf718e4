package seagrid

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Shared dataset builders. Every convention gets a small synthetic dataset
// with known geometry so tests can assert exact cells, centroids and masks.
// The fixtures are built to be claimed by exactly one bundled convention:
// staggered coordinates carry plain "degrees" units the CF detectors do not
// recognise, and the mesh node coordinates share one dimension, which the
// 1-D CF detector requires to be distinct.

func dense(t testing.TB, shape []int, values []float64) *sparse.DenseArray {
	t.Helper()
	a := sparse.ZerosDense(shape...)
	if len(a.Elements) != len(values) {
		t.Fatalf("dense: %d values for shape %v (%d cells)", len(values), shape, len(a.Elements))
	}
	copy(a.Elements, values)
	return a
}

func addVariable(t testing.TB, ds *Dataset, name string, dims []string, data *sparse.DenseArray, attrs map[string]interface{}) {
	t.Helper()
	v := NewVariable(name, dims, data)
	for k, a := range attrs {
		v.Attrs[k] = a
	}
	if err := ds.AddVariable(v); err != nil {
		t.Fatalf("add variable %s: %v", name, err)
	}
}

func mustBind(t testing.TB, c Convention, ds *Dataset) *Grid {
	t.Helper()
	grid, err := c.Bind(ds, nil)
	if err != nil {
		t.Fatalf("bind %s: %v", c.Name(), err)
	}
	return grid
}

func allWet(j, i int) bool { return true }

// makeStaggered builds a staggered dataset over a regular unit grid: node
// (j, i) sits at (i, j), so face (j, i) covers x in [i, i+1], y in [j, j+1]
// with its centre at (i+0.5, j+0.5). Dry cells, where wet reports false, get
// NaN face centres. Includes a face variable "temperature" (value = linear
// index) and a left variable "current_u".
func makeStaggered(t testing.TB, nj, ni int, wet func(j, i int) bool) *Dataset {
	t.Helper()
	ds := NewDataset()

	grids := []struct {
		lat, lon   string
		dims       []string
		mj, mi     int
		dy, dx     float64
		dryCentres bool
	}{
		{"y_centre", "x_centre", []string{"j_centre", "i_centre"}, nj, ni, 0.5, 0.5, true},
		{"y_left", "x_left", []string{"j_left", "i_left"}, nj, ni + 1, 0.5, 0, false},
		{"y_back", "x_back", []string{"j_back", "i_back"}, nj + 1, ni, 0, 0.5, false},
		{"y_grid", "x_grid", []string{"j_grid", "i_grid"}, nj + 1, ni + 1, 0, 0, false},
	}
	for _, gr := range grids {
		lat := make([]float64, gr.mj*gr.mi)
		lon := make([]float64, gr.mj*gr.mi)
		for j := 0; j < gr.mj; j++ {
			for i := 0; i < gr.mi; i++ {
				y := float64(j) + gr.dy
				x := float64(i) + gr.dx
				if gr.dryCentres && !wet(j, i) {
					y, x = math.NaN(), math.NaN()
				}
				lat[j*gr.mi+i] = y
				lon[j*gr.mi+i] = x
			}
		}
		shape := []int{gr.mj, gr.mi}
		attrs := map[string]interface{}{"units": "degrees"}
		addVariable(t, ds, gr.lat, gr.dims, dense(t, shape, lat), attrs)
		addVariable(t, ds, gr.lon, gr.dims, dense(t, shape, lon), attrs)
	}

	temp := make([]float64, nj*ni)
	for k := range temp {
		temp[k] = float64(k)
	}
	addVariable(t, ds, "temperature", []string{"j_centre", "i_centre"},
		dense(t, []int{nj, ni}, temp), map[string]interface{}{"units": "degC"})

	u := make([]float64, nj*(ni+1))
	for k := range u {
		u[k] = float64(k) / 10
	}
	addVariable(t, ds, "current_u", []string{"j_left", "i_left"},
		dense(t, []int{nj, ni + 1}, u), map[string]interface{}{"units": "m/s"})

	return ds
}

// makeCFGrid1D builds a rectilinear dataset: nj latitudes on dimension
// "lat", ni longitudes on dimension "lon", and a data variable "sst" over
// ("lat", "lon") whose value is the cell's linear index.
func makeCFGrid1D(t testing.TB, nj, ni int) *Dataset {
	t.Helper()
	ds := NewDataset()

	lat := floats.Span(make([]float64, nj), -42, -42+float64(nj-1)*0.1)
	lon := floats.Span(make([]float64, ni), 147, 147+float64(ni-1)*0.1)
	addVariable(t, ds, "lat", []string{"lat"}, dense(t, []int{nj}, lat),
		map[string]interface{}{"units": "degrees_north"})
	addVariable(t, ds, "lon", []string{"lon"}, dense(t, []int{ni}, lon),
		map[string]interface{}{"units": "degrees_east"})

	sst := make([]float64, nj*ni)
	for k := range sst {
		sst[k] = float64(k)
	}
	addVariable(t, ds, "sst", []string{"lat", "lon"}, dense(t, []int{nj, ni}, sst),
		map[string]interface{}{"units": "degC"})
	return ds
}

// makeCFGrid2D builds a curvilinear dataset over dimensions ("j", "i"): a
// gently warped lat/lon surface classified through standard_name attributes.
// Cells where dry reports true get NaN coordinates.
func makeCFGrid2D(t testing.TB, nj, ni int, dry func(j, i int) bool) *Dataset {
	t.Helper()
	ds := NewDataset()

	lat := make([]float64, nj*ni)
	lon := make([]float64, nj*ni)
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			at := j*ni + i
			if dry != nil && dry(j, i) {
				lat[at], lon[at] = math.NaN(), math.NaN()
				continue
			}
			lat[at] = -42 + 0.1*float64(j) + 0.01*math.Sin(0.5*float64(i))
			lon[at] = 147 + 0.1*float64(i) + 0.01*math.Cos(0.5*float64(j))
		}
	}
	shape := []int{nj, ni}
	dims := []string{"j", "i"}
	addVariable(t, ds, "latitude", dims, dense(t, shape, lat),
		map[string]interface{}{"standard_name": "latitude"})
	addVariable(t, ds, "longitude", dims, dense(t, shape, lon),
		map[string]interface{}{"standard_name": "longitude"})

	chl := make([]float64, nj*ni)
	for k := range chl {
		chl[k] = float64(k) / 2
	}
	addVariable(t, ds, "chl", dims, dense(t, shape, chl), nil)
	return ds
}

// makeTriangleFan builds a mesh dataset of six triangles sharing a central
// node: node 0 at the origin, nodes 1-6 on the unit circle. Face f connects
// nodes (0, f+1, f+2) with wraparound. Includes face centre coordinates and
// a face variable "depth".
func makeTriangleFan(t testing.TB) *Dataset {
	t.Helper()
	ds := NewDataset()

	const nface = 6
	nodeX := make([]float64, nface+1)
	nodeY := make([]float64, nface+1)
	for k := 1; k <= nface; k++ {
		angle := 2 * math.Pi * float64(k-1) / nface
		nodeX[k] = math.Cos(angle)
		nodeY[k] = math.Sin(angle)
	}
	addVariable(t, ds, "node_x", []string{"node"}, dense(t, []int{nface + 1}, nodeX), nil)
	addVariable(t, ds, "node_y", []string{"node"}, dense(t, []int{nface + 1}, nodeY), nil)

	conn := make([]float64, nface*3)
	faceX := make([]float64, nface)
	faceY := make([]float64, nface)
	for f := 0; f < nface; f++ {
		a, b := 1+f, 1+(f+1)%nface
		conn[f*3] = 0
		conn[f*3+1] = float64(a)
		conn[f*3+2] = float64(b)
		faceX[f] = (nodeX[a] + nodeX[b]) / 3
		faceY[f] = (nodeY[a] + nodeY[b]) / 3
	}
	addVariable(t, ds, "face_nodes", []string{"nface", "max_nodes"},
		dense(t, []int{nface, 3}, conn), nil)
	addVariable(t, ds, "face_x", []string{"nface"}, dense(t, []int{nface}, faceX), nil)
	addVariable(t, ds, "face_y", []string{"nface"}, dense(t, []int{nface}, faceY), nil)

	addVariable(t, ds, "mesh", nil, sparse.ZerosDense(), map[string]interface{}{
		"cf_role":                "mesh_topology",
		"topology_dimension":     int32(2),
		"face_node_connectivity": "face_nodes",
		"node_coordinates":       "node_x node_y",
		"face_coordinates":       "face_x face_y",
	})

	depth := []float64{5, 10, 15, 20, 25, 30}
	addVariable(t, ds, "depth", []string{"nface"}, dense(t, []int{nface}, depth), nil)
	return ds
}
