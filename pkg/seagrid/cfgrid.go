package seagrid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Latitude and longitude discovery shared by the CF grid conventions.
// A variable is a coordinate candidate when its metadata says so:
// standard_name, coordinate_type, a recognised unit form, or one of the
// canonical variable names.

var latitudeUnits = map[string]bool{
	"degrees_north": true,
	"degree_north":  true,
	"degree_N":      true,
	"degrees_N":     true,
	"degreeN":       true,
	"degreesN":      true,
}

var longitudeUnits = map[string]bool{
	"degrees_east": true,
	"degree_east":  true,
	"degree_E":     true,
	"degrees_E":    true,
	"degreeE":      true,
	"degreesE":     true,
}

func isLatitude(name string, v *Variable) bool {
	if s, ok := v.StringAttr("standard_name"); ok && s == "latitude" {
		return true
	}
	if s, ok := v.StringAttr("coordinate_type"); ok && s == "latitude" {
		return true
	}
	if s, ok := v.StringAttr("units"); ok && latitudeUnits[s] {
		return true
	}
	return name == "latitude" || name == "lat"
}

func isLongitude(name string, v *Variable) bool {
	if s, ok := v.StringAttr("standard_name"); ok && s == "longitude" {
		return true
	}
	if s, ok := v.StringAttr("coordinate_type"); ok && s == "longitude" {
		return true
	}
	if s, ok := v.StringAttr("units"); ok && longitudeUnits[s] {
		return true
	}
	return name == "longitude" || name == "lon"
}

// findCoordinate returns the single candidate with the wanted arity. More
// than one candidate is as much of a failure as none: the layout is not
// unambiguous.
func findCoordinate(ds *Dataset, arity int, match func(string, *Variable) bool) (*Variable, bool) {
	var found *Variable
	for _, name := range ds.Variables() {
		v := ds.Variable(name)
		if len(v.Dims) != arity || !match(name, v) {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = v
	}
	return found, found != nil
}

// coordinateGeometryVars lists a coordinate variable plus the bounds
// variable its metadata names, when present.
func coordinateGeometryVars(ds *Dataset, coords ...*Variable) []string {
	var names []string
	for _, c := range coords {
		names = append(names, c.Name)
		if b, ok := c.StringAttr("bounds"); ok && ds.HasVariable(b) {
			names = append(names, b)
		}
	}
	return names
}

// CFGrid1D is the convention for datasets with one-dimensional latitude and
// longitude coordinates on distinct dimensions. A single face kind indexes
// cells as (j, i); cell edges sit midway between neighbouring coordinate
// values, with the first and last cell extended by half the adjacent gap.
type CFGrid1D struct{}

// NewCFGrid1D returns the convention.
func NewCFGrid1D() *CFGrid1D {
	return &CFGrid1D{}
}

// Name implements Convention.
func (c *CFGrid1D) Name() string {
	return "cfgrid1d"
}

// Detect reports whether the dataset has exactly one 1-D latitude and one
// 1-D longitude candidate on distinct dimensions.
func (c *CFGrid1D) Detect(ds *Dataset) bool {
	lat, ok := findCoordinate(ds, 1, isLatitude)
	if !ok {
		return false
	}
	lon, ok := findCoordinate(ds, 1, isLongitude)
	if !ok {
		return false
	}
	return lat.Dims[0] != lon.Dims[0]
}

// Bind implements Convention.
func (c *CFGrid1D) Bind(ds *Dataset, opts *BindOptions) (*Grid, error) {
	lat, ok := findCoordinate(ds, 1, isLatitude)
	if !ok {
		return nil, fmt.Errorf("seagrid: cfgrid1d: no unambiguous 1-D latitude coordinate")
	}
	lon, ok := findCoordinate(ds, 1, isLongitude)
	if !ok {
		return nil, fmt.Errorf("seagrid: cfgrid1d: no unambiguous 1-D longitude coordinate")
	}
	if lat.Dims[0] == lon.Dims[0] {
		return nil, fmt.Errorf("seagrid: cfgrid1d: latitude and longitude share dimension %q",
			lat.Dims[0])
	}
	src := &cf1DSource{
		ds:  ds,
		lat: lat,
		lon: lon,
	}
	return newGrid(c, ds, src, opts), nil
}

type cf1DSource struct {
	ds       *Dataset
	lat, lon *Variable
}

func (s *cf1DSource) kinds() []GridKind {
	return []GridKind{KindFace}
}

func (s *cf1DSource) defaultKind() GridKind {
	return KindFace
}

func (s *cf1DSource) shape() (nj, ni int) {
	return s.lat.Shape()[0], s.lon.Shape()[0]
}

func (s *cf1DSource) buildTopologies(g *Grid) (map[GridKind]*Topology, error) {
	nj, ni := s.shape()
	topo, err := NewTopology(KindFace,
		[]string{s.lat.Dims[0], s.lon.Dims[0]}, []int{nj, ni},
		g.defaultKindMask)
	if err != nil {
		return nil, err
	}
	return map[GridKind]*Topology{KindFace: topo}, nil
}

// cellEdges places n+1 edges around n cell centres: midpoints between
// neighbours, the two ends extended by half the adjacent gap.
func cellEdges(centres []float64) []float64 {
	n := len(centres)
	edges := make([]float64, n+1)
	if n == 1 {
		// A single cell has no gap to halve; give it unit extent.
		edges[0] = centres[0] - 0.5
		edges[1] = centres[0] + 0.5
		return edges
	}
	edges[0] = centres[0] - (centres[1]-centres[0])/2
	for k := 1; k < n; k++ {
		edges[k] = (centres[k-1] + centres[k]) / 2
	}
	edges[n] = centres[n-1] + (centres[n-1]-centres[n-2])/2
	return edges
}

func (s *cf1DSource) derivePolygons() ([][]geom.Point, error) {
	nj, ni := s.shape()
	latEdges := cellEdges(s.lat.Data.Elements)
	lonEdges := cellEdges(s.lon.Data.Elements)

	rings := make([][]geom.Point, nj*ni)
	for j := 0; j < nj; j++ {
		if math.IsNaN(s.lat.Data.Elements[j]) {
			continue
		}
		for i := 0; i < ni; i++ {
			if math.IsNaN(s.lon.Data.Elements[i]) {
				continue
			}
			x0, x1 := lonEdges[i], lonEdges[i+1]
			y0, y1 := latEdges[j], latEdges[j+1]
			rings[j*ni+i] = []geom.Point{
				{X: x0, Y: y0},
				{X: x1, Y: y0},
				{X: x1, Y: y1},
				{X: x0, Y: y1},
			}
		}
	}
	return rings, nil
}

func (s *cf1DSource) faceCentres() ([]geom.Point, error) {
	nj, ni := s.shape()
	centres := make([]geom.Point, nj*ni)
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			centres[j*ni+i] = geom.Point{
				X: s.lon.Data.Elements[i],
				Y: s.lat.Data.Elements[j],
			}
		}
	}
	return centres, nil
}

func (s *cf1DSource) masksFromFace(face []bool, buffer int) (map[GridKind][]bool, error) {
	nj, ni := s.shape()
	if len(face) != nj*ni {
		return nil, fmt.Errorf("seagrid: cfgrid1d: face mask has %d cells, want %d",
			len(face), nj*ni)
	}
	if buffer > 0 {
		face = DilateMask(face, nj, ni, buffer)
	}
	out := make([]bool, len(face))
	copy(out, face)
	return map[GridKind][]bool{KindFace: out}, nil
}

func (s *cf1DSource) geometryVariables() []string {
	return coordinateGeometryVars(s.ds, s.lat, s.lon)
}

// CFGrid2D is the convention for curvilinear datasets whose latitude and
// longitude coordinates are 2-D over a shared (j, i) dimension pair. A
// single face kind indexes cells as (j, i). Cell corners are estimated as
// the mean of the up-to-four adjacent cell centres, NaN centres ignored;
// cells with a NaN centre, or with a corner no finite centre is adjacent
// to, are masked invalid.
type CFGrid2D struct{}

// NewCFGrid2D returns the convention.
func NewCFGrid2D() *CFGrid2D {
	return &CFGrid2D{}
}

// Name implements Convention.
func (c *CFGrid2D) Name() string {
	return "cfgrid2d"
}

// Detect reports whether the dataset has exactly one 2-D latitude and one
// 2-D longitude candidate over the same dimension pair.
func (c *CFGrid2D) Detect(ds *Dataset) bool {
	lat, ok := findCoordinate(ds, 2, isLatitude)
	if !ok {
		return false
	}
	lon, ok := findCoordinate(ds, 2, isLongitude)
	if !ok {
		return false
	}
	return lat.Dims[0] == lon.Dims[0] && lat.Dims[1] == lon.Dims[1]
}

// Bind implements Convention.
func (c *CFGrid2D) Bind(ds *Dataset, opts *BindOptions) (*Grid, error) {
	lat, ok := findCoordinate(ds, 2, isLatitude)
	if !ok {
		return nil, fmt.Errorf("seagrid: cfgrid2d: no unambiguous 2-D latitude coordinate")
	}
	lon, ok := findCoordinate(ds, 2, isLongitude)
	if !ok {
		return nil, fmt.Errorf("seagrid: cfgrid2d: no unambiguous 2-D longitude coordinate")
	}
	if lat.Dims[0] != lon.Dims[0] || lat.Dims[1] != lon.Dims[1] {
		return nil, fmt.Errorf("seagrid: cfgrid2d: latitude and longitude disagree on dimensions")
	}
	src := &cf2DSource{
		ds:  ds,
		lat: lat,
		lon: lon,
	}
	return newGrid(c, ds, src, opts), nil
}

type cf2DSource struct {
	ds       *Dataset
	lat, lon *Variable
}

func (s *cf2DSource) kinds() []GridKind {
	return []GridKind{KindFace}
}

func (s *cf2DSource) defaultKind() GridKind {
	return KindFace
}

func (s *cf2DSource) shape() (nj, ni int) {
	return s.lat.Shape()[0], s.lat.Shape()[1]
}

func (s *cf2DSource) buildTopologies(g *Grid) (map[GridKind]*Topology, error) {
	nj, ni := s.shape()
	topo, err := NewTopology(KindFace, s.lat.Dims, []int{nj, ni}, g.defaultKindMask)
	if err != nil {
		return nil, err
	}
	return map[GridKind]*Topology{KindFace: topo}, nil
}

// cornerGrids estimates node positions from cell centres: corner (J, I) is
// the mean of the finite centres among (J-1, I-1), (J-1, I), (J, I-1) and
// (J, I). Corners with no finite neighbour come out NaN.
func (s *cf2DSource) cornerGrids() (latC, lonC []float64) {
	nj, ni := s.shape()
	latC = make([]float64, (nj+1)*(ni+1))
	lonC = make([]float64, (nj+1)*(ni+1))
	for cj := 0; cj <= nj; cj++ {
		for ci := 0; ci <= ni; ci++ {
			var sumLat, sumLon float64
			n := 0
			for _, d := range [4][2]int{{cj - 1, ci - 1}, {cj - 1, ci}, {cj, ci - 1}, {cj, ci}} {
				j, i := d[0], d[1]
				if j < 0 || j >= nj || i < 0 || i >= ni {
					continue
				}
				la := s.lat.Data.Get(j, i)
				lo := s.lon.Data.Get(j, i)
				if math.IsNaN(la) || math.IsNaN(lo) {
					continue
				}
				sumLat += la
				sumLon += lo
				n++
			}
			at := cj*(ni+1) + ci
			if n == 0 {
				latC[at] = math.NaN()
				lonC[at] = math.NaN()
			} else {
				latC[at] = sumLat / float64(n)
				lonC[at] = sumLon / float64(n)
			}
		}
	}
	return latC, lonC
}

func (s *cf2DSource) derivePolygons() ([][]geom.Point, error) {
	nj, ni := s.shape()
	latC, lonC := s.cornerGrids()

	rings := make([][]geom.Point, nj*ni)
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			if math.IsNaN(s.lat.Data.Get(j, i)) || math.IsNaN(s.lon.Data.Get(j, i)) {
				continue
			}
			corner := func(cj, ci int) geom.Point {
				at := cj*(ni+1) + ci
				return geom.Point{X: lonC[at], Y: latC[at]}
			}
			rings[j*ni+i] = []geom.Point{
				corner(j, i),
				corner(j, i+1),
				corner(j+1, i+1),
				corner(j+1, i),
			}
		}
	}
	return rings, nil
}

func (s *cf2DSource) faceCentres() ([]geom.Point, error) {
	nj, ni := s.shape()
	centres := make([]geom.Point, nj*ni)
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			centres[j*ni+i] = geom.Point{
				X: s.lon.Data.Get(j, i),
				Y: s.lat.Data.Get(j, i),
			}
		}
	}
	return centres, nil
}

func (s *cf2DSource) masksFromFace(face []bool, buffer int) (map[GridKind][]bool, error) {
	nj, ni := s.shape()
	if len(face) != nj*ni {
		return nil, fmt.Errorf("seagrid: cfgrid2d: face mask has %d cells, want %d",
			len(face), nj*ni)
	}
	if buffer > 0 {
		face = DilateMask(face, nj, ni, buffer)
	}
	out := make([]bool, len(face))
	copy(out, face)
	return map[GridKind][]bool{KindFace: out}, nil
}

func (s *cf2DSource) geometryVariables() []string {
	return coordinateGeometryVars(s.ds, s.lat, s.lon)
}
