package seagrid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// CoordinatePair names the latitude and longitude variables of one grid
// kind.
type CoordinatePair struct {
	Latitude  string
	Longitude string
}

// StaggeredCoordinates maps every staggered kind to its coordinate pair.
// A staggered convention needs all four kinds: face, left, back and node.
type StaggeredCoordinates map[GridKind]CoordinatePair

// DefaultStaggeredCoordinates returns the coordinate naming hydrodynamic
// model output conventionally uses.
func DefaultStaggeredCoordinates() StaggeredCoordinates {
	return StaggeredCoordinates{
		KindFace: {Latitude: "y_centre", Longitude: "x_centre"},
		KindLeft: {Latitude: "y_left", Longitude: "x_left"},
		KindBack: {Latitude: "y_back", Longitude: "x_back"},
		KindNode: {Latitude: "y_grid", Longitude: "x_grid"},
	}
}

// Staggered is the Arakawa-C staggered curvilinear grid convention.
//
// Four index spaces share one domain: cell centres (face), the grids offset
// half a cell to the left and back (where models keep velocity components),
// and cell corners (node). Cell polygons are built from the node grid, so a
// face at (j, i) has corners (j, i), (j, i+1), (j+1, i+1), (j+1, i).
//
// Example:
//
//	conv := seagrid.DefaultStaggered()
//	if conv.Detect(ds) {
//	    grid, err := conv.Bind(ds, nil)
//	    ...
//	}
type Staggered struct {
	coords StaggeredCoordinates
}

// NewStaggered builds a staggered convention over custom coordinate names.
// Every kind must name both coordinates.
func NewStaggered(coords StaggeredCoordinates) (*Staggered, error) {
	for _, kind := range staggeredKinds {
		pair, ok := coords[kind]
		if !ok || pair.Latitude == "" || pair.Longitude == "" {
			return nil, fmt.Errorf("seagrid: staggered: no coordinate pair for kind %s", kind)
		}
	}
	return &Staggered{coords: coords}, nil
}

// DefaultStaggered returns the convention preset over
// DefaultStaggeredCoordinates.
func DefaultStaggered() *Staggered {
	conv, err := NewStaggered(DefaultStaggeredCoordinates())
	if err != nil {
		panic(err) // the default coordinates always validate
	}
	return conv
}

var staggeredKinds = []GridKind{KindFace, KindLeft, KindBack, KindNode}

// Name implements Convention.
func (c *Staggered) Name() string {
	return "staggered"
}

// Coordinates returns the coordinate naming this convention detects.
func (c *Staggered) Coordinates() StaggeredCoordinates {
	out := make(StaggeredCoordinates, len(c.coords))
	for kind, pair := range c.coords {
		out[kind] = pair
	}
	return out
}

// Detect reports whether all eight coordinate variables are present as 2-D
// variables.
func (c *Staggered) Detect(ds *Dataset) bool {
	for _, kind := range staggeredKinds {
		pair := c.coords[kind]
		for _, name := range []string{pair.Latitude, pair.Longitude} {
			v := ds.Variable(name)
			if v == nil || len(v.Dims) != 2 {
				return false
			}
		}
	}
	return true
}

// Bind builds a grid over the dataset. The four kinds must have the related
// shapes of a staggered layout: with faces (nj, ni), left is (nj, ni+1),
// back is (nj+1, ni) and node is (nj+1, ni+1).
func (c *Staggered) Bind(ds *Dataset, opts *BindOptions) (*Grid, error) {
	vars := make(map[GridKind][2]*Variable, len(staggeredKinds))
	for _, kind := range staggeredKinds {
		pair := c.coords[kind]
		lat := ds.Variable(pair.Latitude)
		lon := ds.Variable(pair.Longitude)
		if lat == nil || lon == nil {
			return nil, fmt.Errorf("seagrid: staggered: missing coordinates for kind %s", kind)
		}
		if len(lat.Dims) != 2 || len(lon.Dims) != 2 {
			return nil, fmt.Errorf("seagrid: staggered: coordinates for kind %s are not 2-D", kind)
		}
		if lat.Dims[0] != lon.Dims[0] || lat.Dims[1] != lon.Dims[1] {
			return nil, fmt.Errorf("seagrid: staggered: %q and %q disagree on dimensions",
				pair.Latitude, pair.Longitude)
		}
		vars[kind] = [2]*Variable{lat, lon}
	}

	nj := vars[KindFace][0].Shape()[0]
	ni := vars[KindFace][0].Shape()[1]
	wantShape := map[GridKind][2]int{
		KindFace: {nj, ni},
		KindLeft: {nj, ni + 1},
		KindBack: {nj + 1, ni},
		KindNode: {nj + 1, ni + 1},
	}
	for _, kind := range staggeredKinds {
		shape := vars[kind][0].Shape()
		want := wantShape[kind]
		if shape[0] != want[0] || shape[1] != want[1] {
			return nil, fmt.Errorf("seagrid: staggered: kind %s has shape (%d, %d), want (%d, %d)",
				kind, shape[0], shape[1], want[0], want[1])
		}
	}

	src := &staggeredSource{
		coords: c.coords,
		vars:   vars,
		nj:     nj,
		ni:     ni,
	}
	return newGrid(c, ds, src, opts), nil
}

// staggeredSource carries the per-bind state of one staggered grid.
type staggeredSource struct {
	coords StaggeredCoordinates
	vars   map[GridKind][2]*Variable
	nj, ni int

	// kindMasks memoizes the propagation of the face mask to the other
	// kinds so the per-topology mask builders share one computation.
	kindMasks map[GridKind][]bool
}

func (s *staggeredSource) kinds() []GridKind {
	return staggeredKinds
}

func (s *staggeredSource) defaultKind() GridKind {
	return KindFace
}

func (s *staggeredSource) buildTopologies(g *Grid) (map[GridKind]*Topology, error) {
	topos := make(map[GridKind]*Topology, len(staggeredKinds))
	for _, kind := range staggeredKinds {
		lat := s.vars[kind][0]
		var builder func() ([]bool, error)
		if kind == KindFace {
			builder = g.defaultKindMask
		} else {
			builder = func() ([]bool, error) {
				return s.propagatedMask(g, kind)
			}
		}
		topo, err := NewTopology(kind, lat.Dims, lat.Shape(), builder)
		if err != nil {
			return nil, err
		}
		topos[kind] = topo
	}
	return topos, nil
}

// propagatedMask derives the left/back/node masks from the face mask, once.
func (s *staggeredSource) propagatedMask(g *Grid, kind GridKind) ([]bool, error) {
	if s.kindMasks == nil {
		face, err := g.defaultKindMask()
		if err != nil {
			return nil, err
		}
		s.kindMasks = MaskFromCentres(face, s.nj, s.ni)
	}
	return s.kindMasks[kind], nil
}

func (s *staggeredSource) derivePolygons() ([][]geom.Point, error) {
	faceLat := s.vars[KindFace][0].Data
	faceLon := s.vars[KindFace][1].Data
	nodeLat := s.vars[KindNode][0].Data
	nodeLon := s.vars[KindNode][1].Data

	rings := make([][]geom.Point, s.nj*s.ni)
	for j := 0; j < s.nj; j++ {
		for i := 0; i < s.ni; i++ {
			linear := j*s.ni + i
			// A cell without a centre is a dry cell, not a degenerate one.
			if math.IsNaN(faceLat.Get(j, i)) || math.IsNaN(faceLon.Get(j, i)) {
				continue
			}
			rings[linear] = []geom.Point{
				{X: nodeLon.Get(j, i), Y: nodeLat.Get(j, i)},
				{X: nodeLon.Get(j, i+1), Y: nodeLat.Get(j, i+1)},
				{X: nodeLon.Get(j+1, i+1), Y: nodeLat.Get(j+1, i+1)},
				{X: nodeLon.Get(j+1, i), Y: nodeLat.Get(j+1, i)},
			}
		}
	}
	return rings, nil
}

func (s *staggeredSource) faceCentres() ([]geom.Point, error) {
	lat := s.vars[KindFace][0].Data
	lon := s.vars[KindFace][1].Data
	centres := make([]geom.Point, s.nj*s.ni)
	for j := 0; j < s.nj; j++ {
		for i := 0; i < s.ni; i++ {
			centres[j*s.ni+i] = geom.Point{X: lon.Get(j, i), Y: lat.Get(j, i)}
		}
	}
	return centres, nil
}

func (s *staggeredSource) masksFromFace(face []bool, buffer int) (map[GridKind][]bool, error) {
	if len(face) != s.nj*s.ni {
		return nil, fmt.Errorf("seagrid: staggered: face mask has %d cells, want %d",
			len(face), s.nj*s.ni)
	}
	if buffer > 0 {
		face = DilateMask(face, s.nj, s.ni, buffer)
	}
	return MaskFromCentres(face, s.nj, s.ni), nil
}

func (s *staggeredSource) geometryVariables() []string {
	names := make([]string, 0, 2*len(staggeredKinds))
	for _, kind := range staggeredKinds {
		pair := s.coords[kind]
		names = append(names, pair.Latitude, pair.Longitude)
	}
	return names
}
