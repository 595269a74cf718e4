package seagrid

import (
	"fmt"
	"math"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/seagrid/seagrid/internal/gridgeom"
)

// Convention recognises one dataset layout and binds grids over it.
//
// Detect must be a pure predicate over metadata - dimension names, variable
// shapes and attributes, never data values - and must not fail: a dataset
// either looks like this convention's layout or it does not. Bind may fail,
// for example when the metadata promised a layout the data cannot deliver.
//
// Convention values are stateless and reusable; every per-dataset product
// lives on the Grid that Bind returns.
type Convention interface {
	Name() string
	Detect(ds *Dataset) bool
	Bind(ds *Dataset, opts *BindOptions) (*Grid, error)
}

// buildStage tracks how much of a grid has been materialised. Transitions
// are one-way.
type buildStage int

const (
	stageBound buildStage = iota
	stageTopologies
	stagePolygons
	stageIndexed
)

func (s buildStage) String() string {
	switch s {
	case stageBound:
		return "bound"
	case stageTopologies:
		return "topologies"
	case stagePolygons:
		return "polygons"
	case stageIndexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// gridSource is how a convention family feeds the shared grid engine.
// One source instance is created per Bind and may memoize per-dataset work.
type gridSource interface {
	// kinds returns every grid kind of the convention.
	kinds() []GridKind

	// defaultKind returns the kind cell geometry is defined over.
	defaultKind() GridKind

	// buildTopologies constructs one topology per kind. Mask builders may
	// call back into the grid, which forwards the default-kind mask from
	// polygon derivation.
	buildTopologies(g *Grid) (map[GridKind]*Topology, error)

	// derivePolygons returns one ring per cell of the default kind, dense
	// over the linear index space. A nil ring marks an invalid cell.
	derivePolygons() ([][]geom.Point, error)

	// faceCentres returns the cell centre per default-kind linear index,
	// or nil when the convention has no centre coordinates; the engine
	// then falls back to polygon centroids.
	faceCentres() ([]geom.Point, error)

	// masksFromFace expands a default-kind mask, buffered by the given
	// number of cells, into a mask per kind.
	masksFromFace(face []bool, buffer int) (map[GridKind][]bool, error)

	// geometryVariables names the coordinate and topology variables the
	// convention consumed from the dataset.
	geometryVariables() []string
}

// Grid is a dataset bound to one convention: per-kind topologies, one
// polygon per valid cell, and a spatial index over those polygons.
//
// Construction is staged and lazy. Binding only captures metadata;
// topologies, polygons and the spatial index are built on first use and
// memoized, without locking. Concurrent reads of already-built state are
// safe; the first access that triggers a build must be serialized by the
// caller. Build forces every stage, after which the grid is read-only and
// safe to share across goroutines.
//
// All fields are private to maintain encapsulation.
type Grid struct {
	convention Convention
	dataset    *Dataset
	source     gridSource
	opts       *BindOptions

	stage buildStage

	topologies map[GridKind]*Topology

	// stagePolygons products. polygons, cellLinear, centres and centroids
	// are compacted: one entry per valid cell, in ascending linear order.
	defaultMask []bool
	polygons    []geom.Polygon
	cellLinear  []int
	positions   []int // linear -> compacted position, -1 for invalid cells
	centres     []geom.Point
	centroids   []geom.Point
	bounds      *geom.Bounds

	index *spatialIndex
}

// newGrid wires a per-bind source into the shared engine.
func newGrid(conv Convention, ds *Dataset, src gridSource, opts *BindOptions) *Grid {
	return &Grid{
		convention: conv,
		dataset:    ds,
		source:     src,
		opts:       opts,
		stage:      stageBound,
	}
}

// Convention returns the convention this grid was bound with.
func (g *Grid) Convention() Convention {
	return g.convention
}

// Dataset returns the dataset this grid was bound over. The dataset must not
// be mutated while the grid is in use.
func (g *Grid) Dataset() *Dataset {
	return g.dataset
}

// Kinds returns every grid kind of the convention.
func (g *Grid) Kinds() []GridKind {
	src := g.source.kinds()
	out := make([]GridKind, len(src))
	copy(out, src)
	return out
}

// DefaultKind returns the kind cell geometry and selection operate on.
func (g *Grid) DefaultKind() GridKind {
	return g.source.defaultKind()
}

// Stage returns how much of the grid has been materialised.
func (g *Grid) Stage() string {
	return g.stage.String()
}

// Build forces every construction stage: topologies, polygons and the
// spatial index. Call it before sharing the grid across goroutines.
func (g *Grid) Build() error {
	return g.ensureIndex()
}

func (g *Grid) ensureTopologies() error {
	if g.stage >= stageTopologies {
		return nil
	}
	start := time.Now()
	topos, err := g.source.buildTopologies(g)
	if err != nil {
		return fmt.Errorf("seagrid: %s: build topologies: %w", g.convention.Name(), err)
	}
	for _, kind := range g.source.kinds() {
		if _, ok := topos[kind]; !ok {
			return fmt.Errorf("seagrid: %s: no topology built for kind %s",
				g.convention.Name(), kind)
		}
	}
	g.topologies = topos
	g.stage = stageTopologies

	log := g.opts.logger()
	for _, kind := range g.source.kinds() {
		log.Debug("topology built",
			"convention", g.convention.Name(),
			"kind", kind.String(),
			"shape", topos[kind].Shape())
	}
	log.Debug("stage complete",
		"convention", g.convention.Name(),
		"stage", g.stage.String(),
		"duration", time.Since(start))
	return nil
}

func (g *Grid) ensurePolygons() error {
	if err := g.ensureTopologies(); err != nil {
		return err
	}
	if g.stage >= stagePolygons {
		return nil
	}
	start := time.Now()

	rings, err := g.source.derivePolygons()
	if err != nil {
		return fmt.Errorf("seagrid: %s: derive polygons: %w", g.convention.Name(), err)
	}
	topo := g.topologies[g.source.defaultKind()]
	if len(rings) != topo.LinearSize() {
		return fmt.Errorf("seagrid: %s: %d rings for %d cells",
			g.convention.Name(), len(rings), topo.LinearSize())
	}

	centres, err := g.source.faceCentres()
	if err != nil {
		return fmt.Errorf("seagrid: %s: face centres: %w", g.convention.Name(), err)
	}
	if centres != nil && len(centres) != len(rings) {
		return fmt.Errorf("seagrid: %s: %d face centres for %d cells",
			g.convention.Name(), len(centres), len(rings))
	}

	log := g.opts.logger()
	mask := make([]bool, len(rings))
	positions := make([]int, len(rings))
	var polygons []geom.Polygon
	var cellLinear []int
	var compactCentres, centroids []geom.Point
	var bounds *geom.Bounds
	degenerate := 0

	for linear, ring := range rings {
		positions[linear] = -1
		if ring == nil {
			continue
		}
		ring = gridgeom.Dedupe(ring)
		if !gridgeom.IsFinite(ring) || len(ring) < 3 {
			// Degenerate outline: mask the cell out rather than fail.
			degenerate++
			log.Debug("degenerate cell masked",
				"convention", g.convention.Name(),
				"linear", linear)
			continue
		}
		gridgeom.EnsureCounterClockwise(ring)
		poly := geom.Polygon{ring}

		mask[linear] = true
		positions[linear] = len(polygons)
		polygons = append(polygons, poly)
		cellLinear = append(cellLinear, linear)

		centroid := poly.Centroid()
		centroids = append(centroids, centroid)
		centre := centroid
		if centres != nil && isFinitePoint(centres[linear]) {
			centre = centres[linear]
		}
		compactCentres = append(compactCentres, centre)

		pb := poly.Bounds()
		if bounds == nil {
			bounds = &geom.Bounds{Min: pb.Min, Max: pb.Max}
		} else {
			bounds.Min.X = math.Min(bounds.Min.X, pb.Min.X)
			bounds.Min.Y = math.Min(bounds.Min.Y, pb.Min.Y)
			bounds.Max.X = math.Max(bounds.Max.X, pb.Max.X)
			bounds.Max.Y = math.Max(bounds.Max.Y, pb.Max.Y)
		}
	}

	g.defaultMask = mask
	g.polygons = polygons
	g.cellLinear = cellLinear
	g.positions = positions
	g.centres = compactCentres
	g.centroids = centroids
	g.bounds = bounds
	g.stage = stagePolygons

	log.Debug("stage complete",
		"convention", g.convention.Name(),
		"stage", g.stage.String(),
		"valid", len(polygons),
		"degenerate", degenerate,
		"duration", time.Since(start))
	return nil
}

func (g *Grid) ensureIndex() error {
	if err := g.ensurePolygons(); err != nil {
		return err
	}
	if g.stage >= stageIndexed {
		return nil
	}
	start := time.Now()

	topo := g.topologies[g.source.defaultKind()]
	cells := make([]*indexedCell, len(g.polygons))
	for pos, poly := range g.polygons {
		linear := g.cellLinear[pos]
		native, err := topo.Unravel(linear)
		if err != nil {
			return err
		}
		cells[pos] = &indexedCell{
			position: pos,
			linear:   linear,
			native:   native,
			polygon:  poly,
			bounds:   poly.Bounds(),
		}
	}
	if len(cells) > 0 {
		g.index = newSpatialIndex(cells)
	}
	g.stage = stageIndexed

	g.opts.logger().Debug("stage complete",
		"convention", g.convention.Name(),
		"stage", g.stage.String(),
		"cells", len(cells),
		"duration", time.Since(start))
	return nil
}

// defaultKindMask returns the validity mask of the default kind, deriving
// polygons first if needed. Topology mask builders call this.
func (g *Grid) defaultKindMask() ([]bool, error) {
	if err := g.ensurePolygons(); err != nil {
		return nil, err
	}
	return g.defaultMask, nil
}

// Topology returns the topology for one grid kind.
func (g *Grid) Topology(kind GridKind) (*Topology, error) {
	if err := g.ensureTopologies(); err != nil {
		return nil, err
	}
	topo, ok := g.topologies[kind]
	if !ok {
		return nil, fmt.Errorf("seagrid: convention %s has no kind %s: %w",
			g.convention.Name(), kind, ErrInvalidIndex)
	}
	return topo, nil
}

// Ravel converts a native index to its linear index via the topology of the
// index's kind.
func (g *Grid) Ravel(idx NativeIndex) (int, error) {
	topo, err := g.Topology(idx.Kind)
	if err != nil {
		return 0, err
	}
	return topo.Ravel(idx)
}

// Unravel converts a linear index of the given kind back to native form.
func (g *Grid) Unravel(kind GridKind, linear int) (NativeIndex, error) {
	topo, err := g.Topology(kind)
	if err != nil {
		return NativeIndex{}, err
	}
	return topo.Unravel(linear)
}

// Polygons returns one polygon per valid cell of the default kind, in
// ascending linear order. Ring vertices wind counter-clockwise with implicit
// closure. Callers must not modify the returned slice.
func (g *Grid) Polygons() ([]geom.Polygon, error) {
	if err := g.ensurePolygons(); err != nil {
		return nil, err
	}
	return g.polygons, nil
}

// CellIndexes returns the linear index of each polygon-list position.
// Callers must not modify the returned slice.
func (g *Grid) CellIndexes() ([]int, error) {
	if err := g.ensurePolygons(); err != nil {
		return nil, err
	}
	return g.cellLinear, nil
}

// PositionForLinear returns the polygon-list position of a default-kind
// linear index. The second result is false for masked cells, which have no
// polygon.
func (g *Grid) PositionForLinear(linear int) (int, bool, error) {
	if err := g.ensurePolygons(); err != nil {
		return 0, false, err
	}
	if linear < 0 || linear >= len(g.positions) {
		return 0, false, &IndexError{
			Index:  NativeIndex{Kind: g.source.defaultKind(), Coords: []int{linear}},
			Reason: ErrOutOfBounds,
		}
	}
	pos := g.positions[linear]
	if pos < 0 {
		return 0, false, nil
	}
	return pos, true, nil
}

// FaceCentres returns the centre of each valid cell, aligned with Polygons.
// Conventions with centre coordinates report those; the rest fall back to
// polygon centroids. Callers must not modify the returned slice.
func (g *Grid) FaceCentres() ([]geom.Point, error) {
	if err := g.ensurePolygons(); err != nil {
		return nil, err
	}
	return g.centres, nil
}

// Bounds returns the bounding box of all valid cell polygons, or nil for a
// grid with no valid cells.
func (g *Grid) Bounds() (*geom.Bounds, error) {
	if err := g.ensurePolygons(); err != nil {
		return nil, err
	}
	if g.bounds == nil {
		return nil, nil
	}
	b := *g.bounds
	return &b, nil
}

// KindForVariable matches a variable's trailing dimensions against the
// convention's grid kinds.
func (g *Grid) KindForVariable(v *Variable) (GridKind, error) {
	if err := g.ensureTopologies(); err != nil {
		return "", err
	}
	for _, kind := range g.source.kinds() {
		dims := g.topologies[kind].Dimensions()
		if hasTrailingDims(v.Dims, dims) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("seagrid: variable %q lies on no grid kind of %s",
		v.Name, g.convention.Name())
}

// hasTrailingDims reports whether have ends with want.
func hasTrailingDims(have, want []string) bool {
	if len(have) < len(want) {
		return false
	}
	offset := len(have) - len(want)
	for i, dim := range want {
		if have[offset+i] != dim {
			return false
		}
	}
	return true
}

// LinearValues reshapes a variable so its grid dimensions collapse into one
// trailing linear dimension, leading dimensions such as time or depth
// preserved. The result shares the variable's underlying storage.
func (g *Grid) LinearValues(v *Variable) (*sparse.DenseArray, error) {
	kind, err := g.KindForVariable(v)
	if err != nil {
		return nil, err
	}
	topo := g.topologies[kind]
	lead := v.Data.Shape[:len(v.Data.Shape)-topo.Arity()]

	shape := make([]int, 0, len(lead)+1)
	shape = append(shape, lead...)
	shape = append(shape, topo.LinearSize())
	out := sparse.ZerosDense(shape...)
	out.Elements = v.Data.Elements
	return out, nil
}

// SelectorForIndex maps a native index to dimension name -> coordinate,
// the form data-access layers use to slice the underlying dataset.
func (g *Grid) SelectorForIndex(idx NativeIndex) (map[string]int, error) {
	topo, err := g.Topology(idx.Kind)
	if err != nil {
		return nil, err
	}
	if _, err := topo.Ravel(idx); err != nil {
		return nil, err
	}
	sel := make(map[string]int, topo.Arity())
	for i, dim := range topo.Dimensions() {
		sel[dim] = idx.Coords[i]
	}
	return sel, nil
}

// DropGeometry returns the dataset without the coordinate and topology
// variables the convention consumed, leaving only data variables.
func (g *Grid) DropGeometry() *Dataset {
	return g.dataset.Without(g.source.geometryVariables()...)
}

func isFinitePoint(p geom.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}
