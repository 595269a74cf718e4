package seagrid

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/geom"
)

// Mesh is the unstructured mesh convention: cells are arbitrary polygons
// described by a connectivity table over a shared pool of nodes. Two index
// spaces, face and node, both one-dimensional.
//
// A dataset opts in through a mesh topology variable: any variable with
// attribute cf_role = "mesh_topology". Its attributes name the rest:
//
//	face_node_connectivity  (nface, max_nodes_per_face) node ids per face
//	node_coordinates        "x y" node coordinate variable names
//	face_coordinates        optional "x y" face centre variable names
//	face_dimension          optional, marks which connectivity axis is faces
//	start_index             optional, 0 or 1 (default 0)
//
// Connectivity rows may be ragged: entries equal to the connectivity
// variable's _FillValue, and negative entries, mark absent nodes. Faces with
// fewer than three resolvable distinct nodes are masked invalid.
type Mesh struct{}

// NewMesh returns the convention.
func NewMesh() *Mesh {
	return &Mesh{}
}

// Name implements Convention.
func (c *Mesh) Name() string {
	return "mesh"
}

// findMeshTopology returns the first variable declaring itself a mesh
// topology.
func findMeshTopology(ds *Dataset) *Variable {
	for _, name := range ds.Variables() {
		v := ds.Variable(name)
		if role, ok := v.StringAttr("cf_role"); ok && role == "mesh_topology" {
			return v
		}
	}
	return nil
}

// Detect reports whether some variable declares a mesh topology with face
// connectivity.
func (c *Mesh) Detect(ds *Dataset) bool {
	mesh := findMeshTopology(ds)
	if mesh == nil {
		return false
	}
	_, ok := mesh.StringAttr("face_node_connectivity")
	return ok
}

// splitCoordinateNames parses an "x_name y_name" coordinate attribute.
func splitCoordinateNames(attr string) (x, y string, ok bool) {
	parts := strings.Fields(attr)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// resolveCoordinatePair looks the named pair up and sorts out which is
// longitude and which is latitude. Attribute metadata wins; without it the
// conventional "x y" order holds.
func resolveCoordinatePair(ds *Dataset, xName, yName string) (lon, lat *Variable, err error) {
	x := ds.Variable(xName)
	y := ds.Variable(yName)
	if x == nil || y == nil {
		return nil, nil, fmt.Errorf("coordinate variables %q, %q not both present", xName, yName)
	}
	if isLatitude(xName, x) || isLongitude(yName, y) {
		return y, x, nil
	}
	return x, y, nil
}

// Bind implements Convention.
func (c *Mesh) Bind(ds *Dataset, opts *BindOptions) (*Grid, error) {
	mesh := findMeshTopology(ds)
	if mesh == nil {
		return nil, fmt.Errorf("seagrid: mesh: no mesh topology variable")
	}

	connName, ok := mesh.StringAttr("face_node_connectivity")
	if !ok {
		return nil, fmt.Errorf("seagrid: mesh: %q names no face_node_connectivity", mesh.Name)
	}
	conn := ds.Variable(connName)
	if conn == nil {
		return nil, fmt.Errorf("seagrid: mesh: connectivity variable %q not present", connName)
	}
	if len(conn.Dims) != 2 {
		return nil, fmt.Errorf("seagrid: mesh: connectivity %q is not 2-D", connName)
	}

	nodeAttr, ok := mesh.StringAttr("node_coordinates")
	if !ok {
		return nil, fmt.Errorf("seagrid: mesh: %q names no node_coordinates", mesh.Name)
	}
	xName, yName, ok := splitCoordinateNames(nodeAttr)
	if !ok {
		return nil, fmt.Errorf("seagrid: mesh: node_coordinates %q is not two names", nodeAttr)
	}
	nodeLon, nodeLat, err := resolveCoordinatePair(ds, xName, yName)
	if err != nil {
		return nil, fmt.Errorf("seagrid: mesh: %w", err)
	}
	if len(nodeLon.Dims) != 1 || len(nodeLat.Dims) != 1 || nodeLon.Dims[0] != nodeLat.Dims[0] {
		return nil, fmt.Errorf("seagrid: mesh: node coordinates must be 1-D over one dimension")
	}

	// Faces are the first connectivity axis unless face_dimension says
	// otherwise.
	transposed := false
	faceDim := conn.Dims[0]
	if fd, ok := mesh.StringAttr("face_dimension"); ok {
		switch fd {
		case conn.Dims[0]:
		case conn.Dims[1]:
			transposed = true
			faceDim = conn.Dims[1]
		default:
			return nil, fmt.Errorf("seagrid: mesh: face_dimension %q is no axis of %q",
				fd, connName)
		}
	}

	startIndex := 0
	if si, ok := conn.FloatAttr("start_index"); ok {
		if si != 0 && si != 1 {
			return nil, fmt.Errorf("seagrid: mesh: start_index %v is not 0 or 1", si)
		}
		startIndex = int(si)
	}

	src := &meshSource{
		ds:         ds,
		mesh:       mesh,
		conn:       conn,
		transposed: transposed,
		startIndex: startIndex,
		faceDim:    faceDim,
		nodeDim:    nodeLat.Dims[0],
		nodeLon:    nodeLon,
		nodeLat:    nodeLat,
	}
	src.fill, src.hasFill = conn.FillValue()

	if fc, ok := mesh.StringAttr("face_coordinates"); ok {
		if fx, fy, ok := splitCoordinateNames(fc); ok {
			lon, lat, err := resolveCoordinatePair(ds, fx, fy)
			if err == nil && len(lon.Dims) == 1 && len(lat.Dims) == 1 &&
				lon.Dims[0] == faceDim && lat.Dims[0] == faceDim {
				src.faceLon, src.faceLat = lon, lat
			}
		}
	}

	return newGrid(c, ds, src, opts), nil
}

// meshSource carries the per-bind state of one mesh grid.
type meshSource struct {
	ds   *Dataset
	mesh *Variable
	conn *Variable

	transposed bool
	startIndex int
	fill       float64
	hasFill    bool

	faceDim, nodeDim string
	nodeLon, nodeLat *Variable
	faceLon, faceLat *Variable // optional centre coordinates

	// faceNodes memoizes the resolved node ids per face.
	faceNodes [][]int
}

func (s *meshSource) kinds() []GridKind {
	return []GridKind{KindFace, KindNode}
}

func (s *meshSource) defaultKind() GridKind {
	return KindFace
}

func (s *meshSource) counts() (nface, maxNodes, nnode int) {
	shape := s.conn.Shape()
	nface, maxNodes = shape[0], shape[1]
	if s.transposed {
		nface, maxNodes = shape[1], shape[0]
	}
	return nface, maxNodes, s.nodeLat.Shape()[0]
}

func (s *meshSource) connAt(face, slot int) float64 {
	if s.transposed {
		return s.conn.Data.Get(slot, face)
	}
	return s.conn.Data.Get(face, slot)
}

// nodeIDs resolves the connectivity row of every face: start_index removed,
// fill and negative entries dropped, out-of-range ids dropped.
func (s *meshSource) nodeIDs() [][]int {
	if s.faceNodes != nil {
		return s.faceNodes
	}
	nface, maxNodes, nnode := s.counts()
	s.faceNodes = make([][]int, nface)
	for f := 0; f < nface; f++ {
		ids := make([]int, 0, maxNodes)
		for k := 0; k < maxNodes; k++ {
			raw := s.connAt(f, k)
			if math.IsNaN(raw) || raw < 0 {
				continue
			}
			if s.hasFill && raw == s.fill {
				continue
			}
			id := int(raw) - s.startIndex
			if id < 0 || id >= nnode {
				continue
			}
			ids = append(ids, id)
		}
		s.faceNodes[f] = ids
	}
	return s.faceNodes
}

func (s *meshSource) buildTopologies(g *Grid) (map[GridKind]*Topology, error) {
	nface, _, nnode := s.counts()

	face, err := NewTopology(KindFace, []string{s.faceDim}, []int{nface}, g.defaultKindMask)
	if err != nil {
		return nil, err
	}
	node, err := NewTopology(KindNode, []string{s.nodeDim}, []int{nnode}, func() ([]bool, error) {
		return s.nodeMask(g)
	})
	if err != nil {
		return nil, err
	}
	return map[GridKind]*Topology{KindFace: face, KindNode: node}, nil
}

// nodeMask marks every node referenced by a valid face.
func (s *meshSource) nodeMask(g *Grid) ([]bool, error) {
	faceMask, err := g.defaultKindMask()
	if err != nil {
		return nil, err
	}
	return s.nodesOfFaces(faceMask), nil
}

func (s *meshSource) nodesOfFaces(faceMask []bool) []bool {
	_, _, nnode := s.counts()
	mask := make([]bool, nnode)
	for f, ids := range s.nodeIDs() {
		if !faceMask[f] {
			continue
		}
		for _, id := range ids {
			mask[id] = true
		}
	}
	return mask
}

func (s *meshSource) derivePolygons() ([][]geom.Point, error) {
	nface, _, _ := s.counts()
	lon := s.nodeLon.Data.Elements
	lat := s.nodeLat.Data.Elements

	rings := make([][]geom.Point, nface)
	for f, ids := range s.nodeIDs() {
		if len(ids) < 3 {
			continue
		}
		ring := make([]geom.Point, len(ids))
		for k, id := range ids {
			ring[k] = geom.Point{X: lon[id], Y: lat[id]}
		}
		rings[f] = ring
	}
	return rings, nil
}

func (s *meshSource) faceCentres() ([]geom.Point, error) {
	if s.faceLon == nil || s.faceLat == nil {
		return nil, nil
	}
	nface, _, _ := s.counts()
	centres := make([]geom.Point, nface)
	for f := 0; f < nface; f++ {
		centres[f] = geom.Point{
			X: s.faceLon.Data.Elements[f],
			Y: s.faceLat.Data.Elements[f],
		}
	}
	return centres, nil
}

// masksFromFace buffers by topological adjacency: each step adds every face
// sharing a node with an included face.
func (s *meshSource) masksFromFace(face []bool, buffer int) (map[GridKind][]bool, error) {
	nface, _, _ := s.counts()
	if len(face) != nface {
		return nil, fmt.Errorf("seagrid: mesh: face mask has %d cells, want %d",
			len(face), nface)
	}
	current := make([]bool, len(face))
	copy(current, face)
	for step := 0; step < buffer; step++ {
		touched := s.nodesOfFaces(current)
		next := make([]bool, len(current))
		copy(next, current)
		for f, ids := range s.nodeIDs() {
			if next[f] {
				continue
			}
			for _, id := range ids {
				if touched[id] {
					next[f] = true
					break
				}
			}
		}
		current = next
	}
	return map[GridKind][]bool{
		KindFace: current,
		KindNode: s.nodesOfFaces(current),
	}, nil
}

func (s *meshSource) geometryVariables() []string {
	names := []string{s.mesh.Name, s.conn.Name, s.nodeLon.Name, s.nodeLat.Name}
	if s.faceLon != nil {
		names = append(names, s.faceLon.Name, s.faceLat.Name)
	}
	// The mesh variable may name further topology helpers; drop them too.
	for _, attr := range []string{
		"edge_node_connectivity", "face_edge_connectivity",
		"face_face_connectivity", "boundary_node_connectivity",
	} {
		if n, ok := s.mesh.StringAttr(attr); ok && s.ds.HasVariable(n) {
			names = append(names, n)
		}
	}
	return names
}
