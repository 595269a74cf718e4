package seagrid

import (
	"fmt"
	"strings"
)

// NativeIndex addresses one cell in the index space of a single grid kind.
// The number of coordinates depends on the convention: curvilinear grids use
// two (j, i), mesh grids use one.
//
// A NativeIndex is plain data. It is not validated on construction; grids
// validate it against their topology when it is used.
//
// Example:
//
//	idx := seagrid.FaceIndex(3, 4)
//	linear, err := topo.Ravel(idx)
type NativeIndex struct {
	// Kind names the index space the coordinates belong to.
	Kind GridKind

	// Coords holds the per-dimension positions, slowest dimension first.
	Coords []int
}

// NewIndex builds a native index from a kind and its coordinates.
func NewIndex(kind GridKind, coords ...int) NativeIndex {
	return NativeIndex{Kind: kind, Coords: coords}
}

// FaceIndex builds a two-dimensional face index from row and column
// positions.
func FaceIndex(j, i int) NativeIndex {
	return NativeIndex{Kind: KindFace, Coords: []int{j, i}}
}

func (n NativeIndex) String() string {
	parts := make([]string, len(n.Coords))
	for i, c := range n.Coords {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return fmt.Sprintf("%s(%s)", n.Kind, strings.Join(parts, ", "))
}

// Equal reports whether two native indexes address the same cell.
func (n NativeIndex) Equal(other NativeIndex) bool {
	if n.Kind != other.Kind || len(n.Coords) != len(other.Coords) {
		return false
	}
	for i := range n.Coords {
		if n.Coords[i] != other.Coords[i] {
			return false
		}
	}
	return true
}
