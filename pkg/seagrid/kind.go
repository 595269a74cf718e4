package seagrid

// GridKind identifies one of the index spaces a convention exposes. Simple
// grids have a single kind for cell centres; staggered grids add kinds for
// the offset edge and corner grids that share the same domain.
//
// The bundled kinds cover the conventions shipped with this package.
// Conventions may introduce further kinds as long as they report them from
// their topology set.
type GridKind string

const (
	// KindFace addresses cell centres. Every convention exposes this kind
	// and uses it as the default for geometry and selection.
	KindFace GridKind = "face"

	// KindLeft addresses the grid staggered half a cell to the left, used
	// by Arakawa C layouts for the u components.
	KindLeft GridKind = "left"

	// KindBack addresses the grid staggered half a cell back, used by
	// Arakawa C layouts for the v components.
	KindBack GridKind = "back"

	// KindNode addresses cell corners, shared by staggered and mesh
	// layouts.
	KindNode GridKind = "node"
)

func (k GridKind) String() string {
	return string(k)
}

// containsKind reports whether k appears in kinds.
func containsKind(kinds []GridKind, k GridKind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}
