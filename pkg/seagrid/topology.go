package seagrid

import "fmt"

// Topology describes the index space of one grid kind: its shape, the
// mapping between native and linear indexes, and which cells are valid.
//
// Linear indexes are dense and row-major over the whole shape, so Ravel and
// Unravel round-trip for every cell, masked or not. Masking only changes
// what Valid and Size report.
//
// The validity mask is computed once, on first use, by a builder the owning
// convention supplies; repeated access returns the memoized slice. The
// memoization is not synchronized. See the Grid documentation for the
// concurrency contract.
type Topology struct {
	kind      GridKind
	dims      []string
	shape     []int
	linear    int
	buildMask func() ([]bool, error)

	mask    []bool
	maskErr error
	built   bool
	valid   int
}

// NewTopology builds a topology for one grid kind over the named dimensions.
// maskBuilder produces the linear validity mask on first demand; nil marks
// every cell valid.
func NewTopology(kind GridKind, dims []string, shape []int, maskBuilder func() ([]bool, error)) (*Topology, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("seagrid: topology %s: empty shape", kind)
	}
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("seagrid: topology %s: %d dimension names for %d axes",
			kind, len(dims), len(shape))
	}
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("seagrid: topology %s: dimension length %d", kind, s)
		}
		n *= s
	}
	return &Topology{
		kind:      kind,
		dims:      dims,
		shape:     shape,
		linear:    n,
		buildMask: maskBuilder,
	}, nil
}

// Kind returns the grid kind this topology indexes.
func (t *Topology) Kind() GridKind {
	return t.kind
}

// Dimensions returns the dataset dimension names backing each axis, slowest
// first. Callers must not modify the returned slice.
func (t *Topology) Dimensions() []string {
	return t.dims
}

// Shape returns the per-dimension lengths, slowest dimension first. Callers
// must not modify the returned slice.
func (t *Topology) Shape() []int {
	return t.shape
}

// Arity returns the number of coordinates a native index of this kind
// carries.
func (t *Topology) Arity() int {
	return len(t.shape)
}

// LinearSize returns the number of cells in the dense linear index space,
// valid or not.
func (t *Topology) LinearSize() int {
	return t.linear
}

// Mask returns the linear validity mask, computing it on first call.
// Callers must not modify the returned slice.
func (t *Topology) Mask() ([]bool, error) {
	if t.built {
		return t.mask, t.maskErr
	}
	t.built = true
	if t.buildMask == nil {
		t.mask = make([]bool, t.linear)
		for i := range t.mask {
			t.mask[i] = true
		}
		t.valid = t.linear
		return t.mask, nil
	}
	mask, err := t.buildMask()
	if err != nil {
		t.maskErr = fmt.Errorf("seagrid: topology %s: %w", t.kind, err)
		return nil, t.maskErr
	}
	if len(mask) != t.linear {
		t.maskErr = fmt.Errorf("seagrid: topology %s: mask length %d for %d cells",
			t.kind, len(mask), t.linear)
		return nil, t.maskErr
	}
	t.mask = mask
	for _, ok := range mask {
		if ok {
			t.valid++
		}
	}
	return t.mask, nil
}

// Size returns the number of valid cells.
func (t *Topology) Size() (int, error) {
	if _, err := t.Mask(); err != nil {
		return 0, err
	}
	return t.valid, nil
}

// Ravel converts a native index to its linear index. The index must carry
// this topology's kind, the right number of coordinates, and in-range
// values. Masked cells ravel like any other.
func (t *Topology) Ravel(idx NativeIndex) (int, error) {
	if idx.Kind != t.kind || len(idx.Coords) != len(t.shape) {
		return 0, &IndexError{Index: idx, Reason: ErrInvalidIndex}
	}
	linear := 0
	for i, c := range idx.Coords {
		if c < 0 || c >= t.shape[i] {
			return 0, &IndexError{Index: idx, Reason: ErrOutOfBounds}
		}
		linear = linear*t.shape[i] + c
	}
	return linear, nil
}

// Unravel converts a linear index back to its native form.
func (t *Topology) Unravel(linear int) (NativeIndex, error) {
	if linear < 0 || linear >= t.linear {
		return NativeIndex{}, &IndexError{
			Index:  NativeIndex{Kind: t.kind, Coords: []int{linear}},
			Reason: ErrOutOfBounds,
		}
	}
	coords := make([]int, len(t.shape))
	for i := len(t.shape) - 1; i >= 0; i-- {
		coords[i] = linear % t.shape[i]
		linear /= t.shape[i]
	}
	return NativeIndex{Kind: t.kind, Coords: coords}, nil
}

// Valid reports whether idx addresses a valid cell. Indexes of the wrong
// kind or arity are an error; well-formed indexes outside the shape are
// simply not valid.
func (t *Topology) Valid(idx NativeIndex) (bool, error) {
	if idx.Kind != t.kind || len(idx.Coords) != len(t.shape) {
		return false, &IndexError{Index: idx, Reason: ErrInvalidIndex}
	}
	for i, c := range idx.Coords {
		if c < 0 || c >= t.shape[i] {
			return false, nil
		}
	}
	linear, err := t.Ravel(idx)
	if err != nil {
		return false, err
	}
	mask, err := t.Mask()
	if err != nil {
		return false, err
	}
	return mask[linear], nil
}
