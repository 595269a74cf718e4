package seagrid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Mask propagation for staggered grids and clip-mask support.
//
// Masks are linear []bool slices in row-major (j, i) order. A true entry
// marks a valid (wet) cell. Propagation is positional: a derived position is
// valid when any of the cells it sits between is valid, and neighbours
// outside the grid count as invalid.

// SmearMask widens a (nj, ni) mask along the padded axes. The output axis
// grows by one cell where padding is requested, and an output position is
// true when any input position it covers is true: with padI, output (j, i)
// covers inputs (j, i-1) and (j, i); with padJ, inputs (j-1, i) and (j, i);
// with both, all four combinations.
//
// Returns the widened mask and its shape.
func SmearMask(mask []bool, nj, ni int, padJ, padI bool) ([]bool, int, int) {
	offJ := []int{0}
	if padJ {
		offJ = []int{-1, 0}
	}
	offI := []int{0}
	if padI {
		offI = []int{-1, 0}
	}

	mj, mi := nj, ni
	if padJ {
		mj++
	}
	if padI {
		mi++
	}

	out := make([]bool, mj*mi)
	for j := 0; j < mj; j++ {
		for i := 0; i < mi; i++ {
			for _, dj := range offJ {
				sj := j + dj
				if sj < 0 || sj >= nj {
					continue
				}
				for _, di := range offI {
					si := i + di
					if si < 0 || si >= ni {
						continue
					}
					if mask[sj*ni+si] {
						out[j*mi+i] = true
					}
				}
			}
		}
	}
	return out, mj, mi
}

// MaskFromCentres derives the masks of every staggered kind from a (nj, ni)
// face mask:
//
//   - face: a copy of the input
//   - left (nj, ni+1): valid where either horizontally adjacent face is
//   - back (nj+1, ni): valid where either vertically adjacent face is
//   - node (nj+1, ni+1): valid where any of the four surrounding faces is
func MaskFromCentres(face []bool, nj, ni int) map[GridKind][]bool {
	faceCopy := make([]bool, len(face))
	copy(faceCopy, face)

	left, _, _ := SmearMask(face, nj, ni, false, true)
	back, _, _ := SmearMask(face, nj, ni, true, false)
	node, _, _ := SmearMask(face, nj, ni, true, true)

	return map[GridKind][]bool{
		KindFace: faceCopy,
		KindLeft: left,
		KindBack: back,
		KindNode: node,
	}
}

// ClipMask computes, for every kind of the convention, which cells to keep
// when clipping the dataset to a region: the default-kind cells whose
// polygon intersects clip, grown outward by buffer cells, propagated to the
// other kinds the way MaskFromCentres propagates.
//
// Use ApplyClipMask to produce the clipped dataset.
func (g *Grid) ClipMask(clip geom.Polygonal, buffer int) (map[GridKind][]bool, error) {
	cells, err := g.intersectingCells(clip)
	if err != nil {
		return nil, err
	}
	topo, err := g.Topology(g.DefaultKind())
	if err != nil {
		return nil, err
	}
	face := make([]bool, topo.LinearSize())
	for _, c := range cells {
		face[c.linear] = true
	}
	return g.source.masksFromFace(face, buffer)
}

// ApplyClipMask returns a copy of the dataset with values outside the clip
// masks replaced by NaN. Every variable lying on a grid kind is masked with
// that kind's entry, coordinate variables included, so binding the result
// again yields only the clipped cells. Variables on no grid kind pass
// through untouched.
func (g *Grid) ApplyClipMask(masks map[GridKind][]bool) (*Dataset, error) {
	if err := g.ensureTopologies(); err != nil {
		return nil, err
	}
	out := g.dataset.Copy()
	for _, name := range out.Variables() {
		v := out.Variable(name)
		kind, err := g.KindForVariable(v)
		if err != nil {
			continue
		}
		mask, ok := masks[kind]
		if !ok {
			continue
		}
		topo := g.topologies[kind]
		if len(mask) != topo.LinearSize() {
			return nil, fmt.Errorf("seagrid: clip mask for kind %s has %d cells, topology has %d",
				kind, len(mask), topo.LinearSize())
		}
		applyMaskNaN(v.Data.Elements, mask)
	}
	return out, nil
}

// applyMaskNaN blanks masked-out cells across every leading-dimension block.
func applyMaskNaN(elements []float64, mask []bool) {
	nan := math.NaN()
	for base := 0; base < len(elements); base += len(mask) {
		for linear, keep := range mask {
			if !keep {
				elements[base+linear] = nan
			}
		}
	}
}

// DilateMask grows a (nj, ni) mask by size cells in every direction,
// including diagonals: an output cell is true when any input cell within a
// (2*size+1)-square neighbourhood is true. size <= 0 returns a copy.
func DilateMask(mask []bool, nj, ni int, size int) []bool {
	out := make([]bool, len(mask))
	if size <= 0 {
		copy(out, mask)
		return out
	}
	for j := 0; j < nj; j++ {
		for i := 0; i < ni; i++ {
			if !mask[j*ni+i] {
				continue
			}
			jlo, jhi := j-size, j+size
			if jlo < 0 {
				jlo = 0
			}
			if jhi >= nj {
				jhi = nj - 1
			}
			ilo, ihi := i-size, i+size
			if ilo < 0 {
				ilo = 0
			}
			if ihi >= ni {
				ihi = ni - 1
			}
			for sj := jlo; sj <= jhi; sj++ {
				for si := ilo; si <= ihi; si++ {
					out[sj*ni+si] = true
				}
			}
		}
	}
	return out
}
