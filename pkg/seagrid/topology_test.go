package seagrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFaceTopology(t *testing.T, nj, ni int, mask func() ([]bool, error)) *Topology {
	t.Helper()
	topo, err := NewTopology(KindFace, []string{"j", "i"}, []int{nj, ni}, mask)
	require.NoError(t, err)
	return topo
}

func TestNewTopologyRejectsBadShapes(t *testing.T) {
	_, err := NewTopology(KindFace, nil, nil, nil)
	require.Error(t, err, "empty shape")

	_, err = NewTopology(KindFace, []string{"j"}, []int{3, 4}, nil)
	require.Error(t, err, "dimension name count mismatch")

	_, err = NewTopology(KindFace, []string{"j", "i"}, []int{3, 0}, nil)
	require.Error(t, err, "zero-length dimension")
}

func TestTopologyRavelUnravelRoundTrip(t *testing.T) {
	topo := newFaceTopology(t, 3, 5, nil)
	require.Equal(t, 15, topo.LinearSize())
	require.Equal(t, 2, topo.Arity())

	// Every cell of the dense linear space round-trips, row-major.
	linear := 0
	for j := 0; j < 3; j++ {
		for i := 0; i < 5; i++ {
			idx := FaceIndex(j, i)
			got, err := topo.Ravel(idx)
			require.NoError(t, err)
			require.Equal(t, linear, got)

			back, err := topo.Unravel(linear)
			require.NoError(t, err)
			require.True(t, idx.Equal(back), "unravel(%d) = %v", linear, back)
			linear++
		}
	}
}

func TestTopologyRavelErrors(t *testing.T) {
	topo := newFaceTopology(t, 3, 5, nil)

	_, err := topo.Ravel(NewIndex(KindNode, 0, 0))
	require.ErrorIs(t, err, ErrInvalidIndex, "wrong kind")

	_, err = topo.Ravel(NewIndex(KindFace, 1))
	require.ErrorIs(t, err, ErrInvalidIndex, "wrong arity")

	_, err = topo.Ravel(FaceIndex(3, 0))
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = topo.Ravel(FaceIndex(0, -1))
	require.ErrorIs(t, err, ErrOutOfBounds)

	var idxErr *IndexError
	require.True(t, errors.As(err, &idxErr))
	require.True(t, idxErr.Index.Equal(FaceIndex(0, -1)))

	_, err = topo.Unravel(15)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = topo.Unravel(-1)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestTopologyMaskedCellsStillRavel(t *testing.T) {
	topo := newFaceTopology(t, 2, 2, func() ([]bool, error) {
		return []bool{true, false, true, true}, nil
	})

	linear, err := topo.Ravel(FaceIndex(0, 1))
	require.NoError(t, err)
	require.Equal(t, 1, linear)

	valid, err := topo.Valid(FaceIndex(0, 1))
	require.NoError(t, err)
	require.False(t, valid)

	size, err := topo.Size()
	require.NoError(t, err)
	require.Equal(t, 3, size)
	require.Equal(t, 4, topo.LinearSize())
}

func TestTopologyValidSemantics(t *testing.T) {
	topo := newFaceTopology(t, 2, 2, nil)

	// Wrong kind or arity is an error.
	_, err := topo.Valid(NewIndex(KindNode, 0, 0))
	require.ErrorIs(t, err, ErrInvalidIndex)
	_, err = topo.Valid(NewIndex(KindFace, 0))
	require.ErrorIs(t, err, ErrInvalidIndex)

	// Well-formed but out of shape is simply not valid.
	valid, err := topo.Valid(FaceIndex(2, 0))
	require.NoError(t, err)
	require.False(t, valid)

	valid, err = topo.Valid(FaceIndex(1, 1))
	require.NoError(t, err)
	require.True(t, valid)
}

func TestTopologyMaskMemoized(t *testing.T) {
	calls := 0
	topo := newFaceTopology(t, 2, 3, func() ([]bool, error) {
		calls++
		return []bool{true, true, false, true, false, true}, nil
	})

	first, err := topo.Mask()
	require.NoError(t, err)
	second, err := topo.Mask()
	require.NoError(t, err)

	require.Equal(t, 1, calls, "builder should run once")
	require.Same(t, &first[0], &second[0], "mask should be the same slice")
}

func TestTopologyNilBuilderMeansAllValid(t *testing.T) {
	topo := newFaceTopology(t, 2, 3, nil)
	mask, err := topo.Mask()
	require.NoError(t, err)
	require.Len(t, mask, 6)
	for linear, ok := range mask {
		require.True(t, ok, "cell %d", linear)
	}
	size, err := topo.Size()
	require.NoError(t, err)
	require.Equal(t, 6, size)
}

func TestTopologyMaskBuilderErrors(t *testing.T) {
	calls := 0
	topo := newFaceTopology(t, 2, 2, func() ([]bool, error) {
		calls++
		return nil, errors.New("no mask today")
	})

	_, err := topo.Mask()
	require.Error(t, err)
	_, err = topo.Mask()
	require.Error(t, err)
	require.Equal(t, 1, calls, "failed build should be memoized too")

	short := newFaceTopology(t, 2, 2, func() ([]bool, error) {
		return []bool{true}, nil
	})
	_, err = short.Mask()
	require.Error(t, err, "mask length must match the linear size")
}
