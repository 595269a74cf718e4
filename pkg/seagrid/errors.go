package seagrid

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by this package. Callers should match them with
// errors.Is rather than comparing messages.
var (
	// ErrInvalidIndex indicates a native index whose kind or coordinate
	// arity does not belong to the grid it was used with.
	ErrInvalidIndex = errors.New("seagrid: invalid native index")

	// ErrOutOfBounds indicates an index whose coordinates fall outside the
	// shape of its kind.
	ErrOutOfBounds = errors.New("seagrid: index out of bounds")

	// ErrDetectionFailed indicates that no registered convention recognised
	// the dataset.
	ErrDetectionFailed = errors.New("seagrid: no convention recognised the dataset")

	// ErrDetectionAmbiguous indicates that more than one registered
	// convention recognised the dataset.
	ErrDetectionAmbiguous = errors.New("seagrid: multiple conventions recognised the dataset")

	// ErrDegenerateGeometry indicates a cell whose outline could not form a
	// valid polygon. Conventions mask such cells out rather than returning
	// this error; it surfaces only when a caller asks for the geometry of a
	// cell that was masked for this reason.
	ErrDegenerateGeometry = errors.New("seagrid: degenerate cell geometry")

	// ErrEmptyDomain indicates a query against a grid with no valid cells.
	ErrEmptyDomain = errors.New("seagrid: no valid cells in domain")

	// ErrInvalidGeometry indicates a query geometry that cannot be used,
	// such as a polygon with non-finite vertices.
	ErrInvalidGeometry = errors.New("seagrid: invalid query geometry")
)

// DetectionError reports the outcome of running convention detection over a
// dataset. It wraps ErrDetectionFailed when no convention matched and
// ErrDetectionAmbiguous when several did, so callers can distinguish the two
// with errors.Is while still seeing which conventions were involved.
type DetectionError struct {
	// Conventions lists the names of the conventions that claimed the
	// dataset. Empty when detection failed outright.
	Conventions []string
}

func (e *DetectionError) Error() string {
	if len(e.Conventions) == 0 {
		return ErrDetectionFailed.Error()
	}
	return fmt.Sprintf("%s: %s",
		ErrDetectionAmbiguous.Error(), strings.Join(e.Conventions, ", "))
}

func (e *DetectionError) Unwrap() error {
	if len(e.Conventions) == 0 {
		return ErrDetectionFailed
	}
	return ErrDetectionAmbiguous
}

// IndexError describes a native index that a grid rejected, carrying the
// index and the reason so messages stay uniform across operations.
type IndexError struct {
	Index  NativeIndex
	Reason error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: %v", e.Reason, e.Index)
}

func (e *IndexError) Unwrap() error {
	return e.Reason
}
