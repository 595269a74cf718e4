// Package gridgeom holds the low-level ring geometry used when turning grid
// cells into polygons: orientation checks, degeneracy tests, and boundary
// ring stitching. Rings are slices of geom.Point with implicit closure (the
// last vertex is not repeated).
package gridgeom

import (
	"math"

	"github.com/ctessum/geom"
)

// SignedArea returns the shoelace area of ring.
// Positive for counter-clockwise rings, negative for clockwise.
func SignedArea(ring []geom.Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// EnsureCounterClockwise reverses ring in place if it winds clockwise.
func EnsureCounterClockwise(ring []geom.Point) {
	if SignedArea(ring) < 0 {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}
}

// IsFinite reports whether every vertex has finite coordinates.
func IsFinite(ring []geom.Point) bool {
	for _, p := range ring {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Dedupe removes consecutive duplicate vertices, including a duplicate
// closing vertex. The input slice is not modified.
func Dedupe(ring []geom.Point) []geom.Point {
	if len(ring) == 0 {
		return nil
	}
	out := make([]geom.Point, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	// Drop an explicit closing vertex; closure is implicit.
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// ValidRing reports whether ring describes a usable cell polygon:
// finite coordinates and at least three distinct vertices.
func ValidRing(ring []geom.Point) bool {
	if !IsFinite(ring) {
		return false
	}
	return len(Dedupe(ring)) >= 3
}
