package fieldnav

import (
	"log/slog"

	"github.com/paulmach/orb/planar"
)

// DropEnclosed removes polygons that lie entirely inside another polygon.
// Their vertices can only be reached from inside the enclosing outline.
func DropEnclosed(polygons []Polygon) []Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	index := NewPolygonIndex(polygons)
	contained := make([]bool, len(polygons))

	for i := range polygons {
		if contained[i] {
			continue
		}
		for _, j := range index.Query(polygons[i].Bound()) {
			if i == j || contained[j] {
				continue
			}
			if isPolygonContainedIn(polygons[i], polygons[j]) {
				contained[i] = true
				break
			}
		}
	}

	result := make([]Polygon, 0, len(polygons))
	for i, poly := range polygons {
		if !contained[i] {
			result = append(result, poly)
		}
	}

	slog.Debug("enclosed polygons dropped",
		"before", len(polygons),
		"after", len(result),
	)
	return result
}

// isPolygonContainedIn checks if polygon A is fully contained within polygon B
func isPolygonContainedIn(a, b Polygon) bool {
	if len(a.Vertices) == 0 || len(b.Vertices) < 3 {
		return false
	}

	// Quick bounding box check first
	ab, bb := a.Bound(), b.Bound()
	if ab.Min[0] < bb.Min[0] || ab.Max[0] > bb.Max[0] ||
		ab.Min[1] < bb.Min[1] || ab.Max[1] > bb.Max[1] {
		return false
	}

	ring := b.Ring()
	for _, vertex := range a.Vertices {
		if !planar.RingContains(ring, vertex.orb()) {
			return false
		}
	}
	return true
}
