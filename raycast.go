package fieldnav

import "math"

// DefaultRayTolerance is one diagonal cell. Blocked samples closer than this to
// an endpoint do not count as hits.
const DefaultRayTolerance = 1.4

// CastRay walks the segment start-end in unit steps, sampling the field at the
// nearest integer cell of each step. It returns the first blocked cell and true,
// or false when nothing obstructs the segment.
//
// Leaving the field ends the walk with no hit. Blocked samples within tolerance
// of either endpoint are ignored so that vertices hugging a wall can still see
// each other. The walk always runs from the lexicographically smaller endpoint,
// which makes CastRay(a, b) and CastRay(b, a) sample the same cells. A
// consequence is that when that endpoint lies outside the field the very first
// sample ends the walk with no hit, whatever lies between the field edge and
// the other endpoint; callers that need a verdict validate endpoints first.
func CastRay(start, end Point, field OccupancyField, tolerance float64) (Point, bool) {
	if start == end {
		return Point{}, false
	}

	from, to := start, end
	if to.less(from) {
		from, to = to, from
	}

	distance := from.Distance(to)
	step := to.Sub(from).Scale(1 / distance)
	steps := int(math.Ceil(distance))

	for i := 1; i <= steps; i++ {
		pos := from.Add(step.Scale(float64(i)))
		x, y := pos.Round()

		if !inBounds(field, x, y) {
			return Point{}, false
		}
		if !field.IsBlocked(x, y) {
			continue
		}
		if pos.Distance(to) < tolerance {
			return Point{}, false
		}
		if pos.Distance(from) < tolerance {
			continue
		}
		return Pt(float64(x), float64(y)), true
	}

	return Point{}, false
}

// LineOfSight reports whether CastRay finds no obstruction between a and b.
func LineOfSight(a, b Point, field OccupancyField, tolerance float64) bool {
	_, hit := CastRay(a, b, field, tolerance)
	return !hit
}
