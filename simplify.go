package fieldnav

import (
	"math"
)

// collinearEpsilon absorbs atan2 drift at exact 0° and 180° turns
const collinearEpsilon = 1e-9

// SimplifyCollinear removes vertices of a closed ring whose turn angle is at most
// thresholdDeg. The turn angle at p2 is the difference between the directions of
// p1→p2 and p2→p3 folded into [0°, 180°] and then taken modulo 180°, so a
// reversal counts as 0° like going straight on. Spikes that double back on
// themselves are therefore always removed, as are vertices repeating their
// predecessor. A threshold of 0 keeps every true corner; 180 collapses
// everything.
//
// Passes repeat until nothing more is removed, so the result is a fixpoint and
// simplifying it again with the same threshold is a no-op. Rings with fewer than
// three vertices are returned unchanged.
func SimplifyCollinear(points []Point, thresholdDeg float64) []Point {
	out := append([]Point(nil), points...)
	for len(out) >= 3 {
		n := len(out)
		kept := make([]Point, 0, n)
		for i := 0; i < n; i++ {
			p1 := out[(i-1+n)%n]
			p2 := out[i]
			p3 := out[(i+1)%n]
			if p2 == p1 || collinear(p1, p2, p3, thresholdDeg) {
				continue
			}
			kept = append(kept, p2)
		}
		if len(kept) == n {
			break
		}
		out = kept
	}
	return out
}

// collinear reports whether the turn at p2 is within thresholdDeg
func collinear(p1, p2, p3 Point, thresholdDeg float64) bool {
	return turnAngle(p1, p2, p3) <= thresholdDeg+collinearEpsilon
}

// turnAngle returns the direction change at p2 in degrees, in [0, 180), with a
// full reversal folded onto 0
func turnAngle(p1, p2, p3 Point) float64 {
	a1 := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
	a2 := math.Atan2(p3.Y-p2.Y, p3.X-p2.X)

	diff := math.Abs(a1-a2) * 180 / math.Pi
	diff = math.Mod(diff, 360)
	if diff > 180 {
		diff = 360 - diff
	}
	diff = math.Mod(diff, 180)
	if 180-diff <= collinearEpsilon {
		diff = 0
	}
	return diff
}

// SimplifyPolygon reduces polygon complexity using Douglas-Peucker algorithm
// For closed polygons, uses topology-preserving approach to avoid expansion
func SimplifyPolygon(polygon Polygon, epsilon float64) Polygon {
	if len(polygon.Vertices) <= 3 || epsilon <= 0 {
		return polygon
	}

	// Close the ring for the recursion, then drop the duplicate again
	closed := make([]Point, 0, len(polygon.Vertices)+1)
	closed = append(closed, polygon.Vertices...)
	closed = append(closed, polygon.Vertices[0])

	simplified := douglasPeucker(closed, epsilon)
	simplified = simplified[:len(simplified)-1]
	if len(simplified) < 3 {
		return polygon // Failed to simplify adequately
	}
	return Polygon{Vertices: simplified}
}

// SimplifyPolygons simplifies multiple polygons
func SimplifyPolygons(polygons []Polygon, epsilon float64) []Polygon {
	simplified := make([]Polygon, len(polygons))
	for i, poly := range polygons {
		simplified[i] = SimplifyPolygon(poly, epsilon)
	}
	return simplified
}

// douglasPeucker implements the Douglas-Peucker line simplification algorithm
func douglasPeucker(points []Point, epsilon float64) []Point {
	if len(points) <= 2 {
		return points
	}

	// Find the point with maximum distance from line between first and last
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := douglasPeucker(points[0:index+1], epsilon)
		right := douglasPeucker(points[index:], epsilon)

		// Combine results (removing duplicate point at index)
		result := make([]Point, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// All points in between can be discarded
	return []Point{points[0], points[end]}
}

// perpendicularDistance calculates perpendicular distance from point to line
func perpendicularDistance(point, lineStart, lineEnd Point) float64 {
	dx := lineEnd.X - lineStart.X
	dy := lineEnd.Y - lineStart.Y

	mag := math.Sqrt(dx*dx + dy*dy)
	if mag > 0 {
		dx /= mag
		dy /= mag
	}

	pvx := point.X - lineStart.X
	pvy := point.Y - lineStart.Y

	// Project pv onto the direction and keep the rejection
	pvdot := dx*pvx + dy*pvy
	ax := pvx - pvdot*dx
	ay := pvy - pvdot*dy

	return math.Sqrt(ax*ax + ay*ay)
}
