package fieldnav

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a 2-D coordinate in field pixels. It is comparable and can be used as a map key.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.DistanceSquared(other))
}

// DistanceSquared avoids the square root when only ordering matters
func (p Point) DistanceSquared(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Round returns the nearest integer cell of p.
func (p Point) Round() (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// Cell returns the integer cell containing p.
func (p Point) Cell() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// less orders points lexicographically by X then Y
func (p Point) less(other Point) bool {
	if p.X != other.X {
		return p.X < other.X
	}
	return p.Y < other.Y
}

func (p Point) orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

func pointFromOrb(op orb.Point) Point {
	return Point{X: op[0], Y: op[1]}
}

// Polygon is a closed outline. The first and last vertices are distinct and implicitly connected.
type Polygon struct {
	Vertices []Point `json:"vertices"`
}

// Ring converts the polygon to a closed orb ring.
func (p Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(p.Vertices)+1)
	for _, v := range p.Vertices {
		ring = append(ring, v.orb())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// Area returns the unsigned planar area enclosed by the polygon
func (p Polygon) Area() float64 {
	if len(p.Vertices) < 3 {
		return 0
	}
	return math.Abs(planar.Area(p.Ring()))
}

// Bound returns the axis-aligned bounding box of the polygon
func (p Polygon) Bound() orb.Bound {
	return p.Ring().Bound()
}

// Contains reports whether pt lies inside the polygon
func (p Polygon) Contains(pt Point) bool {
	if len(p.Vertices) < 3 {
		return false
	}
	return planar.RingContains(p.Ring(), pt.orb())
}

// polygonFromRing drops the closing duplicate an orb ring carries
func polygonFromRing(ring orb.Ring) Polygon {
	n := len(ring)
	if n > 1 && ring.Closed() {
		n--
	}
	poly := Polygon{Vertices: make([]Point, 0, n)}
	for _, op := range ring[:n] {
		poly.Vertices = append(poly.Vertices, pointFromOrb(op))
	}
	return poly
}

// flattenVertices collects unique polygon vertices in first-appearance order
func flattenVertices(polygons []Polygon) []Point {
	seen := make(map[Point]struct{})
	var points []Point
	for _, poly := range polygons {
		for _, v := range poly.Vertices {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			points = append(points, v)
		}
	}
	return points
}
