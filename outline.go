package fieldnav

import (
	"log/slog"
	"math"
)

// SimplifyOptions configures ExtractPolygons.
type SimplifyOptions struct {
	CollinearThreshold float64 // degrees, see SimplifyCollinear
	Epsilon            float64 // Douglas-Peucker tolerance in pixels, 0 disables
	MinArea            float64 // polygons enclosing less area are dropped, 0 keeps all
}

// cornerOffsets are the 4-neighbours tried when squaring off a diagonal step.
var cornerOffsets = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// ExtractPolygons traces every connected component of src and reduces each
// outline to a simplified closed polygon.
func ExtractPolygons(src OutlineSource, opts SimplifyOptions) []Polygon {
	components := src.ConnectedComponents()
	polygons := make([]Polygon, 0, len(components))

	totalOutline := 0
	for _, c := range components {
		outline := src.Outline(c)
		totalOutline += len(outline)

		points := SimplifyCollinear(insertCorners(outline, c), opts.CollinearThreshold)
		if len(points) == 0 {
			continue
		}

		poly := Polygon{Vertices: points}
		if opts.Epsilon > 0 {
			poly = SimplifyPolygon(poly, opts.Epsilon)
		}
		if opts.MinArea > 0 && poly.Area() < opts.MinArea {
			continue
		}
		polygons = append(polygons, poly)
	}

	vertices := 0
	for _, p := range polygons {
		vertices += len(p.Vertices)
	}
	slog.Info("polygons extracted",
		"components", len(components),
		"polygons", len(polygons),
		"outline_points", totalOutline,
		"vertices", vertices,
		"threshold_deg", opts.CollinearThreshold,
	)
	return polygons
}

// insertCorners turns every diagonal step of a closed outline into a right angle
// by inserting the 4-neighbour of the first cell that belongs to the component and
// touches the second cell orthogonally.
func insertCorners(outline []Point, c Component) []Point {
	n := len(outline)
	if n < 2 {
		return outline
	}

	out := make([]Point, 0, n+n/2)
	for i := 0; i < n; i++ {
		p := outline[i]
		q := outline[(i+1)%n]
		out = append(out, p)

		if math.Abs(q.X-p.X) != 1 || math.Abs(q.Y-p.Y) != 1 {
			continue
		}
		px, py := int(p.X), int(p.Y)
		for _, off := range cornerOffsets {
			cx, cy := px+off[0], py+off[1]
			corner := Pt(float64(cx), float64(cy))
			if c.Contains(cx, cy) && corner.DistanceSquared(q) == 1 {
				out = append(out, corner)
				break
			}
		}
	}
	return out
}

// diagonalOffsets are tried in this order when moving a vertex off an obstacle.
var diagonalOffsets = [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// OffsetVertices moves every polygon vertex that sits on a blocked cell of field
// to a free diagonal neighbour, so that vertices along one side of an obstacle
// can see each other. A convex corner moves to the diagonal whose two orthogonal
// neighbours are also free; a concave corner moves to its only free diagonal.
// Vertices already on free cells, or with no free in-field diagonal, stay put.
// Consecutive vertices that land on the same cell are merged.
func OffsetVertices(polygons []Polygon, field OccupancyField) []Polygon {
	out := make([]Polygon, 0, len(polygons))
	for _, poly := range polygons {
		vertices := make([]Point, 0, len(poly.Vertices))
		for _, v := range poly.Vertices {
			p := offsetVertex(v, field)
			if n := len(vertices); n > 0 && vertices[n-1] == p {
				continue
			}
			vertices = append(vertices, p)
		}
		if n := len(vertices); n > 1 && vertices[0] == vertices[n-1] {
			vertices = vertices[:n-1]
		}
		out = append(out, Polygon{Vertices: vertices})
	}
	return out
}

func offsetVertex(v Point, field OccupancyField) Point {
	x, y := v.Round()
	if !field.IsBlocked(x, y) {
		return v
	}

	free := func(cx, cy int) bool {
		return inBounds(field, cx, cy) && !field.IsBlocked(cx, cy)
	}

	fallback, found := Point{}, false
	for _, d := range diagonalOffsets {
		cx, cy := x+d[0], y+d[1]
		if !free(cx, cy) {
			continue
		}
		if free(cx, y) && free(x, cy) {
			return Pt(float64(cx), float64(cy))
		}
		if !found {
			fallback, found = Pt(float64(cx), float64(cy)), true
		}
	}
	if found {
		return fallback
	}
	return v
}
