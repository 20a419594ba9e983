package fieldnav

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minRectSide keeps degenerate (line or point) bounds valid for rtreego
const minRectSide = 1e-9

// polygonEntry wraps a polygon for R-tree storage
type polygonEntry struct {
	index int
	bbox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (p *polygonEntry) Bounds() rtreego.Rect {
	return p.bbox
}

// PolygonIndex answers bounding-box queries over a polygon set.
type PolygonIndex struct {
	tree     *rtreego.Rtree
	polygons []Polygon
}

// NewPolygonIndex creates a new spatial index
func NewPolygonIndex(polygons []Polygon) *PolygonIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, polygon := range polygons {
		if len(polygon.Vertices) == 0 {
			continue
		}
		bbox, err := boundToRect(polygon.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&polygonEntry{index: i, bbox: bbox})
	}

	return &PolygonIndex{tree: tree, polygons: polygons}
}

// Query returns the indices of polygons whose bounding box intersects bound
func (si *PolygonIndex) Query(bound orb.Bound) []int {
	bbox, err := boundToRect(bound)
	if err != nil {
		return nil
	}

	results := si.tree.SearchIntersect(bbox)
	indices := make([]int, 0, len(results))
	for _, item := range results {
		indices = append(indices, item.(*polygonEntry).index)
	}
	return indices
}

// boundToRect converts an orb bound to an rtreego rectangle
func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{
			math.Max(b.Max[0]-b.Min[0], minRectSide),
			math.Max(b.Max[1]-b.Min[1], minRectSide),
		},
	)
}

// vertexEntry is a graph vertex stored in the R-tree
type vertexEntry struct {
	index int
	point Point
}

func (v *vertexEntry) Bounds() rtreego.Rect {
	return rtreego.Point{v.point.X, v.point.Y}.ToRect(minRectSide)
}

// VertexIndex finds the graph vertices nearest to a point.
type VertexIndex struct {
	tree *rtreego.Rtree
}

// NewVertexIndex indexes points by position; Nearest returns positions in this slice.
func NewVertexIndex(points []Point) *VertexIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for i, p := range points {
		tree.Insert(&vertexEntry{index: i, point: p})
	}
	return &VertexIndex{tree: tree}
}

// Nearest returns up to k vertex indices ordered by increasing distance to p
func (vi *VertexIndex) Nearest(p Point, k int) []int {
	if k <= 0 || vi.tree.Size() == 0 {
		return nil
	}
	results := vi.tree.NearestNeighbors(k, rtreego.Point{p.X, p.Y})
	indices := make([]int, 0, len(results))
	for _, item := range results {
		if item == nil {
			continue
		}
		indices = append(indices, item.(*vertexEntry).index)
	}
	return indices
}
