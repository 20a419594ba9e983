package fieldnav

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Edge is a directed, unobstructed connection to Target. Weight is the Euclidean length.
type Edge struct {
	Target Point   `json:"target"`
	Weight float64 `json:"weight"`
}

// VisibilityGraph maps every vertex to the vertices it can see.
// Each direction of a connection is stored independently.
// A baked graph is never mutated, so it can be shared by concurrent readers.
type VisibilityGraph struct {
	vertices  []Point
	index     map[Point]int
	adjacency map[Point][]Edge

	nearestOnce sync.Once
	nearest     *VertexIndex
}

// NewVisibilityGraph returns an empty graph.
func NewVisibilityGraph() *VisibilityGraph {
	return &VisibilityGraph{
		index:     make(map[Point]int),
		adjacency: make(map[Point][]Edge),
	}
}

// AddVertex registers p and returns its position in insertion order.
// AddVertex and AddEdge are for construction only; do not call them once the graph is shared.
func (g *VisibilityGraph) AddVertex(p Point) int {
	if i, ok := g.index[p]; ok {
		return i
	}
	g.index[p] = len(g.vertices)
	g.vertices = append(g.vertices, p)
	return len(g.vertices) - 1
}

// AddEdge stores the directed edge from→to, registering both vertices.
func (g *VisibilityGraph) AddEdge(from, to Point, weight float64) {
	g.AddVertex(from)
	g.AddVertex(to)
	g.adjacency[from] = append(g.adjacency[from], Edge{Target: to, Weight: weight})
}

// Vertices returns the vertices in insertion order. The slice must not be modified.
func (g *VisibilityGraph) Vertices() []Point {
	return g.vertices
}

// Edges returns the outgoing edges of p. The slice must not be modified.
func (g *VisibilityGraph) Edges(p Point) []Edge {
	return g.adjacency[p]
}

// Contains reports whether p is a vertex of the graph.
func (g *VisibilityGraph) Contains(p Point) bool {
	_, ok := g.index[p]
	return ok
}

// VertexIndex returns the insertion position of p.
func (g *VisibilityGraph) VertexIndex(p Point) (int, bool) {
	i, ok := g.index[p]
	return i, ok
}

// VertexCount returns the number of vertices.
func (g *VisibilityGraph) VertexCount() int {
	return len(g.vertices)
}

// EdgeCount returns the number of directed edges.
func (g *VisibilityGraph) EdgeCount() int {
	n := 0
	for _, edges := range g.adjacency {
		n += len(edges)
	}
	return n
}

// Lines returns each connection once as a two-point segment, for visualization.
func (g *VisibilityGraph) Lines() [][2]Point {
	lines := make([][2]Point, 0)

	// Edges are stored in both directions; keep the one leaving the lower index
	for i, from := range g.vertices {
		for _, e := range g.adjacency[from] {
			j := g.index[e.Target]
			if i < j {
				lines = append(lines, [2]Point{from, e.Target})
			}
		}
	}
	return lines
}

// BakeOptions configures Bake.
type BakeOptions struct {
	Tolerance   float64 // ray cast endpoint tolerance
	MaxVertices int     // refuse to bake more vertices than this, 0 = unlimited
	Workers     int     // goroutines casting rays, <= 0 means GOMAXPROCS
}

// DefaultBakeOptions returns a single-worker bake with the default ray tolerance.
func DefaultBakeOptions() BakeOptions {
	return BakeOptions{
		Tolerance:   DefaultRayTolerance,
		MaxVertices: 1000,
		Workers:     1,
	}
}

// Bake builds the visibility graph over all polygon vertices.
//
// Every pair of distinct vertices is ray cast against field, which makes the bake
// O(V²) casts of O(distance) each. Run it offline and persist the result; never
// call it from an interactive loop.
func Bake(polygons []Polygon, field OccupancyField, opts BakeOptions) (*VisibilityGraph, error) {
	return BakePoints(flattenVertices(polygons), field, opts)
}

// BakePoints builds the visibility graph over an explicit vertex list.
// Duplicate points are ignored.
func BakePoints(points []Point, field OccupancyField, opts BakeOptions) (*VisibilityGraph, error) {
	g := NewVisibilityGraph()
	for _, p := range points {
		g.AddVertex(p)
	}
	n := g.VertexCount()

	if opts.MaxVertices > 0 && n > opts.MaxVertices {
		return nil, fmt.Errorf("%d vertices, limit %d: %w", n, opts.MaxVertices, ErrTooManyVertices)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	startTime := time.Now()
	totalPairs := n * (n - 1) / 2
	slog.Info("baking visibility graph",
		"vertices", n,
		"pairs", totalPairs,
		"workers", workers,
	)

	// visible[i] lists every j > i that i can see, in increasing order
	visible := make([][]int, n)
	var rowsDone atomic.Int64
	progressEvery := int64(n/10 + 1)

	castRow := func(i int) {
		var row []int
		for j := i + 1; j < n; j++ {
			if LineOfSight(g.vertices[i], g.vertices[j], field, opts.Tolerance) {
				row = append(row, j)
			}
		}
		visible[i] = row
		if done := rowsDone.Add(1); done%progressEvery == 0 {
			slog.Debug("bake progress", "rows", done, "of", n)
		}
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			castRow(i)
		}
	} else {
		rows := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range rows {
					castRow(i)
				}
			}()
		}
		for i := 0; i < n; i++ {
			rows <- i
		}
		close(rows)
		wg.Wait()
	}

	// Merge in row order so the edge layout does not depend on scheduling
	for i := 0; i < n; i++ {
		for _, j := range visible[i] {
			u, v := g.vertices[i], g.vertices[j]
			d := u.Distance(v)
			g.AddEdge(u, v, d)
			g.AddEdge(v, u, d)
		}
	}

	slog.Info("visibility graph baked",
		"vertices", n,
		"edges", g.EdgeCount(),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)
	return g, nil
}
