package fieldnav

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// RouteOptions configures a shortest-path query over a baked graph.
type RouteOptions struct {
	Tolerance        float64 // ray cast endpoint tolerance used to attach start and goal
	AttachCandidates int     // only try the k nearest vertices when attaching, 0 = all
}

// DefaultRouteOptions attaches endpoints to every visible vertex.
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{Tolerance: DefaultRayTolerance}
}

// Route connects start and goal to the vertices they can see and runs Dijkstra
// over the result. It returns the waypoints, start and goal included, and the
// total length. The graph itself is not modified.
func (g *VisibilityGraph) Route(start, goal Point, field OccupancyField, opts RouteOptions) ([]Point, float64, error) {
	for _, p := range []Point{start, goal} {
		if !pointInField(field, p) {
			return nil, 0, fmt.Errorf("%v: %w", p, ErrOutOfBounds)
		}
		if pointBlocked(field, p) {
			return nil, 0, fmt.Errorf("%v: %w", p, ErrInvalidTarget)
		}
	}

	if start == goal {
		return []Point{start}, 0, nil
	}
	if LineOfSight(start, goal, field, opts.Tolerance) {
		return []Point{start, goal}, start.Distance(goal), nil
	}

	n := len(g.vertices)
	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		wg.AddNode(simple.Node(i))
	}
	for i, u := range g.vertices {
		for _, e := range g.adjacency[u] {
			j := g.index[e.Target]
			wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(i), simple.Node(j), e.Weight))
		}
	}

	startID := g.endpointID(wg, start, int64(n))
	goalID := g.endpointID(wg, goal, int64(n+1))

	startLinks := 0
	for _, c := range g.attachCandidates(start, opts.AttachCandidates) {
		if int64(c) == startID || !LineOfSight(start, g.vertices[c], field, opts.Tolerance) {
			continue
		}
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(startID), simple.Node(c), start.Distance(g.vertices[c])))
		startLinks++
	}
	goalLinks := 0
	for _, c := range g.attachCandidates(goal, opts.AttachCandidates) {
		if int64(c) == goalID || !LineOfSight(g.vertices[c], goal, field, opts.Tolerance) {
			continue
		}
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(c), simple.Node(goalID), goal.Distance(g.vertices[c])))
		goalLinks++
	}

	// An endpoint sitting on a vertex already has that vertex's edges
	if (startLinks == 0 && startID >= int64(n)) || (goalLinks == 0 && goalID >= int64(n)) {
		slog.Debug("route endpoint not attached",
			"start", start, "start_links", startLinks,
			"goal", goal, "goal_links", goalLinks,
		)
		return nil, 0, fmt.Errorf("endpoint sees no graph vertex: %w", ErrUnreachable)
	}

	shortest := path.DijkstraFrom(simple.Node(startID), wg)
	nodes, weight := shortest.To(goalID)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, 0, ErrUnreachable
	}

	waypoints := make([]Point, len(nodes))
	for i, node := range nodes {
		switch id := node.ID(); {
		case id < int64(n):
			waypoints[i] = g.vertices[id]
		case id == startID:
			waypoints[i] = start
		default:
			waypoints[i] = goal
		}
	}
	return waypoints, weight, nil
}

// endpointID reuses the vertex id when p is a vertex, otherwise adds a fresh node
func (g *VisibilityGraph) endpointID(wg *simple.WeightedDirectedGraph, p Point, fresh int64) int64 {
	if i, ok := g.index[p]; ok {
		return int64(i)
	}
	wg.AddNode(simple.Node(fresh))
	return fresh
}

// attachCandidates lists the vertices an endpoint may connect to, nearest first when limited
func (g *VisibilityGraph) attachCandidates(p Point, k int) []int {
	if k <= 0 || k >= len(g.vertices) {
		all := make([]int, len(g.vertices))
		for i := range all {
			all[i] = i
		}
		return all
	}
	return g.nearestIndex().Nearest(p, k)
}

// nearestIndex builds the vertex R-tree on first use
func (g *VisibilityGraph) nearestIndex() *VertexIndex {
	g.nearestOnce.Do(func() {
		g.nearest = NewVertexIndex(g.vertices)
	})
	return g.nearest
}
