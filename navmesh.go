package fieldnav

import (
	"fmt"
	"log/slog"
	"time"
)

// NavMeshOptions configures BuildNavMesh.
type NavMeshOptions struct {
	Simplify     SimplifyOptions
	DropEnclosed bool
	Bake         BakeOptions
}

// NavMesh is a baked visibility graph together with the polygons it came from.
// It must be rebuilt whenever the source bitmap or its margin changes.
type NavMesh struct {
	Polygons []Polygon // nil when loaded from disk
	Points   []Point
	Graph    *VisibilityGraph
}

// BuildNavMesh extracts polygons from src, moves their vertices off the
// obstacles of field and bakes them against field.
// src is usually the blocked mask of field itself.
func BuildNavMesh(field OccupancyField, src OutlineSource, opts NavMeshOptions) (*NavMesh, error) {
	startTime := time.Now()

	polygons := OffsetVertices(ExtractPolygons(src, opts.Simplify), field)
	if opts.DropEnclosed {
		polygons = DropEnclosed(polygons)
	}

	points := flattenVertices(polygons)
	graph, err := BakePoints(points, field, opts.Bake)
	if err != nil {
		return nil, fmt.Errorf("failed to bake navmesh: %w", err)
	}

	slog.Info("navmesh built",
		"polygons", len(polygons),
		"vertices", graph.VertexCount(),
		"edges", graph.EdgeCount(),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)
	return &NavMesh{Polygons: polygons, Points: points, Graph: graph}, nil
}

// Save persists the vertex table and graph to path.
func (m *NavMesh) Save(path string) error {
	return SaveFile(path, m.Points, m.Graph)
}

// LoadNavMesh reads a navmesh written by Save.
func LoadNavMesh(path string) (*NavMesh, error) {
	points, graph, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &NavMesh{Points: points, Graph: graph}, nil
}

// Route finds a path over the baked graph, see VisibilityGraph.Route.
func (m *NavMesh) Route(start, goal Point, field OccupancyField, opts RouteOptions) ([]Point, float64, error) {
	return m.Graph.Route(start, goal, field, opts)
}
