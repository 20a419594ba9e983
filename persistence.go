package fieldnav

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
)

const graphFileVersion = 1

// graphFile is the persisted form of a vertex table and its visibility graph.
// The counts let Load detect truncated or hand-edited files.
type graphFile struct {
	Version     int          `json:"version"`
	VertexCount int          `json:"vertexCount"`
	EdgeCount   int          `json:"edgeCount"`
	Vertices    []Point      `json:"vertices"`
	Edges       []edgeRecord `json:"edges"`
}

type edgeRecord struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

// Save writes points and g as JSON. points is the vertex table; graph vertices
// missing from it are appended. Floats are encoded in shortest round-trip form,
// so Load reproduces every coordinate and weight exactly.
func Save(w io.Writer, points []Point, g *VisibilityGraph) error {
	index := make(map[Point]int, len(points))
	doc := graphFile{Version: graphFileVersion}

	addVertex := func(p Point) {
		if _, ok := index[p]; ok {
			return
		}
		index[p] = len(doc.Vertices)
		doc.Vertices = append(doc.Vertices, p)
	}
	for _, p := range points {
		addVertex(p)
	}
	if g != nil {
		for _, p := range g.vertices {
			addVertex(p)
		}
	}

	if g != nil {
		for _, from := range doc.Vertices {
			for _, e := range g.adjacency[from] {
				if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
					return fmt.Errorf("edge %v -> %v has non-finite weight", from, e.Target)
				}
				doc.Edges = append(doc.Edges, edgeRecord{
					Source: index[from],
					Target: index[e.Target],
					Weight: e.Weight,
				})
			}
		}
	}
	doc.VertexCount = len(doc.Vertices)
	doc.EdgeCount = len(doc.Edges)

	enc := json.NewEncoder(w)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// Load reads a graph written by Save. Any inconsistency yields ErrGraphCorrupt
// and no partial result.
func Load(r io.Reader) ([]Point, *VisibilityGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read graph: %w", err)
	}

	var doc graphFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGraphCorrupt, err)
	}
	if doc.Version != graphFileVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrGraphCorrupt, doc.Version)
	}
	if len(doc.Vertices) != doc.VertexCount {
		return nil, nil, fmt.Errorf("%w: header declares %d vertices, found %d",
			ErrGraphCorrupt, doc.VertexCount, len(doc.Vertices))
	}
	if len(doc.Edges) != doc.EdgeCount {
		return nil, nil, fmt.Errorf("%w: header declares %d edges, found %d",
			ErrGraphCorrupt, doc.EdgeCount, len(doc.Edges))
	}

	g := NewVisibilityGraph()
	for i, p := range doc.Vertices {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return nil, nil, fmt.Errorf("%w: vertex %d is not a number", ErrGraphCorrupt, i)
		}
		if g.AddVertex(p) != i {
			return nil, nil, fmt.Errorf("%w: duplicate vertex %v", ErrGraphCorrupt, p)
		}
	}
	for i, e := range doc.Edges {
		if e.Source < 0 || e.Source >= len(doc.Vertices) || e.Target < 0 || e.Target >= len(doc.Vertices) {
			return nil, nil, fmt.Errorf("%w: edge %d references missing vertex", ErrGraphCorrupt, i)
		}
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) || e.Weight < 0 {
			return nil, nil, fmt.Errorf("%w: edge %d has invalid weight", ErrGraphCorrupt, i)
		}
		g.AddEdge(doc.Vertices[e.Source], doc.Vertices[e.Target], e.Weight)
	}

	points := make([]Point, len(doc.Vertices))
	copy(points, doc.Vertices)
	return points, g, nil
}

// SaveFile writes the graph to a temporary file next to path and renames it into
// place, so readers never observe a half-written file.
func SaveFile(path string, points []Point, g *VisibilityGraph) error {
	slog.Info("saving graph", "path", path)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Save(tmp, points, g); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a graph file. A missing file yields ErrGraphNotFound, which
// callers should answer with a rebake; anything unreadable yields ErrGraphCorrupt.
func LoadFile(path string) ([]Point, *VisibilityGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %w", ErrGraphNotFound, err)
		}
		return nil, nil, fmt.Errorf("failed to open graph: %w", err)
	}
	defer f.Close()

	points, g, err := Load(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Info("graph loaded",
		"path", path,
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
	)
	return points, g, nil
}
