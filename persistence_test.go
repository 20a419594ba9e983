package fieldnav

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func bakedSquare(t *testing.T) ([]Point, *VisibilityGraph) {
	t.Helper()
	field, polygons := squareObstacle()
	points := flattenVertices(polygons)
	g, err := BakePoints(points, field, DefaultBakeOptions())
	if err != nil {
		t.Fatal(err)
	}
	return points, g
}

func assertSameGraph(t *testing.T, want, got *VisibilityGraph) {
	t.Helper()
	if !reflect.DeepEqual(want.Vertices(), got.Vertices()) {
		t.Fatalf("vertices = %v, want %v", got.Vertices(), want.Vertices())
	}
	for _, v := range want.Vertices() {
		if !reflect.DeepEqual(want.Edges(v), got.Edges(v)) {
			t.Errorf("edges of %v = %v, want %v", v, got.Edges(v), want.Edges(v))
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	points, g := bakedSquare(t)
	// Irrational weights must survive exactly
	g.AddEdge(Pt(0.1, 0.2), Pt(1.0/3, 2.0/3), Pt(0.1, 0.2).Distance(Pt(1.0/3, 2.0/3)))

	var buf bytes.Buffer
	if err := Save(&buf, points, g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	gotPoints, got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(gotPoints[:len(points)], points) {
		t.Errorf("vertex table = %v, want prefix %v", gotPoints, points)
	}
	assertSameGraph(t, g, got)
	if got.EdgeCount() != g.EdgeCount() {
		t.Errorf("EdgeCount = %d, want %d", got.EdgeCount(), g.EdgeCount())
	}
}

func TestLoadCorrupt(t *testing.T) {
	points, g := bakedSquare(t)
	var valid bytes.Buffer
	if err := Save(&valid, points, g); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data string
	}{
		{"not json", "this is not a graph"},
		{"truncated", valid.String()[:valid.Len()/2]},
		{"unknown version", `{"version":2,"vertexCount":0,"edgeCount":0,"vertices":[],"edges":[]}`},
		{"vertex count mismatch", `{"version":1,"vertexCount":2,"edgeCount":0,"vertices":[{"x":1,"y":1}],"edges":[]}`},
		{"edge count mismatch", `{"version":1,"vertexCount":1,"edgeCount":3,"vertices":[{"x":1,"y":1}],"edges":[]}`},
		{"dangling edge", `{"version":1,"vertexCount":1,"edgeCount":1,"vertices":[{"x":1,"y":1}],"edges":[{"source":0,"target":3,"weight":1}]}`},
		{"negative weight", `{"version":1,"vertexCount":2,"edgeCount":1,"vertices":[{"x":1,"y":1},{"x":2,"y":1}],"edges":[{"source":0,"target":1,"weight":-1}]}`},
		{"duplicate vertex", `{"version":1,"vertexCount":2,"edgeCount":0,"vertices":[{"x":1,"y":1},{"x":1,"y":1}],"edges":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, g, err := Load(strings.NewReader(tt.data))
			if !errors.Is(err, ErrGraphCorrupt) {
				t.Fatalf("err = %v, want ErrGraphCorrupt", err)
			}
			if points != nil || g != nil {
				t.Error("corrupt input returned a partial result")
			}
		})
	}
}

func TestLoadEmptyGraph(t *testing.T) {
	points, g, err := Load(strings.NewReader(`{"version":1,"vertexCount":0,"edgeCount":0,"vertices":[],"edges":[]}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(points) != 0 || g.VertexCount() != 0 {
		t.Errorf("expected an empty graph, got %d points", len(points))
	}
}

func TestSaveFileLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	points, g := bakedSquare(t)

	if err := SaveFile(path, points, g); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	_, got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	assertSameGraph(t, g, got)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestLoadFileMissingVsCorrupt(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadFile(filepath.Join(dir, "absent.json"))
	if !errors.Is(err, ErrGraphNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: err = %v, want ErrGraphNotFound", err)
	}
	if errors.Is(err, ErrGraphCorrupt) {
		t.Error("missing file reported as corrupt")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err = LoadFile(bad)
	if !errors.Is(err, ErrGraphCorrupt) {
		t.Errorf("corrupt file: err = %v, want ErrGraphCorrupt", err)
	}
	if errors.Is(err, ErrGraphNotFound) {
		t.Error("corrupt file reported as missing")
	}
}
