package fieldnav

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func squareObstacle() (*Bitmap, []Polygon) {
	field := blockedRect(20, 20, 8, 8, 11, 11)
	polygons := ExtractPolygons(field, SimplifyOptions{CollinearThreshold: 30})
	return field, polygons
}

func TestBakeSquare(t *testing.T) {
	field, polygons := squareObstacle()
	if len(polygons) != 1 || len(polygons[0].Vertices) != 4 {
		t.Fatalf("unexpected polygons %v", polygons)
	}

	g, err := Bake(polygons, field, DefaultBakeOptions())
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if g.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", g.VertexCount())
	}
	// Sides are visible, the diagonals cross the obstacle
	if g.EdgeCount() != 8 {
		t.Errorf("EdgeCount = %d, want 8", g.EdgeCount())
	}
	for _, e := range g.Edges(Pt(8, 8)) {
		if e.Target == Pt(11, 11) {
			t.Error("diagonal through the obstacle should not be an edge")
		}
	}
	if len(g.Lines()) != 4 {
		t.Errorf("Lines = %d, want 4", len(g.Lines()))
	}
}

func TestBakeEdgesAreSound(t *testing.T) {
	field := NewBitmap(40, 30)
	field.FillRect(5, 5, 12, 10, true)
	field.FillRect(20, 3, 24, 20, true)
	field.FillRect(8, 18, 15, 25, true)
	field.FillRect(30, 22, 36, 27, true)
	polygons := ExtractPolygons(field, SimplifyOptions{CollinearThreshold: 30})

	g, err := Bake(polygons, field, DefaultBakeOptions())
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}

	for _, u := range g.Vertices() {
		seen := make(map[Point]bool)
		for _, e := range g.Edges(u) {
			if e.Target == u {
				t.Errorf("self edge at %v", u)
			}
			if seen[e.Target] {
				t.Errorf("duplicate edge %v -> %v", u, e.Target)
			}
			seen[e.Target] = true

			if !LineOfSight(u, e.Target, field, DefaultRayTolerance) {
				t.Errorf("edge %v -> %v is obstructed", u, e.Target)
			}
			if math.Abs(e.Weight-u.Distance(e.Target)) > 1e-12 {
				t.Errorf("edge %v -> %v weight %v, want %v", u, e.Target, e.Weight, u.Distance(e.Target))
			}

			back := false
			for _, r := range g.Edges(e.Target) {
				if r.Target == u && r.Weight == e.Weight {
					back = true
				}
			}
			if !back {
				t.Errorf("edge %v -> %v has no reverse", u, e.Target)
			}
		}
	}
}

func TestBakeParallelMatchesSequential(t *testing.T) {
	field := NewBitmap(50, 50)
	field.FillRect(5, 5, 15, 9, true)
	field.FillRect(25, 10, 28, 40, true)
	field.FillRect(35, 35, 45, 45, true)
	field.FillRect(5, 30, 12, 44, true)
	polygons := ExtractPolygons(field, SimplifyOptions{CollinearThreshold: 30})

	sequential, err := Bake(polygons, field, BakeOptions{Tolerance: DefaultRayTolerance, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 4, 0} {
		parallel, err := Bake(polygons, field, BakeOptions{Tolerance: DefaultRayTolerance, Workers: workers})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(sequential.Vertices(), parallel.Vertices()) {
			t.Fatalf("workers=%d: vertex order differs", workers)
		}
		for _, v := range sequential.Vertices() {
			if !reflect.DeepEqual(sequential.Edges(v), parallel.Edges(v)) {
				t.Fatalf("workers=%d: edges of %v differ", workers, v)
			}
		}
	}
}

func TestBakeTooManyVertices(t *testing.T) {
	field, polygons := squareObstacle()
	_, err := Bake(polygons, field, BakeOptions{Tolerance: DefaultRayTolerance, MaxVertices: 3})
	if !errors.Is(err, ErrTooManyVertices) {
		t.Fatalf("err = %v, want ErrTooManyVertices", err)
	}
}

func TestBakePointsDeduplicates(t *testing.T) {
	field := NewBitmap(10, 10)
	g, err := BakePoints([]Point{Pt(1, 1), Pt(5, 5), Pt(1, 1)}, field, DefaultBakeOptions())
	if err != nil {
		t.Fatal(err)
	}
	if g.VertexCount() != 2 || g.EdgeCount() != 2 {
		t.Errorf("got %d vertices and %d edges, want 2 and 2", g.VertexCount(), g.EdgeCount())
	}
	if i, ok := g.VertexIndex(Pt(5, 5)); !ok || i != 1 {
		t.Errorf("VertexIndex = %d, %v", i, ok)
	}
	if !g.Contains(Pt(1, 1)) || g.Contains(Pt(2, 2)) {
		t.Error("Contains reports wrong membership")
	}
}

func TestBakeEmpty(t *testing.T) {
	g, err := Bake(nil, NewBitmap(5, 5), DefaultBakeOptions())
	if err != nil {
		t.Fatal(err)
	}
	if g.VertexCount() != 0 || g.EdgeCount() != 0 || len(g.Lines()) != 0 {
		t.Error("empty bake should produce an empty graph")
	}
}
