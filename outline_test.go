package fieldnav

import (
	"reflect"
	"testing"
)

func staircase() *Bitmap {
	bm := NewBitmap(10, 10)
	bm.FillRect(1, 1, 6, 2, true)
	bm.FillRect(1, 3, 4, 4, true)
	bm.FillRect(1, 5, 2, 6, true)
	return bm
}

func TestInsertCornersRemovesDiagonals(t *testing.T) {
	bm := staircase()
	comps := bm.ConnectedComponents()
	if len(comps) != 1 {
		t.Fatalf("got %d components, want 1", len(comps))
	}
	outline := bm.Outline(comps[0])
	got := insertCorners(outline, comps[0])

	diagonals := 0
	for i, p := range outline {
		q := outline[(i+1)%len(outline)]
		if p.X != q.X && p.Y != q.Y {
			diagonals++
		}
	}
	if diagonals == 0 {
		t.Fatal("staircase outline should contain diagonal steps")
	}
	if len(got) != len(outline)+diagonals {
		t.Errorf("got %d points, want %d", len(got), len(outline)+diagonals)
	}

	for i, p := range got {
		if !comps[0].Contains(int(p.X), int(p.Y)) {
			t.Errorf("point %v is outside the component", p)
		}
		q := got[(i+1)%len(got)]
		if p.X != q.X && p.Y != q.Y {
			t.Errorf("diagonal step %v -> %v survived", p, q)
		}
	}

	// The traced outline survives as a subsequence
	j := 0
	for _, p := range got {
		if j < len(outline) && p == outline[j] {
			j++
		}
	}
	if j != len(outline) {
		t.Errorf("traced outline points reordered or lost")
	}
}

func TestExtractPolygons(t *testing.T) {
	bm := NewBitmap(20, 20)
	bm.FillRect(2, 2, 5, 4, true)
	bm.FillRect(10, 10, 14, 14, true)

	small := []Point{Pt(2, 2), Pt(2, 4), Pt(5, 4), Pt(5, 2)}
	large := []Point{Pt(10, 10), Pt(10, 14), Pt(14, 14), Pt(14, 10)}

	tests := []struct {
		name string
		opts SimplifyOptions
		want [][]Point
	}{
		{"all polygons", SimplifyOptions{CollinearThreshold: 30}, [][]Point{small, large}},
		{"area filter", SimplifyOptions{CollinearThreshold: 30, MinArea: 10}, [][]Point{large}},
		{"douglas-peucker on rectangles", SimplifyOptions{CollinearThreshold: 30, Epsilon: 0.5}, [][]Point{small, large}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			polygons := ExtractPolygons(bm, tt.opts)
			if len(polygons) != len(tt.want) {
				t.Fatalf("got %d polygons, want %d", len(polygons), len(tt.want))
			}
			for i, poly := range polygons {
				if !reflect.DeepEqual(poly.Vertices, tt.want[i]) {
					t.Errorf("polygon %d = %v, want %v", i, poly.Vertices, tt.want[i])
				}
			}
		})
	}
}

func TestExtractPolygonsStaircase(t *testing.T) {
	bm := staircase()
	polygons := ExtractPolygons(bm, SimplifyOptions{CollinearThreshold: 30})
	if len(polygons) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polygons))
	}
	poly := polygons[0]
	if len(poly.Vertices) < 4 {
		t.Fatalf("too few vertices: %v", poly.Vertices)
	}
	for i, v := range poly.Vertices {
		if !bm.IsBlocked(int(v.X), int(v.Y)) {
			t.Errorf("vertex %v is not on the obstacle", v)
		}
		n := len(poly.Vertices)
		if turnAngle(poly.Vertices[(i-1+n)%n], v, poly.Vertices[(i+1)%n]) <= 30 {
			t.Errorf("vertex %v should have been simplified away", v)
		}
	}
}

func TestExtractPolygonsEmpty(t *testing.T) {
	if got := ExtractPolygons(NewBitmap(5, 5), SimplifyOptions{}); len(got) != 0 {
		t.Errorf("free field produced %d polygons", len(got))
	}
}

func TestOffsetVertices(t *testing.T) {
	field := blockedRect(30, 30, 8, 8, 17, 17)
	polygons := ExtractPolygons(field, SimplifyOptions{CollinearThreshold: 30})

	got := OffsetVertices(polygons, field)
	want := []Point{Pt(7, 7), Pt(7, 18), Pt(18, 18), Pt(18, 7)}
	if len(got) != 1 || !reflect.DeepEqual(got[0].Vertices, want) {
		t.Fatalf("OffsetVertices = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(polygons[0].Vertices, []Point{Pt(8, 8), Pt(8, 17), Pt(17, 17), Pt(17, 8)}) {
		t.Errorf("input polygon modified: %v", polygons[0].Vertices)
	}
}

func TestOffsetVerticesConcaveAndBorder(t *testing.T) {
	bm := staircase()
	polygons := OffsetVertices(ExtractPolygons(bm, SimplifyOptions{CollinearThreshold: 30}), bm)
	if len(polygons) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polygons))
	}
	for _, v := range polygons[0].Vertices {
		if bm.IsBlocked(int(v.X), int(v.Y)) {
			t.Errorf("vertex %v still on the obstacle", v)
		}
	}

	// (0,0) has no free diagonal inside the field; the corners touching the
	// border fall back to their only free diagonal
	edge := blockedRect(6, 6, 0, 0, 2, 2)
	got := OffsetVertices([]Polygon{{Vertices: []Point{Pt(0, 0), Pt(0, 2), Pt(2, 2), Pt(2, 0)}}}, edge)
	if want := []Point{Pt(0, 0), Pt(1, 3), Pt(3, 3), Pt(3, 1)}; !reflect.DeepEqual(got[0].Vertices, want) {
		t.Errorf("border polygon = %v, want %v", got[0].Vertices, want)
	}

	free := []Polygon{{Vertices: []Point{Pt(1, 1), Pt(1, 4), Pt(4, 4)}}}
	if got := OffsetVertices(free, NewBitmap(6, 6)); !reflect.DeepEqual(got, free) {
		t.Errorf("free vertices moved: %v", got)
	}
}
