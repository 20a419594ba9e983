package fieldnav

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestWriteEdgesCSV(t *testing.T) {
	g, err := BakePoints([]Point{Pt(1, 1), Pt(4, 5), Pt(8, 1)}, NewBitmap(10, 10), DefaultBakeOptions())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteEdgesCSV(&buf, g); err != nil {
		t.Fatalf("WriteEdgesCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "source_x,source_y,target_x,target_y,weight" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != g.EdgeCount()+1 {
		t.Errorf("got %d lines, want %d", len(lines), g.EdgeCount()+1)
	}

	rows := EdgeRows(g)
	if rows[0].SourceX != 1 || rows[0].TargetX != 4 || rows[0].Weight != 5 {
		t.Errorf("first row = %+v", *rows[0])
	}
}

func TestPolygonsGeoJSONRoundTrip(t *testing.T) {
	_, polygons := squareObstacle()
	polygons = append(polygons, Polygon{Vertices: []Point{Pt(1.5, 2), Pt(3, 7.25), Pt(6, 2)}})

	data, err := PolygonsToGeoJSON(polygons)
	if err != nil {
		t.Fatalf("PolygonsToGeoJSON: %v", err)
	}
	got, err := PolygonsFromGeoJSON(data)
	if err != nil {
		t.Fatalf("PolygonsFromGeoJSON: %v", err)
	}
	if !reflect.DeepEqual(got, polygons) {
		t.Errorf("round trip = %v, want %v", got, polygons)
	}
}

func TestPolygonsFromGeoJSON(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{}},
		{"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":[
			[[[0,0],[4,0],[4,4],[0,0]]],
			[[[10,10],[12,10],[12,12],[10,10]]]
		]},"properties":{}}
	]}`

	got, err := PolygonsFromGeoJSON([]byte(data))
	if err != nil {
		t.Fatalf("PolygonsFromGeoJSON: %v", err)
	}
	want := []Polygon{
		{Vertices: []Point{Pt(0, 0), Pt(4, 0), Pt(4, 4)}},
		{Vertices: []Point{Pt(10, 10), Pt(12, 10), Pt(12, 12)}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := PolygonsFromGeoJSON([]byte("[")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
