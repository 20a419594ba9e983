package fieldnav

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// EdgeRow is one directed edge in CSV form.
type EdgeRow struct {
	SourceX float64 `csv:"source_x"`
	SourceY float64 `csv:"source_y"`
	TargetX float64 `csv:"target_x"`
	TargetY float64 `csv:"target_y"`
	Weight  float64 `csv:"weight"`
}

// EdgeRows flattens g into rows in vertex insertion order.
func EdgeRows(g *VisibilityGraph) []*EdgeRow {
	rows := make([]*EdgeRow, 0, g.EdgeCount())
	for _, from := range g.vertices {
		for _, e := range g.adjacency[from] {
			rows = append(rows, &EdgeRow{
				SourceX: from.X,
				SourceY: from.Y,
				TargetX: e.Target.X,
				TargetY: e.Target.Y,
				Weight:  e.Weight,
			})
		}
	}
	return rows
}

// WriteEdgesCSV writes every directed edge of g with a header row.
func WriteEdgesCSV(w io.Writer, g *VisibilityGraph) error {
	if err := gocsv.Marshal(EdgeRows(g), w); err != nil {
		return fmt.Errorf("failed to write edges csv: %w", err)
	}
	return nil
}

// PolygonsToGeoJSON encodes polygons as a FeatureCollection in field pixel coordinates.
func PolygonsToGeoJSON(polygons []Polygon) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i, poly := range polygons {
		if len(poly.Vertices) == 0 {
			continue
		}
		f := geojson.NewFeature(orb.Polygon{poly.Ring()})
		f.Properties["index"] = i
		f.Properties["vertices"] = len(poly.Vertices)
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal polygons: %w", err)
	}
	return data, nil
}

// PolygonsFromGeoJSON reads the outer ring of every Polygon and MultiPolygon
// feature. Other geometry types are skipped.
func PolygonsFromGeoJSON(data []byte) ([]Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse polygons: %w", err)
	}

	var polygons []Polygon
	for _, feature := range fc.Features {
		switch geom := feature.Geometry.(type) {
		case nil:
			continue
		case orb.Polygon:
			// First ring is the outer boundary
			if len(geom) > 0 {
				polygons = append(polygons, polygonFromRing(geom[0]))
			}
		case orb.MultiPolygon:
			for _, poly := range geom {
				if len(poly) > 0 {
					polygons = append(polygons, polygonFromRing(poly[0]))
				}
			}
		default:
			slog.Debug("skipping geometry", "type", feature.Geometry.GeoJSONType())
		}
	}
	return polygons, nil
}
