// Command fieldnav serves paths over an occupancy bitmap and bakes its
// visibility graph.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"fieldnav"
	"fieldnav/config"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (uses embedded defaults if empty)")
	fieldPath := flag.String("field", "", "Field bitmap, overrides field.image")
	bakeOnly := flag.Bool("bake", false, "Bake the visibility graph, write it out and exit")
	edgesCSV := flag.String("edges-csv", "", "Also write the edge list as CSV")
	polygonsGeoJSON := flag.String("polygons-geojson", "", "Also write the extracted polygons as GeoJSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *fieldPath != "" {
		cfg.Field.Image = *fieldPath
	}
	if *edgesCSV != "" {
		cfg.Persistence.EdgesCSV = *edgesCSV
	}
	if *polygonsGeoJSON != "" {
		cfg.Persistence.PolygonsGeoJSON = *polygonsGeoJSON
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Derived.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, *bakeOnly); err != nil {
		slog.Error("fieldnav failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, bakeOnly bool) error {
	if cfg.Field.Image == "" {
		return fmt.Errorf("no field bitmap: set field.image or pass -field")
	}

	raw, err := fieldnav.LoadBitmap(cfg.Field.Image, uint8(cfg.Field.FreeThreshold))
	if err != nil {
		return err
	}
	field := raw.Dilate(cfg.Field.Margin)
	slog.Info("field ready",
		"path", cfg.Field.Image,
		"margin", cfg.Field.Margin,
		"blocked", field.Count(),
	)

	p := newPlanner(cfg, field)

	if bakeOnly {
		_, err := p.bake(true)
		return err
	}

	if err := p.loadOrBake(); err != nil {
		return err
	}

	slog.Info("server starting",
		"addr", cfg.Server.Addr,
		"endpoints", []string{"POST /route", "POST /bake", "GET /graph/lines", "GET /health"},
	)
	return http.ListenAndServe(cfg.Server.Addr, p.routes())
}
