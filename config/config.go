// Package config provides configuration loading for the planner.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"fieldnav"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all planner configuration parameters.
type Config struct {
	Field       FieldConfig       `yaml:"field"`
	Raycast     RaycastConfig     `yaml:"raycast"`
	Grid        GridConfig        `yaml:"grid"`
	NavMesh     NavMeshConfig     `yaml:"navmesh"`
	Route       RouteConfig       `yaml:"route"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// FieldConfig describes where the occupancy bitmap comes from.
type FieldConfig struct {
	Image         string `yaml:"image"`
	FreeThreshold int    `yaml:"free_threshold"` // luminance 0-255
	Margin        int    `yaml:"margin"`         // square dilation in pixels
}

// RaycastConfig holds the ray caster tolerance shared by bake and route.
type RaycastConfig struct {
	Tolerance float64 `yaml:"tolerance"`
}

// GridConfig holds grid A* parameters.
type GridConfig struct {
	Resolution        float64 `yaml:"resolution"`
	GoalTolerance     float64 `yaml:"goal_tolerance"`
	CoverageThreshold float64 `yaml:"coverage_threshold"`
	OpenSet           string  `yaml:"open_set"`
}

// NavMeshConfig holds outline extraction and bake parameters.
type NavMeshConfig struct {
	Mask               string  `yaml:"mask"` // blocked | free
	CollinearThreshold float64 `yaml:"collinear_threshold"`
	DPEpsilon          float64 `yaml:"dp_epsilon"`
	MinPolygonArea     float64 `yaml:"min_polygon_area"`
	DropEnclosed       bool    `yaml:"drop_enclosed"`
	MaxVertices        int     `yaml:"max_vertices"`
	Workers            int     `yaml:"workers"`
}

// RouteConfig holds graph query parameters.
type RouteConfig struct {
	AttachCandidates int `yaml:"attach_candidates"`
}

// PersistenceConfig names the files written by a bake.
type PersistenceConfig struct {
	GraphFile       string `yaml:"graph_file"`
	EdgesCSV        string `yaml:"edges_csv"`
	PolygonsGeoJSON string `yaml:"polygons_geojson"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DerivedConfig holds typed values built from the raw settings.
type DerivedConfig struct {
	Grid     fieldnav.GridOptions
	NavMesh  fieldnav.NavMeshOptions
	Route    fieldnav.RouteOptions
	LogLevel slog.Level
	FreeMask bool
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the raw values and builds the library options.
func (c *Config) computeDerived() error {
	if c.Grid.Resolution <= 0 {
		return fmt.Errorf("grid.resolution must be positive, got %g", c.Grid.Resolution)
	}
	if c.Field.FreeThreshold < 0 || c.Field.FreeThreshold > 255 {
		return fmt.Errorf("field.free_threshold must be within 0-255, got %d", c.Field.FreeThreshold)
	}

	openSet, err := fieldnav.ParseOpenSetKind(c.Grid.OpenSet)
	if err != nil {
		return fmt.Errorf("grid.open_set: %w", err)
	}

	switch c.NavMesh.Mask {
	case "", "blocked":
		c.Derived.FreeMask = false
	case "free":
		c.Derived.FreeMask = true
	default:
		return fmt.Errorf("navmesh.mask must be blocked or free, got %q", c.NavMesh.Mask)
	}

	if err := c.Derived.LogLevel.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	c.Derived.Grid = fieldnav.GridOptions{
		Resolution:        c.Grid.Resolution,
		GoalTolerance:     c.Grid.GoalTolerance,
		CoverageThreshold: c.Grid.CoverageThreshold,
		OpenSet:           openSet,
	}
	c.Derived.NavMesh = fieldnav.NavMeshOptions{
		Simplify: fieldnav.SimplifyOptions{
			CollinearThreshold: c.NavMesh.CollinearThreshold,
			Epsilon:            c.NavMesh.DPEpsilon,
			MinArea:            c.NavMesh.MinPolygonArea,
		},
		DropEnclosed: c.NavMesh.DropEnclosed,
		Bake: fieldnav.BakeOptions{
			Tolerance:   c.Raycast.Tolerance,
			MaxVertices: c.NavMesh.MaxVertices,
			Workers:     c.NavMesh.Workers,
		},
	}
	c.Derived.Route = fieldnav.RouteOptions{
		Tolerance:        c.Raycast.Tolerance,
		AttachCandidates: c.Route.AttachCandidates,
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
