package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"fieldnav"
	"fieldnav/config"
)

type RouteRequest struct {
	Start    fieldnav.Point `json:"start"`
	End      fieldnav.Point `json:"end"`
	Strategy string         `json:"strategy,omitempty"` // "graph" (default) or "grid"
}

type RouteResponse struct {
	Path     []fieldnav.Point `json:"path"`
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Distance float64          `json:"distance,omitempty"`
}

type BakeRequest struct {
	Force      bool `json:"force,omitempty"`
	SaveToFile bool `json:"saveToFile"`
}

// planner holds the field and the current navmesh. A bake builds a new mesh
// and swaps it in, so routes never see a half-built graph.
type planner struct {
	cfg   *config.Config
	field *fieldnav.Bitmap

	mu   sync.RWMutex
	mesh *fieldnav.NavMesh

	bakeMu sync.Mutex
}

func newPlanner(cfg *config.Config, field *fieldnav.Bitmap) *planner {
	return &planner{cfg: cfg, field: field}
}

func (p *planner) navMesh() *fieldnav.NavMesh {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mesh
}

func (p *planner) setNavMesh(mesh *fieldnav.NavMesh) {
	p.mu.Lock()
	p.mesh = mesh
	p.mu.Unlock()
}

// outlineSource returns the mask whose components become polygons
func (p *planner) outlineSource() fieldnav.OutlineSource {
	if p.cfg.Derived.FreeMask {
		return p.field.Invert()
	}
	return p.field
}

// bake builds a navmesh from the field, installs it and optionally writes it out
func (p *planner) bake(save bool) (*fieldnav.NavMesh, error) {
	p.bakeMu.Lock()
	defer p.bakeMu.Unlock()

	mesh, err := fieldnav.BuildNavMesh(p.field, p.outlineSource(), p.cfg.Derived.NavMesh)
	if err != nil {
		return nil, err
	}
	p.setNavMesh(mesh)

	if save {
		if err := p.export(mesh); err != nil {
			return mesh, err
		}
	}
	return mesh, nil
}

// export writes the graph file and any configured side outputs
func (p *planner) export(mesh *fieldnav.NavMesh) error {
	pc := p.cfg.Persistence
	if err := mesh.Save(pc.GraphFile); err != nil {
		return err
	}

	if pc.EdgesCSV != "" {
		f, err := os.Create(pc.EdgesCSV)
		if err != nil {
			return err
		}
		if err := fieldnav.WriteEdgesCSV(f, mesh.Graph); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		slog.Info("edge list written", "path", pc.EdgesCSV)
	}

	if pc.PolygonsGeoJSON != "" && mesh.Polygons != nil {
		data, err := fieldnav.PolygonsToGeoJSON(mesh.Polygons)
		if err != nil {
			return err
		}
		if err := os.WriteFile(pc.PolygonsGeoJSON, data, 0644); err != nil {
			return err
		}
		slog.Info("polygons written", "path", pc.PolygonsGeoJSON, "count", len(mesh.Polygons))
	}
	return nil
}

// loadOrBake reads the persisted graph, baking a fresh one when the file is missing
func (p *planner) loadOrBake() error {
	mesh, err := fieldnav.LoadNavMesh(p.cfg.Persistence.GraphFile)
	switch {
	case err == nil:
		p.setNavMesh(mesh)
		return nil
	case errors.Is(err, fieldnav.ErrGraphNotFound):
		slog.Info("no graph file, baking", "path", p.cfg.Persistence.GraphFile)
	case errors.Is(err, fieldnav.ErrGraphCorrupt):
		slog.Warn("graph file unreadable, rebaking", "error", err)
	default:
		return err
	}
	_, err = p.bake(true)
	return err
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

// routeStatus maps planner errors to HTTP status codes
func routeStatus(err error) int {
	switch {
	case errors.Is(err, fieldnav.ErrOutOfBounds),
		errors.Is(err, fieldnav.ErrInvalidTarget),
		errors.Is(err, fieldnav.ErrInvalidResolution):
		return http.StatusBadRequest
	case errors.Is(err, fieldnav.ErrUnreachable):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// POST /route - plan a path between two field points
func (p *planner) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("invalid route request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		path     []fieldnav.Point
		distance float64
		err      error
	)
	switch req.Strategy {
	case "grid":
		path, err = fieldnav.FindPath(req.Start, req.End, p.field, p.cfg.Derived.Grid)
		distance = pathLength(path)
	case "", "graph":
		mesh := p.navMesh()
		if mesh == nil {
			http.Error(w, "Graph not built. Call /bake first", http.StatusServiceUnavailable)
			return
		}
		path, distance, err = mesh.Route(req.Start, req.End, p.field, p.cfg.Derived.Route)
	default:
		http.Error(w, "Unknown strategy "+req.Strategy, http.StatusBadRequest)
		return
	}

	if err != nil {
		slog.Info("route failed",
			"strategy", req.Strategy,
			"start", req.Start,
			"end", req.End,
			"error", err,
		)
		writeJSON(w, routeStatus(err), RouteResponse{Success: false, Message: err.Error()})
		return
	}

	slog.Info("route found",
		"strategy", req.Strategy,
		"waypoints", len(path),
		"distance", distance,
	)
	writeJSON(w, http.StatusOK, RouteResponse{Path: path, Success: true, Distance: distance})
}

// POST /bake - rebuild the visibility graph from the field
func (p *planner) bakeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if p.navMesh() != nil && !req.Force {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"error":   "graph already exists",
			"message": "Graph is already built. Set 'force: true' to rebuild.",
		})
		return
	}

	mesh, err := p.bake(req.SaveToFile)
	if err != nil {
		slog.Error("bake failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, fieldnav.ErrTooManyVertices) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"numPolygons": len(mesh.Polygons),
		"numVertices": mesh.Graph.VertexCount(),
		"numEdges":    mesh.Graph.EdgeCount(),
	})
}

// GET /graph/lines - graph edges as segments for visualization
func (p *planner) graphLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mesh := p.navMesh()
	if mesh == nil {
		http.Error(w, "Graph not built. Call /bake first", http.StatusServiceUnavailable)
		return
	}

	lines := mesh.Graph.Lines()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"lines":    lines,
		"numNodes": mesh.Graph.VertexCount(),
		"numEdges": len(lines),
	})
}

// GET /health - Health check endpoint
func (p *planner) healthHandler(w http.ResponseWriter, r *http.Request) {
	mesh := p.navMesh()
	width, height := p.field.Size()

	status := "ready"
	numNodes := 0
	if mesh == nil {
		status = "waiting for graph"
	} else {
		numNodes = mesh.Graph.VertexCount()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"hasGraph": mesh != nil,
		"numNodes": numNodes,
		"field":    map[string]int{"width": width, "height": height},
	})
}

func (p *planner) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/route", corsMiddleware(p.routeHandler))
	mux.HandleFunc("/bake", corsMiddleware(p.bakeHandler))
	mux.HandleFunc("/graph/lines", corsMiddleware(p.graphLinesHandler))
	mux.HandleFunc("/health", corsMiddleware(p.healthHandler))
	return mux
}

func pathLength(path []fieldnav.Point) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += path[i-1].Distance(path[i])
	}
	return total
}
