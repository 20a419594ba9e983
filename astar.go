package fieldnav

import (
	"fmt"
	"log/slog"
	"math"
)

// GridOptions configures FindPath.
type GridOptions struct {
	Resolution        float64     // scaled cells per field pixel
	GoalTolerance     float64     // early exit distance to the goal, in scaled cells
	CoverageThreshold float64     // blocked share that blocks a scaled cell; 0 means 0.5
	OpenSet           OpenSetKind // frontier structure
}

// DefaultGridOptions returns the options used when none are configured.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Resolution:        1,
		GoalTolerance:     0.9,
		CoverageThreshold: 0.5,
		OpenSet:           OpenSetScan,
	}
}

// neighborOffsets are tried in this order for every expansion.
var neighborOffsets = [8][2]int{
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// FindPath runs A* over a resolution-scaled copy of field and returns waypoints
// at scaled cell centers, mapped back to field coordinates.
//
// Every step costs 1, diagonals included, and the heuristic is the squared
// Euclidean distance to the goal. That heuristic is not admissible, so the
// returned path is a reasonable path, not necessarily the shortest one.
//
// Errors: ErrInvalidResolution, ErrOutOfBounds, ErrInvalidTarget (start or goal
// blocked, checked before any node is expanded) and ErrUnreachable.
func FindPath(start, goal Point, field OccupancyField, opts GridOptions) ([]Point, error) {
	if opts.Resolution <= 0 || math.IsNaN(opts.Resolution) || math.IsInf(opts.Resolution, 0) {
		return nil, ErrInvalidResolution
	}
	if !pointInField(field, start) {
		return nil, fmt.Errorf("start %v: %w", start, ErrOutOfBounds)
	}
	if !pointInField(field, goal) {
		return nil, fmt.Errorf("goal %v: %w", goal, ErrOutOfBounds)
	}
	if pointBlocked(field, start) {
		return nil, fmt.Errorf("start %v: %w", start, ErrInvalidTarget)
	}
	if pointBlocked(field, goal) {
		return nil, fmt.Errorf("goal %v: %w", goal, ErrInvalidTarget)
	}

	coverage := opts.CoverageThreshold
	if coverage <= 0 || math.IsNaN(coverage) {
		coverage = DefaultGridOptions().CoverageThreshold
	}

	res := opts.Resolution
	grid := newScaledField(field, res, coverage)
	width, height := grid.Size()

	startX, startY := start.Scale(res).Cell()
	goalPos := goal.Scale(res)
	goalX, goalY := goalPos.Cell()

	if grid.IsBlocked(startX, startY) {
		return nil, fmt.Errorf("start %v at resolution %g: %w", start, res, ErrInvalidTarget)
	}
	if grid.IsBlocked(goalX, goalY) {
		return nil, fmt.Errorf("goal %v at resolution %g: %w", goal, res, ErrInvalidTarget)
	}

	// Per-call state: the arena owns every node, parents are arena indices.
	arena := make([]pathNode, 0, 256)
	visited := make([]bool, width*height)
	open := newOpenSet(opts.OpenSet, &arena)

	arena = append(arena, pathNode{x: startX, y: startY, parent: -1})
	visited[startY*width+startX] = true
	open.push(0)

	expanded := 0
	for open.Len() > 0 {
		currentIdx := open.pop()
		current := arena[currentIdx]
		expanded++

		if (current.x == goalX && current.y == goalY) ||
			goalPos.Distance(Pt(float64(current.x), float64(current.y))) < opts.GoalTolerance {
			path := reconstructGridPath(arena, currentIdx, res)
			slog.Debug("grid path found",
				"start", start,
				"goal", goal,
				"resolution", res,
				"expanded", expanded,
				"waypoints", len(path),
			)
			return path, nil
		}

		for _, off := range neighborOffsets {
			nx, ny := current.x+off[0], current.y+off[1]
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			if grid.IsBlocked(nx, ny) {
				continue
			}
			if visited[ny*width+nx] {
				continue
			}
			visited[ny*width+nx] = true

			dx := float64(nx - goalX)
			dy := float64(ny - goalY)
			child := pathNode{
				x:      nx,
				y:      ny,
				parent: currentIdx,
				g:      current.g + 1,
				h:      dx*dx + dy*dy,
			}
			child.f = child.g + child.h
			arena = append(arena, child)
			open.push(len(arena) - 1)
		}
	}

	slog.Debug("grid search exhausted", "start", start, "goal", goal, "expanded", expanded)
	return nil, ErrUnreachable
}

// reconstructGridPath follows parent indices back to the start and maps cells to field coordinates.
func reconstructGridPath(arena []pathNode, idx int, resolution float64) []Point {
	var cells []pathNode
	for i := idx; i >= 0; i = arena[i].parent {
		cells = append(cells, arena[i])
	}

	path := make([]Point, len(cells))
	for i := range cells {
		c := cells[len(cells)-1-i]
		path[i] = Pt((float64(c.x)+0.5)/resolution, (float64(c.y)+0.5)/resolution)
	}
	return path
}
