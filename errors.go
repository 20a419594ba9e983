package fieldnav

import "errors"

// Sentinel errors returned by the planners and the graph store.
var (
	// ErrInvalidTarget is returned when the start or goal lies on a blocked cell.
	ErrInvalidTarget = errors.New("target is blocked")

	// ErrUnreachable is returned when the search space is exhausted without reaching the goal.
	ErrUnreachable = errors.New("no path found")

	// ErrOutOfBounds is returned when a coordinate lies outside the field.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrInvalidResolution is returned for a non-positive grid resolution.
	ErrInvalidResolution = errors.New("resolution must be positive")

	// ErrTooManyVertices is returned when a bake exceeds the configured vertex limit.
	ErrTooManyVertices = errors.New("too many vertices")

	// ErrGraphNotFound means the persisted graph does not exist. Rebake.
	ErrGraphNotFound = errors.New("graph file not found")

	// ErrGraphCorrupt means the persisted graph exists but cannot be trusted.
	ErrGraphCorrupt = errors.New("graph file corrupt")
)
