package fieldnav

// OccupancyField answers blocked/free queries on an integer grid.
// Implementations must not change while a planning operation is running.
type OccupancyField interface {
	IsBlocked(x, y int) bool
	Size() (width, height int)
}

// Component is one connected region of an outline source.
type Component interface {
	Contains(x, y int) bool
	Len() int
}

// OutlineSource exposes connected regions and their ordered boundaries.
type OutlineSource interface {
	ConnectedComponents() []Component
	Outline(c Component) []Point
}

// inBounds reports whether (x, y) addresses a cell of field
func inBounds(field OccupancyField, x, y int) bool {
	w, h := field.Size()
	return x >= 0 && x < w && y >= 0 && y < h
}

// pointInField reports whether the cell containing p is inside field
func pointInField(field OccupancyField, p Point) bool {
	x, y := p.Cell()
	return inBounds(field, x, y)
}

// pointBlocked reports whether the cell containing p is blocked
func pointBlocked(field OccupancyField, p Point) bool {
	x, y := p.Cell()
	return field.IsBlocked(x, y)
}
