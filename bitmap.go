package fieldnav

// Bitmap is a dense occupancy grid. It implements OccupancyField and OutlineSource.
type Bitmap struct {
	cells  []bool // true = blocked
	width  int
	height int
}

// NewBitmap creates an all-free bitmap.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		cells:  make([]bool, width*height),
		width:  width,
		height: height,
	}
}

// Size returns the bitmap dimensions in cells.
func (b *Bitmap) Size() (int, int) {
	return b.width, b.height
}

// IsBlocked returns true if the cell is blocked. Out-of-bounds cells read as free.
func (b *Bitmap) IsBlocked(x, y int) bool {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return false
	}
	return b.cells[y*b.width+x]
}

// Set marks a cell blocked or free. Out-of-bounds writes are ignored.
func (b *Bitmap) Set(x, y int, blocked bool) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.cells[y*b.width+x] = blocked
}

// FillRect sets every cell of the inclusive rectangle [x0,x1]×[y0,y1].
func (b *Bitmap) FillRect(x0, y0, x1, y1 int, blocked bool) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			b.Set(x, y, blocked)
		}
	}
}

// Count returns the number of blocked cells.
func (b *Bitmap) Count() int {
	n := 0
	for _, c := range b.cells {
		if c {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{cells: make([]bool, len(b.cells)), width: b.width, height: b.height}
	copy(c.cells, b.cells)
	return c
}

// Invert returns a copy with blocked and free swapped.
func (b *Bitmap) Invert() *Bitmap {
	c := b.Clone()
	for i := range c.cells {
		c.cells[i] = !c.cells[i]
	}
	return c
}

// Dilate returns a copy where every cell within margin cells (Chebyshev distance)
// of a blocked cell is blocked. This is the square margin shape.
func (b *Bitmap) Dilate(margin int) *Bitmap {
	if margin <= 0 {
		return b.Clone()
	}

	// Separable max filter: rows first, then columns
	rows := make([]bool, len(b.cells))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if !b.cells[y*b.width+x] {
				continue
			}
			for dx := -margin; dx <= margin; dx++ {
				nx := x + dx
				if nx >= 0 && nx < b.width {
					rows[y*b.width+nx] = true
				}
			}
		}
	}

	out := NewBitmap(b.width, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if !rows[y*b.width+x] {
				continue
			}
			for dy := -margin; dy <= margin; dy++ {
				ny := y + dy
				if ny >= 0 && ny < b.height {
					out.cells[ny*b.width+x] = true
				}
			}
		}
	}
	return out
}

// bitmapComponent is an 8-connected region of blocked cells sharing a label.
type bitmapComponent struct {
	labels []int32
	width  int
	height int
	id     int32
	size   int
	startX int // first cell in raster order
	startY int
}

func (c *bitmapComponent) Contains(x, y int) bool {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return false
	}
	return c.labels[y*c.width+x] == c.id
}

func (c *bitmapComponent) Len() int {
	return c.size
}

// ConnectedComponents labels the 8-connected regions of blocked cells in raster order.
func (b *Bitmap) ConnectedComponents() []Component {
	labels := make([]int32, len(b.cells))
	var components []Component
	var stack []int

	next := int32(1)
	for start := range b.cells {
		if !b.cells[start] || labels[start] != 0 {
			continue
		}

		comp := &bitmapComponent{
			labels: labels,
			width:  b.width,
			height: b.height,
			id:     next,
			startX: start % b.width,
			startY: start / b.width,
		}
		next++

		labels[start] = comp.id
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp.size++

			x, y := idx%b.width, idx/b.width
			for _, d := range mooreOffsets {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= b.width || ny < 0 || ny >= b.height {
					continue
				}
				nidx := ny*b.width + nx
				if b.cells[nidx] && labels[nidx] == 0 {
					labels[nidx] = comp.id
					stack = append(stack, nidx)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

// mooreOffsets are Freeman chain directions 0..7 (E, NE, N, NW, W, SW, S, SE) with y pointing down.
var mooreOffsets = [8][2]int{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

// Outline traces the outer boundary of a component as a closed loop of cells.
// The first cell is not repeated at the end.
func (b *Bitmap) Outline(c Component) []Point {
	comp, ok := c.(*bitmapComponent)
	if !ok || comp.size == 0 {
		return nil
	}

	start := Pt(float64(comp.startX), float64(comp.startY))
	outline := []Point{start}

	// The start cell is the first in raster order, so nothing lies above or to its left.
	first, dir, ok := traceStep(comp, comp.startX, comp.startY, 7)
	if !ok {
		return outline // isolated cell
	}

	cx, cy := int(first.X), int(first.Y)
	limit := 4*comp.size + 8
	for i := 0; i < limit; i++ {
		next, nd, _ := traceStep(comp, cx, cy, dir)
		if cx == comp.startX && cy == comp.startY && next == first {
			break
		}
		outline = append(outline, Pt(float64(cx), float64(cy)))
		cx, cy, dir = int(next.X), int(next.Y), nd
	}
	return outline
}

// traceStep finds the next boundary cell after arriving at (x, y) in direction dir.
func traceStep(c *bitmapComponent, x, y, dir int) (Point, int, bool) {
	from := (dir + 7) % 8
	if dir%2 == 1 {
		from = (dir + 6) % 8
	}
	for i := 0; i < 8; i++ {
		d := (from + i) % 8
		nx, ny := x+mooreOffsets[d][0], y+mooreOffsets[d][1]
		if c.Contains(nx, ny) {
			return Pt(float64(nx), float64(ny)), d, true
		}
	}
	return Point{}, dir, false
}
