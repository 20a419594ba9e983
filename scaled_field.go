package fieldnav

import "math"

// scaledField is a resolution-scaled view of a source field, rasterized once per search.
// A scaled cell is blocked when the blocked share of the source pixels it covers
// reaches the coverage threshold.
type scaledField struct {
	cells  []bool
	width  int
	height int
}

func newScaledField(src OccupancyField, resolution, coverage float64) *scaledField {
	sw, sh := src.Size()
	w := int(math.Ceil(float64(sw) * resolution))
	h := int(math.Ceil(float64(sh) * resolution))

	f := &scaledField{
		cells:  make([]bool, w*h),
		width:  w,
		height: h,
	}

	for sy := 0; sy < h; sy++ {
		y0, y1 := sourceSpan(sy, resolution, sh)
		for sx := 0; sx < w; sx++ {
			x0, x1 := sourceSpan(sx, resolution, sw)

			total, blocked := 0, 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					total++
					if src.IsBlocked(x, y) {
						blocked++
					}
				}
			}
			if total > 0 && float64(blocked) >= coverage*float64(total) {
				f.cells[sy*w+sx] = true
			}
		}
	}
	return f
}

// sourceSpan returns the half-open range of source pixels covered by scaled cell i.
func sourceSpan(i int, resolution float64, limit int) (int, int) {
	lo := int(math.Floor(float64(i) / resolution))
	hi := int(math.Ceil(float64(i+1) / resolution))
	if hi <= lo {
		hi = lo + 1
	}
	if lo >= limit {
		lo = limit - 1
	}
	if hi > limit {
		hi = limit
	}
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

func (f *scaledField) Size() (int, int) {
	return f.width, f.height
}

func (f *scaledField) IsBlocked(x, y int) bool {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return false
	}
	return f.cells[y*f.width+x]
}
