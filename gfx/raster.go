package gfx

// DrawLine draws a line between two points, both inclusive, with the integer
// Bresenham algorithm.
//
// The walk steps one pixel per iteration along the major axis and advances
// the minor axis whenever the roll-over counter reaches the major delta. X is
// the major axis only when |dx| > |dy|; equal deltas step along Y. The walk
// always starts at the endpoint with the smaller major coordinate, so the
// pixel set does not depend on argument order.
func (f *FrameBuffer) DrawLine(x1, y1, x2, y2 int, a Action) {
	dx := absInt(x2 - x1)
	dy := absInt(y2 - y1)

	if dx > dy {
		if x1 > x2 {
			x1, y1, x2, y2 = x2, y2, x1, y1
		}
		step := 1
		if y2 < y1 {
			step = -1
		}
		x, y := x1, y1
		f.SetPixel(x, y, a)
		roll := dx >> 1
		for n := dx; n > 0; n-- {
			roll += dy
			if roll >= dx {
				roll -= dx
				y += step
			}
			x++
			f.SetPixel(x, y, a)
		}
		return
	}

	if y1 > y2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}
	step := 1
	if x2 < x1 {
		step = -1
	}
	x, y := x1, y1
	f.SetPixel(x, y, a)
	roll := dy >> 1
	for n := dy; n > 0; n-- {
		roll += dx
		if roll >= dy {
			roll -= dy
			x += step
		}
		y++
		f.SetPixel(x, y, a)
	}
}

// DrawHorizontalRun draws n pixels starting at (x, y) going right.
//
// The leading partial byte and the trailing partial byte are masked; whole
// bytes in between are written directly.
func (f *FrameBuffer) DrawHorizontalRun(x, y, n int, a Action) {
	if n <= 0 {
		return
	}
	f.mustContain(x, y)
	f.mustContain(x+n-1, y)

	row := f.Row(y)
	i := x >> 3
	bit := x & 7

	if bit > 0 {
		m := byte(0xFF) >> bit
		if bit+n < 8 {
			m &= byte(0xFF) << (8 - (bit + n))
			n = 0
		} else {
			n -= 8 - bit
		}
		apply(&row[i], m, a)
		i++
	}

	for ; n >= 8; n -= 8 {
		switch a {
		case Set:
			row[i] = 0xFF
		case Clear:
			row[i] = 0
		case Toggle:
			row[i] ^= 0xFF
		}
		i++
	}

	if n > 0 {
		apply(&row[i], byte(0xFF)<<(8-n), a)
	}
}

// DrawVerticalRun draws n pixels starting at (x, y) going down. The byte
// index and mask are computed once and the index strides by one row.
func (f *FrameBuffer) DrawVerticalRun(x, y, n int, a Action) {
	if n <= 0 {
		return
	}
	f.mustContain(x, y)
	f.mustContain(x, y+n-1)

	i := y*f.stride + x>>3
	m := byte(0x80) >> (x & 7)

	switch a {
	case Set:
		for ; n > 0; n-- {
			f.buf[i] |= m
			i += f.stride
		}
	case Clear:
		for ; n > 0; n-- {
			f.buf[i] &^= m
			i += f.stride
		}
	case Toggle:
		for ; n > 0; n-- {
			f.buf[i] ^= m
			i += f.stride
		}
	}
}

// DrawRectangle draws the outline of the rectangle spanning both corners,
// inclusive. Corners are plotted once.
func (f *FrameBuffer) DrawRectangle(x1, y1, x2, y2 int, a Action) {
	x1, x2 = ordered(x1, x2)
	y1, y2 = ordered(y1, y2)
	w := x2 - x1 + 1

	f.DrawHorizontalRun(x1, y1, w, a)
	if y2 == y1 {
		return
	}
	if h := y2 - y1 - 1; h > 0 {
		f.DrawVerticalRun(x1, y1+1, h, a)
		if x2 != x1 {
			f.DrawVerticalRun(x2, y1+1, h, a)
		}
	}
	f.DrawHorizontalRun(x1, y2, w, a)
}

// FillRectangle fills the rectangle spanning both corners, inclusive.
func (f *FrameBuffer) FillRectangle(x1, y1, x2, y2 int, a Action) {
	x1, x2 = ordered(x1, x2)
	y1, y2 = ordered(y1, y2)
	w := x2 - x1 + 1
	for y := y1; y <= y2; y++ {
		f.DrawHorizontalRun(x1, y, w, a)
	}
}

// DrawCircle draws a circle of radius r centred on (cx, cy) with the
// midpoint algorithm. Each computed octant point is reflected eight ways;
// reflections that coincide on the axes or the diagonals are plotted once, so
// Toggle produces the same pixels as Set.
func (f *FrameBuffer) DrawCircle(cx, cy, r int, a Action) {
	err := -r
	x := r
	y := 0
	for x >= y {
		f.plot8(cx, cy, x, y, a)

		err += y
		y++
		err += y
		if err >= 0 {
			x--
			err -= x
			err -= x
		}
	}
}

func (f *FrameBuffer) plot8(cx, cy, x, y int, a Action) {
	f.plot4(cx, cy, x, y, a)
	if x != y {
		f.plot4(cx, cy, y, x, a)
	}
}

func (f *FrameBuffer) plot4(cx, cy, x, y int, a Action) {
	f.SetPixel(cx+x, cy+y, a)
	if x != 0 {
		f.SetPixel(cx-x, cy+y, a)
	}
	if y != 0 {
		f.SetPixel(cx+x, cy-y, a)
	}
	if x != 0 && y != 0 {
		f.SetPixel(cx-x, cy-y, a)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
