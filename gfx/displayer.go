package gfx

import (
	"image/color"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Displayer)(nil)

// Displayer adapts a framebuffer to the TinyGo display interface so that
// tinyfont and tinyterm can render into it. Unlike the raw primitives it
// clips out-of-range coordinates, because font renderers routinely draw past
// the edges.
//
// A colour counts as lit when its luma is at least half scale.
type Displayer struct {
	fb *FrameBuffer
}

// NewDisplayer wraps fb.
func NewDisplayer(fb *FrameBuffer) *Displayer {
	return &Displayer{fb: fb}
}

func (d *Displayer) Size() (x, y int16) {
	return int16(d.fb.width), int16(d.fb.height)
}

func (d *Displayer) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.width || iy < 0 || iy >= d.fb.height {
		return
	}
	d.fb.SetPixel(ix, iy, actionFor(c))
}

// Display is a no-op: the framebuffer is transmitted continuously.
func (d *Displayer) Display() error { return nil }

func (d *Displayer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, d.fb.width)
	y0 := clampInt(int(y), 0, d.fb.height)
	x1 := clampInt(int(x)+int(width), 0, d.fb.width)
	y1 := clampInt(int(y)+int(height), 0, d.fb.height)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	d.fb.FillRectangle(x0, y0, x1-1, y1-1, actionFor(c))
	return nil
}

// SetScroll is ignored; there is no hardware scroll register.
func (d *Displayer) SetScroll(line int16) {
	_ = line
}

func (d *Displayer) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

// Lit and Dark are the two colours the display can show.
var (
	Lit  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Dark = color.RGBA{A: 0xFF}
)

func actionFor(c color.RGBA) Action {
	luma := (299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000
	if luma >= 0x80 {
		return Set
	}
	return Clear
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
