package demo

import "palvideo/gfx"

const (
	blinkFields  = 25
	blinkRadius  = 30
	hatchSpacing = 16
	hatchByte    = 0xF0
)

// TestCard draws a static geometry card: two frames, crossing diagonals and
// a centred circle. An inner circle blinks to show the picture is live.
type TestCard struct {
	fields int
}

func (p *TestCard) Name() string { return "testcard" }

func (p *TestCard) Start(s *Screen) {
	c := s.Canvas
	r, b := s.Width()-1, s.Height()-1
	cx, cy := s.Width()/2-1, s.Height()/2-1

	c.DrawRectangle(0, 0, r, b, gfx.Set)
	c.DrawRectangle(10, 10, r-10, b-10, gfx.Set)
	c.DrawLine(10, 10, r-10, b-10, gfx.Set)
	c.DrawLine(10, b-10, r-10, 10, gfx.Set)
	c.DrawLine(10, 10, cx-9, b-10, gfx.Set)
	c.DrawLine(10, b-10, cx-9, 10, gfx.Set)

	c.DrawLine(r-19, b-19, 20, 20, gfx.Set)
	c.DrawLine(r-19, 20, 20, b-19, gfx.Set)
	c.DrawLine(r-19, 20, cx-9, b-39, gfx.Set)
	c.DrawLine(r-19, b-19, cx-9, 20, gfx.Set)
	c.DrawCircle(cx, cy, 50, gfx.Set)
	p.fields = 0
}

func (p *TestCard) Frame(s *Screen) {
	p.fields++
	if p.fields%blinkFields != 0 {
		return
	}
	s.Canvas.DrawCircle(s.Width()/2-1, s.Height()/2-1, blinkRadius, gfx.Toggle)
}

// CrossHatch fills the screen with a byte-aligned grid: every sixteenth row
// and the last row are dashed, and the remaining rows carry a four pixel
// bar in every even byte column and in the last one. It is useful for
// checking line alignment on a real monitor.
type CrossHatch struct{}

func (CrossHatch) Name() string { return "crosshatch" }

func (CrossHatch) Start(s *Screen) {
	fb := s.Canvas.FrameBuffer
	last := fb.Stride() - 1
	for y := 0; y < fb.Height(); y++ {
		row := fb.Row(y)
		ruled := y%hatchSpacing == 0 || y == fb.Height()-1
		for x := range row {
			if ruled || x == last || x%2 == 0 {
				row[x] = hatchByte
			} else {
				row[x] = 0
			}
		}
	}
}

func (CrossHatch) Frame(*Screen) {}
