package demo

import "palvideo/gfx"

const (
	patternLines = 16
	patternDelay = 3 // fields between steps
)

type sweep uint8

const (
	sweepTopRight sweep = iota
	sweepRightBottom
	sweepBottomLeft
	sweepLeftTop
)

// LinePattern sweeps a fan of lines around the screen edges, one corner at
// a time, erasing the previous fan as it goes.
type LinePattern struct {
	state          sweep
	xDraw, yDraw   int
	xClear, yClear int
	delay          int
}

func (p *LinePattern) Name() string { return "lines" }

func (p *LinePattern) Start(s *Screen) {
	xs, ys := p.steps(s)
	p.state = sweepTopRight
	p.xDraw, p.yDraw = xs, ys
	p.xClear, p.yClear = xs, ys*(patternLines-1)
	p.delay = 0
}

func (p *LinePattern) steps(s *Screen) (int, int) {
	return s.Width() / patternLines, s.Height() / patternLines
}

func (p *LinePattern) Frame(s *Screen) {
	p.delay++
	if p.delay < patternDelay {
		return
	}
	p.delay = 0

	c := s.Canvas
	xs, ys := p.steps(s)
	right, bottom := s.Width()-1, s.Height()-1
	last := patternLines - 1

	switch p.state {
	case sweepTopRight:
		c.DrawLine(0, p.yClear, p.xClear, 0, gfx.Clear)
		p.yClear -= ys
		p.xClear += xs
		c.DrawLine(p.xDraw, 0, right, p.yDraw, gfx.Set)
		p.xDraw += xs
		p.yDraw += ys
		if p.xDraw >= s.Width() {
			p.state = sweepRightBottom
			p.xClear, p.yClear = xs, ys
			p.xDraw, p.yDraw = xs*last, ys
		}

	case sweepRightBottom:
		c.DrawLine(p.xClear, 0, right, p.yClear, gfx.Clear)
		p.yClear += ys
		p.xClear += xs
		c.DrawLine(right, p.yDraw, p.xDraw, bottom, gfx.Set)
		p.xDraw -= xs
		p.yDraw += ys
		if p.xDraw <= 0 {
			p.state = sweepBottomLeft
			p.xClear, p.yClear = xs*last, ys
			p.xDraw, p.yDraw = xs*last, ys*last
		}

	case sweepBottomLeft:
		c.DrawLine(right, p.yClear, p.xClear, bottom, gfx.Clear)
		p.yClear += ys
		p.xClear -= xs
		c.DrawLine(p.xDraw, bottom, 0, p.yDraw, gfx.Set)
		p.xDraw -= xs
		p.yDraw -= ys
		if p.xDraw <= 0 {
			p.state = sweepLeftTop
			p.xClear, p.yClear = xs*last, ys*last
			p.xDraw, p.yDraw = xs, ys*last
		}

	case sweepLeftTop:
		c.DrawLine(p.xClear, bottom, 0, p.yClear, gfx.Clear)
		p.yClear -= ys
		p.xClear -= xs
		c.DrawLine(0, p.yDraw, p.xDraw, 0, gfx.Set)
		p.xDraw += xs
		p.yDraw -= ys
		if p.xDraw >= s.Width() {
			p.state = sweepTopRight
			p.xClear, p.yClear = xs, ys*last
			p.xDraw, p.yDraw = xs, ys
		}
	}
}
