// Package console is a VT100 text console rendered into the framebuffer.
//
// Writes are buffered and only reach the framebuffer on Flush, which the
// caller runs while vertical blanking is active. The display has no scroll
// register, so output wraps back to the top row once the screen is full.
package console

import (
	"bytes"
	"image/color"

	"palvideo/fonts/mono"
	"palvideo/gfx"

	"tinygo.org/x/tinyterm"
)

// MaxPending caps buffered output. Older bytes are dropped first.
const MaxPending = 4096

type Console struct {
	fb   *gfx.FrameBuffer
	v    *rowView
	font *mono.Font
	t    *tinyterm.Terminal

	pending bytes.Buffer
	dropped int
}

// New returns a console covering fb.
func New(fb *gfx.FrameBuffer, font *mono.Font) *Console {
	c := &Console{fb: fb, font: font}
	c.reset()
	return c
}

func (c *Console) reset() {
	h, off := c.font.TerminalMetrics()
	d := gfx.NewDisplayer(c.fb)
	_, height := d.Size()
	c.v = &rowView{
		Displayer: d,
		span:      height / h * h,
		capture:   true,
	}
	c.t = tinyterm.NewTerminal(c.v)
	c.t.Configure(&tinyterm.Config{
		Font:       c.font.TinyFont(),
		FontHeight: h,
		FontOffset: off,
	})
	c.v.capture = false
}

// Write buffers p. It never fails.
func (c *Console) Write(p []byte) (int, error) {
	c.pending.Write(p)
	if over := c.pending.Len() - MaxPending; over > 0 {
		c.pending.Next(over)
		c.dropped += over
	}
	return len(p), nil
}

// WriteLineString buffers s followed by CRLF, so a console can stand in for
// a hal.Logger.
func (c *Console) WriteLineString(s string) {
	c.Write([]byte(s))
	c.Write([]byte("\r\n"))
}

func (c *Console) WriteLineBytes(b []byte) {
	c.Write(b)
	c.Write([]byte("\r\n"))
}

// Flush renders buffered output into the framebuffer.
func (c *Console) Flush() {
	if c.pending.Len() == 0 {
		return
	}
	_, _ = c.t.Write(c.pending.Bytes())
	c.pending.Reset()
}

// Pending returns the number of buffered bytes.
func (c *Console) Pending() int { return c.pending.Len() }

// Dropped returns how many bytes were discarded because the buffer was full.
func (c *Console) Dropped() int { return c.dropped }

// Clear blanks the framebuffer, discards pending output and homes the cursor.
func (c *Console) Clear() {
	c.pending.Reset()
	c.fb.ClearScreen()
	c.reset()
}

// rowView rotates the text rows so that the row the terminal starts on is
// drawn at the top of the screen. The terminal picks its own starting row
// and blanks it while configuring; rowView records that row as its origin.
// Lines from span down, below the last whole text row, pass through unchanged.
type rowView struct {
	*gfx.Displayer
	origin  int16
	span    int16
	capture bool
}

func (v *rowView) row(y int16) int16 {
	if y < 0 || y >= v.span {
		return y
	}
	return (y - v.origin + v.span) % v.span
}

func (v *rowView) SetPixel(x, y int16, c color.RGBA) {
	v.Displayer.SetPixel(x, v.row(y), c)
}

func (v *rowView) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if v.capture {
		v.origin = y
		v.capture = false
	}
	for height > 0 {
		n := height
		switch {
		case y < 0 && y+n > 0:
			n = -y
		case y >= 0 && y < v.span:
			n = min(n, v.span-y, v.span-v.row(y))
		}
		if err := v.Displayer.FillRectangle(x, v.row(y), width, n, c); err != nil {
			return err
		}
		y += n
		height -= n
	}
	return nil
}
