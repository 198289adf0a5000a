// Package text lays out strings on a canvas with a fixed-cell font.
package text

import (
	"palvideo/fonts/mono"
	"palvideo/gfx"

	"tinygo.org/x/tinyfont"
)

// Writer renders text at the canvas cursor. Each character is one blit, so
// consecutive calls continue where the last one stopped.
type Writer struct {
	c    *gfx.Canvas
	font *mono.Font
}

// NewWriter returns a writer drawing into c with font f.
func NewWriter(c *gfx.Canvas, f *mono.Font) *Writer {
	return &Writer{c: c, font: f}
}

// SetFont selects the font for subsequent calls.
func (w *Writer) SetFont(f *mono.Font) { w.font = f }

// Font returns the selected font.
func (w *Writer) Font() *mono.Font { return w.font }

// Canvas returns the canvas the writer draws into.
func (w *Writer) Canvas() *gfx.Canvas { return w.c }

// PutChar draws one character and returns its width in pixels.
func (w *Writer) PutChar(r rune, a gfx.Action) int {
	return w.c.PutBitmap(w.font.Glyph(r), a)
}

// PutText draws s and returns its width in pixels.
func (w *Writer) PutText(s string, a gfx.Action) int {
	n := 0
	for _, r := range s {
		n += w.PutChar(r, a)
	}
	return n
}

// PutInt16 draws v as five zero-padded decimal digits.
func (w *Writer) PutInt16(v uint16, a gfx.Action) int {
	return w.PutText(Int16(v), a)
}

// Int16 formats v the way PutInt16 draws it.
func Int16(v uint16) string {
	var buf [5]byte
	for i := range buf {
		buf[len(buf)-1-i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[:])
}

// TextLen returns the width of s in pixels.
func (w *Writer) TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += w.font.Glyph(r).Width
	}
	return n
}

// TextHeight returns the cell height of the selected font.
func (w *Writer) TextHeight() int { return w.font.Height }

// Center moves the cursor so that s is centred on the canvas, and returns
// the chosen position.
func (w *Writer) Center(s string) (x, y int) {
	x = (w.c.Width() - 1 - w.TextLen(s)) / 2
	y = (w.c.Height() - 1 - w.TextHeight()) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	w.c.GotoXY(x, y)
	return x, y
}

// PrintCentered draws s horizontally centred with its cell top at y using
// tinyfont. Unlike Writer it clips at the framebuffer edges, so it suits
// titles whose length is not known in advance. Toggle draws as Set.
func PrintCentered(d *gfx.Displayer, f *mono.Font, y int, s string, a gfx.Action) {
	_, outbox := tinyfont.LineWidth(f, s)
	w, _ := d.Size()
	x := (int(w) - int(outbox)) / 2
	c := gfx.Lit
	if a == gfx.Clear {
		c = gfx.Dark
	}
	tinyfont.WriteLine(d, f, int16(x), int16(y+f.Ascent), s, c)
}
