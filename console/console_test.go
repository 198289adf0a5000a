package console

import (
	"strings"
	"testing"

	"palvideo/fonts/mono"
	"palvideo/gfx"
)

func lit(fb *gfx.FrameBuffer) int {
	n := 0
	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			if fb.Pixel(x, y) {
				n++
			}
		}
	}
	return n
}

func TestConsoleBuffersUntilFlush(t *testing.T) {
	fb := gfx.NewFrameBuffer(gfx.DisplayWidth, gfx.DisplayHeight)
	c := New(fb, mono.Face7x13)

	c.WriteLineString("field 50 locked")
	if lit(fb) != 0 {
		t.Fatal("Write drew before Flush")
	}
	if c.Pending() != len("field 50 locked\r\n") {
		t.Fatalf("Pending() = %d", c.Pending())
	}

	c.Flush()
	if c.Pending() != 0 {
		t.Fatalf("Pending() after Flush = %d, want 0", c.Pending())
	}
	if lit(fb) == 0 {
		t.Fatal("Flush drew nothing")
	}
	// The first line sits in the top text row.
	for y := mono.Face7x13.Height; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			if fb.Pixel(x, y) {
				t.Fatalf("pixel (%d,%d) lit below the first text row", x, y)
			}
		}
	}
}

func rowLit(fb *gfx.FrameBuffer, row, h int) bool {
	for y := row * h; y < (row+1)*h; y++ {
		for x := 0; x < fb.Width(); x++ {
			if fb.Pixel(x, y) {
				return true
			}
		}
	}
	return false
}

func TestConsoleWrapsToTop(t *testing.T) {
	fb := gfx.NewFrameBuffer(gfx.DisplayWidth, gfx.DisplayHeight)
	c := New(fb, mono.Face7x13)
	h := mono.Face7x13.Height
	rows := fb.Height() / h

	for i := 0; i < rows; i++ {
		c.WriteLineString("#")
	}
	c.Flush()
	if !rowLit(fb, rows-1, h) {
		t.Fatal("last text row is empty")
	}
	if rowLit(fb, 0, h) {
		t.Fatal("top row not blanked for the next line")
	}

	c.WriteLineString("#")
	c.Flush()
	if !rowLit(fb, 0, h) {
		t.Fatal("output did not wrap to the top row")
	}
	if rowLit(fb, 1, h) {
		t.Fatal("second row not blanked for the next line")
	}
}

func TestRowViewSplitsWrappedFill(t *testing.T) {
	fb := gfx.NewFrameBuffer(16, 40)
	v := &rowView{Displayer: gfx.NewDisplayer(fb), span: 36, capture: true}
	_ = v.FillRectangle(0, 8, 16, 4, gfx.Dark)
	if v.origin != 8 || v.capture {
		t.Fatalf("origin = %d capture = %v, want 8 false", v.origin, v.capture)
	}

	// Terminal lines 4..11 land on 32..35 and 0..3 on screen. Lines from
	// span down are not moved.
	_ = v.FillRectangle(0, 4, 16, 8, gfx.Lit)
	_ = v.FillRectangle(0, 36, 16, 4, gfx.Lit)
	for y := 0; y < fb.Height(); y++ {
		want := y < 4 || y >= 32
		if got := fb.Pixel(0, y); got != want {
			t.Fatalf("Pixel(0, %d) = %v, want %v", y, got, want)
		}
	}

	fb.ClearScreen()
	v.SetPixel(3, 8, gfx.Lit)
	v.SetPixel(3, 4, gfx.Lit)
	if !fb.Pixel(3, 0) || !fb.Pixel(3, 32) {
		t.Fatal("SetPixel not rotated by the origin")
	}
}

func TestConsoleClear(t *testing.T) {
	fb := gfx.NewFrameBuffer(gfx.DisplayWidth, gfx.DisplayHeight)
	c := New(fb, mono.Face7x13)
	c.WriteLineBytes([]byte("hello"))
	c.Flush()
	c.Write([]byte("pending"))
	c.Clear()
	if lit(fb) != 0 || c.Pending() != 0 {
		t.Fatalf("after Clear: lit=%d pending=%d", lit(fb), c.Pending())
	}
}

func TestConsoleDropsOldest(t *testing.T) {
	fb := gfx.NewFrameBuffer(gfx.DisplayWidth, gfx.DisplayHeight)
	c := New(fb, mono.Face7x13)
	c.Write([]byte(strings.Repeat("a", MaxPending)))
	c.Write([]byte("tail"))
	if c.Pending() != MaxPending || c.Dropped() != 4 {
		t.Fatalf("Pending()=%d Dropped()=%d, want %d 4", c.Pending(), c.Dropped(), MaxPending)
	}
}
