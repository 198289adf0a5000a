package gfx

import (
	"bytes"
	"image/color"
	"math/rand"
	"testing"
)

func randomImage(r *rand.Rand, w, h int) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, r.Intn(2) == 1)
		}
	}
	return img
}

func TestPutBitmapRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for bit := 0; bit < 8; bit++ {
		for w := 1; w <= 20; w++ {
			img := randomImage(r, w, 5)
			c := NewCanvas(NewFrameBuffer(64, 16))
			c.GotoXY(16+bit, 3)
			c.PutBitmap(img, Set)

			got := c.CopyImage(16+bit, 3, w, 5)
			if !bytes.Equal(got.Bits, img.Bits) {
				t.Fatalf("bit=%d w=%d: read back\n%swant\n%s", bit, w, got, img)
			}
		}
	}
}

func TestPutBitmapMatchesPixels(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for bit := 0; bit < 8; bit++ {
		for _, w := range []int{1, 3, 8, 9, 15, 16, 17, 24} {
			img := randomImage(r, w, 4)
			c := NewCanvas(NewFrameBuffer(64, 8))
			want := NewFrameBuffer(64, 8)
			x0 := 8 + bit
			c.GotoXY(x0, 2)
			c.PutBitmap(img, Set)
			for y := 0; y < img.Height; y++ {
				for x := 0; x < img.Width; x++ {
					if img.At(x, y) {
						want.SetPixel(x0+x, 2+y, Set)
					}
				}
			}
			if !bytes.Equal(c.Bytes(), want.Bytes()) {
				t.Fatalf("bit=%d w=%d: blit touched pixels outside the image", bit, w)
			}
		}
	}
}

func TestPutBitmapClearAndToggle(t *testing.T) {
	img := ImageFromRows(
		"#.#.#",
		".###.",
	)
	c := NewCanvas(NewFrameBuffer(32, 4))
	c.Fill(Set)
	c.GotoXY(11, 1)
	c.PutBitmap(img, Clear)
	for y := 0; y < 2; y++ {
		for x := 0; x < 5; x++ {
			if c.Pixel(11+x, 1+y) == img.At(x, y) {
				t.Fatalf("Clear blit: Pixel(%d,%d) = %v", 11+x, 1+y, c.Pixel(11+x, 1+y))
			}
		}
	}
	if !c.Pixel(10, 1) || !c.Pixel(16, 1) {
		t.Fatal("Clear blit touched neighbouring pixels")
	}

	c.ClearScreen()
	c.GotoXY(3, 0)
	c.PutBitmap(img, Toggle)
	c.GotoXY(3, 0)
	c.PutBitmap(img, Toggle)
	if !bytes.Equal(c.Bytes(), make([]byte, len(c.Bytes()))) {
		t.Fatal("double toggle blit left pixels set")
	}
}

func TestPutBitmapCursorAdvance(t *testing.T) {
	c := NewCanvas(NewFrameBuffer(DisplayWidth, DisplayHeight))
	for start := 0; start < 8; start++ {
		for _, w := range []int{1, 5, 7, 8, 11, 23} {
			c.GotoXY(40+start, 10)
			before := c.Cursor()
			img := NewImage(w, 3)
			if got := c.PutBitmap(img, Set); got != w {
				t.Fatalf("PutBitmap() = %d, want %d", got, w)
			}
			after := c.Cursor()
			if want := uint8((int(before.BitPos) + w) % 8); after.BitPos != want {
				t.Fatalf("start=%d w=%d: BitPos = %d, want %d", start, w, after.BitPos, want)
			}
			if after.X != before.X+w || after.Y != before.Y {
				t.Fatalf("cursor = %+v, want X=%d Y=%d", after, before.X+w, before.Y)
			}
			if want := 10*c.Stride() + (before.X+w)>>3; c.off != want {
				t.Fatalf("cursor byte offset = %d, want %d", c.off, want)
			}
		}
	}
}

func TestPutBitmapStreamsAcrossBytes(t *testing.T) {
	glyph := ImageFromRows(
		"##...",
		"#.#..",
		"##...",
	)
	c := NewCanvas(NewFrameBuffer(64, 8))
	c.GotoXY(1, 2)
	total := 0
	for i := 0; i < 6; i++ {
		total += c.PutBitmap(glyph, Set)
	}
	if total != 30 {
		t.Fatalf("total width = %d, want 30", total)
	}
	want := NewCanvas(NewFrameBuffer(64, 8))
	for i := 0; i < 6; i++ {
		want.GotoXY(1+5*i, 2)
		want.PutBitmap(glyph, Set)
	}
	if !bytes.Equal(c.Bytes(), want.Bytes()) {
		t.Fatal("streamed blits differ from positioned blits")
	}
}

func TestPutBitmapOversizePanics(t *testing.T) {
	if !checked {
		t.Skip("precondition checks disabled")
	}
	c := NewCanvas(NewFrameBuffer(16, 16))
	c.GotoXY(10, 0)
	defer func() {
		if recover() == nil {
			t.Fatal("oversized bitmap did not panic")
		}
	}()
	c.PutBitmap(NewImage(8, 1), Set)
}

func TestImageFromRows(t *testing.T) {
	img := ImageFromRows("#..#######", ".#")
	if img.Width != 10 || img.Height != 2 {
		t.Fatalf("size = %dx%d, want 10x2", img.Width, img.Height)
	}
	if want := []byte{0x9F, 0xC0, 0x40, 0x00}; !bytes.Equal(img.Bits, want) {
		t.Fatalf("Bits = % x, want % x", img.Bits, want)
	}
}

func TestDisplayerClipsAndThresholds(t *testing.T) {
	fb := NewFrameBuffer(16, 8)
	d := NewDisplayer(fb)
	if w, h := d.Size(); w != 16 || h != 8 {
		t.Fatalf("Size() = %d,%d, want 16,8", w, h)
	}
	d.SetPixel(-1, 0, Lit)
	d.SetPixel(16, 0, Lit)
	d.SetPixel(3, 4, Lit)
	d.SetPixel(4, 4, color.RGBA{R: 40, G: 40, B: 40, A: 255})
	if !fb.Pixel(3, 4) || fb.Pixel(4, 4) {
		t.Fatal("luma threshold not applied")
	}
	if err := d.FillRectangle(-4, -4, 10, 6, Lit); err != nil {
		t.Fatalf("FillRectangle: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 6; x++ {
			if !fb.Pixel(x, y) {
				t.Fatalf("clipped fill missed (%d,%d)", x, y)
			}
		}
	}
	if fb.Pixel(6, 0) || fb.Pixel(0, 2) {
		t.Fatal("clipped fill overran")
	}
}
