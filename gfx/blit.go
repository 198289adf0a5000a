package gfx

import (
	"fmt"
	"strings"
)

// Image is an immutable monochrome bitmap. Rows are packed MSB-first and
// padded with zero bits to a byte boundary.
type Image struct {
	Bits   []byte
	Width  int
	Height int
}

// NewImage returns a blank image.
func NewImage(width, height int) *Image {
	stride := (width + 7) / 8
	return &Image{Bits: make([]byte, stride*height), Width: width, Height: height}
}

// ImageFromRows builds an image from rows of text art. Any character other
// than ' ' or '.' is a lit pixel. The image is as wide as the longest row.
func ImageFromRows(rows ...string) *Image {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	img := NewImage(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] != ' ' && r[x] != '.' {
				img.Set(x, y, true)
			}
		}
	}
	return img
}

// Stride returns the number of bytes per image row.
func (img *Image) Stride() int { return (img.Width + 7) / 8 }

// At reports whether the pixel at (x, y) is lit.
func (img *Image) At(x, y int) bool {
	return img.Bits[y*img.Stride()+x>>3]&(0x80>>(x&7)) != 0
}

// Set changes one pixel. It is intended for building images before they are
// handed to the blitter.
func (img *Image) Set(x, y int, on bool) {
	i := y*img.Stride() + x>>3
	m := byte(0x80) >> (x & 7)
	if on {
		img.Bits[i] |= m
	} else {
		img.Bits[i] &^= m
	}
}

// String renders the image as text art, one line per row.
func (img *Image) String() string {
	var sb strings.Builder
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if img.At(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Cursor is the blit position: pixel coordinates plus the bit offset of X
// within its byte.
type Cursor struct {
	X      int
	Y      int
	BitPos uint8
}

// Canvas is the foreground drawing context. It embeds the framebuffer's
// primitives and owns the draw cursor used by PutBitmap.
//
// A Canvas must only be used by one goroutine (the foreground loop).
type Canvas struct {
	*FrameBuffer

	off int // byte index of the cursor into the framebuffer
	x   int
	y   int
	bit int
}

// NewCanvas returns a canvas drawing into fb with the cursor at the origin.
func NewCanvas(fb *FrameBuffer) *Canvas {
	return &Canvas{FrameBuffer: fb}
}

// GotoXY moves the draw cursor.
func (c *Canvas) GotoXY(x, y int) {
	c.mustContain(x, y)
	c.x = x
	c.y = y
	c.bit = x & 7
	c.off = y*c.stride + x>>3
}

// Cursor returns the current draw position.
func (c *Canvas) Cursor() Cursor {
	return Cursor{X: c.x, Y: c.y, BitPos: uint8(c.bit)}
}

// PutBitmap renders img with its top-left corner at the cursor and advances
// the cursor by img.Width. It returns the width consumed.
//
// Each destination byte is assembled from up to two consecutive source bytes:
// the trailing bits of the previous source byte shifted left by 8-bitPos,
// OR'd with the leading bits of the current source byte shifted right by
// bitPos. Per row that touches ceil((bitPos+w)/8) destination bytes and
// consumes ceil(w/8) source bytes. The image must fit inside the framebuffer
// from the cursor position.
func (c *Canvas) PutBitmap(img *Image, a Action) int {
	w := img.Width
	bit := c.bit
	nfb := (bit + w + 7) >> 3
	nimg := (w + 7) >> 3

	if checked {
		if c.x+w > c.width || c.y+img.Height > c.height {
			panic(fmt.Sprintf("gfx: %dx%d bitmap at (%d,%d) exceeds %dx%d framebuffer",
				w, img.Height, c.x, c.y, c.width, c.height))
		}
		if len(img.Bits) < nimg*img.Height {
			panic(fmt.Sprintf("gfx: bitmap has %d bytes, want %d", len(img.Bits), nimg*img.Height))
		}
	}

	finish := c.off + (bit+w)>>3
	dst := c.off
	for row := 0; row < img.Height; row++ {
		src := img.Bits[row*nimg : row*nimg+nimg]
		d := c.buf[dst : dst+nfb]

		i := 0
		for j := range d {
			var m byte
			if j != 0 {
				m = src[i] << (8 - bit)
				i++
			}
			if i < nimg {
				m |= src[i] >> bit
			}
			apply(&d[j], m, a)
		}
		dst += c.stride
	}

	c.off = finish
	c.x += w
	c.bit = (bit + w) & 7
	return w
}

// CopyImage reads a w×h region with its top-left corner at (x, y) back out
// of the framebuffer. It inverts the PutBitmap shift combination: each image
// byte is the destination byte shifted left by the bit offset OR'd with the
// next destination byte shifted right by 8 minus the offset.
func (f *FrameBuffer) CopyImage(x, y, w, h int) *Image {
	if w <= 0 || h <= 0 {
		return NewImage(0, 0)
	}
	f.mustContain(x, y)
	f.mustContain(x+w-1, y+h-1)

	img := NewImage(w, h)
	nimg := img.Stride()
	bit := x & 7
	tail := byte(0xFF)
	if r := w & 7; r != 0 {
		tail = byte(0xFF) << (8 - r)
	}

	for row := 0; row < h; row++ {
		src := f.Row(y + row)[x>>3:]
		dst := img.Bits[row*nimg : row*nimg+nimg]
		for j := range dst {
			b := src[j] << bit
			if bit != 0 && j+1 < len(src) {
				b |= src[j+1] >> (8 - bit)
			}
			dst[j] = b
		}
		dst[nimg-1] &= tail
	}
	return img
}
