// Package gfx implements the packed 1-bit-per-pixel framebuffer and the
// raster primitives that draw into it.
//
// Rows are stored most-significant-bit first: bit 7 of byte 0 is the leftmost
// pixel of a row. A set bit is a lit pixel.
//
// The framebuffer is shared with the scanline dispatcher, which reads rows
// from interrupt context while active video is being transmitted. There is no
// lock. Foreground code is expected to draw only while vertical blanking is
// active (see video.Engine.BlankingActive). Drawing outside that window, or
// overrunning it, shows up as tearing on the next field; it never corrupts
// memory. This is a soft real-time contract and is not enforced.
//
// Coordinates are preconditions, not runtime errors: callers must keep
// 0 <= x < Width and 0 <= y < Height. Default builds check them and panic with
// a descriptive message; the gfxfast build tag removes those checks.
package gfx

import "fmt"

const (
	// DisplayWidth is the visible width in pixels.
	DisplayWidth = 320
	// DisplayHeight is the visible height in pixels (one row per active text line).
	DisplayHeight = 240
)

// Action selects how a primitive combines with the existing pixels.
type Action uint8

const (
	Clear Action = iota
	Set
	Toggle
)

func (a Action) String() string {
	switch a {
	case Clear:
		return "clear"
	case Set:
		return "set"
	case Toggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// FrameBuffer is a fixed-size packed bit array of Height rows by Stride bytes.
type FrameBuffer struct {
	width  int
	height int
	stride int
	buf    []byte
}

// NewFrameBuffer allocates a zeroed framebuffer. It is meant to be called
// once at start-up; the buffer is never resized.
func NewFrameBuffer(width, height int) *FrameBuffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("gfx: invalid framebuffer size %dx%d", width, height))
	}
	stride := (width + 7) / 8
	return &FrameBuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *FrameBuffer) Width() int  { return f.width }
func (f *FrameBuffer) Height() int { return f.height }

// Stride returns the number of bytes per row.
func (f *FrameBuffer) Stride() int { return f.stride }

// Bytes returns the whole backing store.
func (f *FrameBuffer) Bytes() []byte { return f.buf }

// Row returns row y as a slice of exactly Stride bytes.
func (f *FrameBuffer) Row(y int) []byte {
	off := y * f.stride
	return f.buf[off : off+f.stride : off+f.stride]
}

// ClearScreen zero-fills the framebuffer.
func (f *FrameBuffer) ClearScreen() {
	for i := range f.buf {
		f.buf[i] = 0
	}
}

// Fill applies a to every pixel.
func (f *FrameBuffer) Fill(a Action) {
	switch a {
	case Clear:
		f.ClearScreen()
	case Set:
		for i := range f.buf {
			f.buf[i] = 0xFF
		}
	case Toggle:
		for i := range f.buf {
			f.buf[i] ^= 0xFF
		}
	}
	f.trimPadding()
}

// Pixel reports whether the pixel at (x, y) is lit.
func (f *FrameBuffer) Pixel(x, y int) bool {
	f.mustContain(x, y)
	return f.buf[y*f.stride+x>>3]&(0x80>>(x&7)) != 0
}

// SetPixel sets, clears or toggles a single pixel.
func (f *FrameBuffer) SetPixel(x, y int, a Action) {
	f.mustContain(x, y)
	apply(&f.buf[y*f.stride+x>>3], 0x80>>(x&7), a)
}

// trimPadding clears the unused low bits of each row's last byte when the
// width is not a multiple of eight.
func (f *FrameBuffer) trimPadding() {
	pad := f.stride*8 - f.width
	if pad == 0 {
		return
	}
	keep := byte(0xFF) << pad
	for y := 0; y < f.height; y++ {
		f.buf[y*f.stride+f.stride-1] &= keep
	}
}

func (f *FrameBuffer) mustContain(x, y int) {
	if !checked {
		return
	}
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		panic(fmt.Sprintf("gfx: pixel (%d,%d) outside %dx%d framebuffer", x, y, f.width, f.height))
	}
}

func apply(b *byte, mask byte, a Action) {
	switch a {
	case Set:
		*b |= mask
	case Clear:
		*b &^= mask
	case Toggle:
		*b ^= mask
	}
}
