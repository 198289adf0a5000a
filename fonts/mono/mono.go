// Package mono provides fixed-cell 1-bpp fonts. Glyphs are gfx images that
// cover the whole character cell, so text is rendered by blitting cells back
// to back. Fonts also implement tinyfont.Fonter.
package mono

import (
	"errors"
	"fmt"
	"image/color"
	"slices"

	"palvideo/gfx"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Font is a fixed-cell monochrome font.
//
// Concurrent access is not safe due to internal glyph reuse (matches tinyfont's const2bit behavior).
type Font struct {
	Name    string
	Advance int // cell width
	Height  int // cell height
	Ascent  int // baseline offset from the top of the cell

	glyphs  map[rune]*gfx.Image
	missing *gfx.Image
	g       glyph
	tiny    *tinyfont.Font
}

// Printable is printable ASCII.
var Printable = runeRange(0x20, 0x7e)

// Face7x13 is the X11 7x13 fixed font.
var Face7x13 = MustFromFace("7x13", basicfont.Face7x13, Printable)

// Large is Face7x13 at twice the size.
var Large = Scale(Face7x13, 2)

func runeRange(lo, hi rune) []rune {
	out := make([]rune, 0, hi-lo+1)
	for r := lo; r <= hi; r++ {
		out = append(out, r)
	}
	return out
}

// FromFace rasterises runes from a fixed-advance face. A pixel is lit when
// its mask alpha is at least half scale. Runes the face lacks are skipped;
// they render as '?' (or blank, if '?' is missing too).
func FromFace(name string, face font.Face, runes []rune) (*Font, error) {
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()
	adv, ok := face.GlyphAdvance('0')
	if !ok {
		adv, ok = face.GlyphAdvance(' ')
	}
	if !ok {
		return nil, errors.New("mono: face has no advance for '0' or ' '")
	}
	advance := adv.Ceil()
	if advance <= 0 || height <= 0 {
		return nil, fmt.Errorf("mono: invalid cell %dx%d", advance, height)
	}

	f := &Font{
		Name:    name,
		Advance: advance,
		Height:  height,
		Ascent:  ascent,
		glyphs:  make(map[rune]*gfx.Image, len(runes)),
	}
	dot := fixed.P(0, ascent)
	for _, r := range runes {
		dr, mask, maskp, a, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		if a.Ceil() != advance {
			return nil, fmt.Errorf("mono: %q advance %d, want fixed %d", r, a.Ceil(), advance)
		}
		img := gfx.NewImage(advance, height)
		for y := dr.Min.Y; y < dr.Max.Y; y++ {
			if y < 0 || y >= height {
				continue
			}
			for x := dr.Min.X; x < dr.Max.X; x++ {
				if x < 0 || x >= advance {
					continue
				}
				_, _, _, al := mask.At(maskp.X+x-dr.Min.X, maskp.Y+y-dr.Min.Y).RGBA()
				if al >= 0x8000 {
					img.Set(x, y, true)
				}
			}
		}
		f.glyphs[r] = img
	}
	f.missing = f.glyphs['?']
	if f.missing == nil {
		f.missing = gfx.NewImage(advance, height)
	}
	return f, nil
}

// MustFromFace is like FromFace but panics on error.
func MustFromFace(name string, face font.Face, runes []rune) *Font {
	f, err := FromFace(name, face, runes)
	if err != nil {
		panic(err)
	}
	return f
}

// Scale returns f enlarged by an integer factor.
func Scale(f *Font, n int) *Font {
	if n <= 1 {
		return f
	}
	out := &Font{
		Name:    fmt.Sprintf("%dx%d", f.Advance*n, f.Height*n),
		Advance: f.Advance * n,
		Height:  f.Height * n,
		Ascent:  f.Ascent * n,
		glyphs:  make(map[rune]*gfx.Image, len(f.glyphs)),
	}
	for r, img := range f.glyphs {
		out.glyphs[r] = scaleImage(img, n)
	}
	out.missing = scaleImage(f.missing, n)
	return out
}

func scaleImage(img *gfx.Image, n int) *gfx.Image {
	out := gfx.NewImage(img.Width*n, img.Height*n)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			if img.At(x/n, y/n) {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

// Glyph returns the cell image for r.
func (f *Font) Glyph(r rune) *gfx.Image {
	if img, ok := f.glyphs[r]; ok {
		return img
	}
	return f.missing
}

// Has reports whether r has its own glyph.
func (f *Font) Has(r rune) bool {
	_, ok := f.glyphs[r]
	return ok
}

// TerminalMetrics returns the line height and baseline offset for
// tinyterm-style renderers.
func (f *Font) TerminalMetrics() (fontHeight, fontOffset int16) {
	return int16(f.Height), int16(f.Ascent)
}

// TinyFont returns f as a concrete tinyfont.Font, which is what tinyterm
// takes. Glyphs are sorted by rune and each bitmap is the cell packed MSB
// first, row after row with no padding between rows. Runes without a glyph
// render blank. The view is built on first use.
func (f *Font) TinyFont() *tinyfont.Font {
	if f.tiny != nil {
		return f.tiny
	}
	runes := make([]rune, 0, len(f.glyphs))
	for r := range f.glyphs {
		runes = append(runes, r)
	}
	slices.Sort(runes)

	t := &tinyfont.Font{
		BBox:     [4]int8{int8(f.Advance), int8(f.Height), 0, int8(-f.Ascent)},
		Glyphs:   make([]tinyfont.Glyph, 0, len(runes)),
		YAdvance: uint8(f.Height),
	}
	for _, r := range runes {
		t.Glyphs = append(t.Glyphs, tinyfont.Glyph{
			Rune:     r,
			Width:    uint8(f.Advance),
			Height:   uint8(f.Height),
			XAdvance: uint8(f.Advance),
			YOffset:  int8(-f.Ascent),
			Bitmaps:  packCell(f.glyphs[r]),
		})
	}
	f.tiny = t
	return t
}

func packCell(img *gfx.Image) []byte {
	n := img.Width * img.Height
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if img.At(i%img.Width, i/img.Width) {
			out[i>>3] |= 0x80 >> (i & 7)
		}
	}
	return out
}

var _ tinyfont.Fonter = (*Font)(nil)

func (f *Font) GetYAdvance() uint8 { return uint8(f.Height) }

func (f *Font) GetGlyph(r rune) tinyfont.Glypher {
	f.g = glyph{r: r, img: f.Glyph(r), ascent: f.Ascent}
	return &f.g
}

type glyph struct {
	r      rune
	img    *gfx.Image
	ascent int
}

func (g *glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	top := y - int16(g.ascent)
	for j := 0; j < g.img.Height; j++ {
		for i := 0; i < g.img.Width; i++ {
			if g.img.At(i, j) {
				display.SetPixel(x+int16(i), top+int16(j), c)
			}
		}
	}
}

func (g *glyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    uint8(g.img.Width),
		Height:   uint8(g.img.Height),
		XAdvance: uint8(g.img.Width),
		XOffset:  0,
		YOffset:  int8(-g.ascent),
	}
}
