// Package demo holds the foreground programs the firmware cycles through:
// animated test patterns, a starfield and bouncing text and sprites.
//
// Programs draw straight into the live framebuffer. They do their drawing
// in Frame, which the caller runs at the start of vertical blanking, so
// nothing is half drawn while the raster passes over it.
package demo

import (
	"fmt"
	"math/rand"
	"strings"

	"palvideo/console"
	"palvideo/fonts/mono"
	"palvideo/gfx"
	"palvideo/text"
)

// Stats is what the status program reports. The caller refreshes it.
type Stats struct {
	Fields   uint32
	Overruns uint32
	Dropped  uint32
	Locked   bool
}

// Screen is the drawing context shared by all programs.
type Screen struct {
	Canvas  *gfx.Canvas
	Text    *text.Writer
	Display *gfx.Displayer
	Console *console.Console
	Rand    *rand.Rand
	Stats   Stats
}

// NewScreen returns a screen drawing into fb.
func NewScreen(fb *gfx.FrameBuffer) *Screen {
	c := gfx.NewCanvas(fb)
	return &Screen{
		Canvas:  c,
		Text:    text.NewWriter(c, mono.Face7x13),
		Display: gfx.NewDisplayer(fb),
		Console: console.New(fb, mono.Face7x13),
		Rand:    rand.New(rand.NewSource(1)),
	}
}

func (s *Screen) Width() int  { return s.Canvas.Width() }
func (s *Screen) Height() int { return s.Canvas.Height() }

// Program is one demo. Start is called on a cleared screen, Frame once per
// field at the start of vertical blanking.
type Program interface {
	Name() string
	Start(s *Screen)
	Frame(s *Screen)
}

// Passer is implemented by programs that also work on every pass of the
// foreground loop. blanking reports whether the raster is in vertical
// blanking.
type Passer interface {
	Pass(s *Screen, blanking bool)
}

// All returns a fresh instance of every program, in button order.
func All() []Program {
	return []Program{
		&LinePattern{},
		&Starfield{},
		&TextBounce{},
		&Sprite{},
		&TestCard{},
		&CrossHatch{},
		&Status{},
	}
}

// Names lists the program names in button order.
func Names() []string {
	all := All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Name()
	}
	return out
}

// Index returns the position of the named program in All.
func Index(name string) (int, error) {
	for i, n := range Names() {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown demo %q (have %s)", name, strings.Join(Names(), ", "))
}
