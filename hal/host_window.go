//go:build !tinygo && cgo

package hal

import (
	"image"
	"os"

	"palvideo/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// windowScale is the integer zoom applied to the monitor raster.
const windowScale = 2

// RunWindow starts a desktop window that shows what the simulated monitor
// receives. Space or Enter is the user button. It blocks until the window
// closes. H is a held button.
func RunWindow(newApp func(HAL) func() error) error {
	h := NewHost(DefaultSimConfig, os.Stdout)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(g.title(false))
	ebiten.SetWindowSize(h.mon.Width()*windowScale, h.mon.Height()*windowScale)
	// One game tick per field.
	ebiten.SetTPS(50)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *Host
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
	locked  bool
}

func (g *hostGame) title(locked bool) string {
	s := "palvideo (" + buildinfo.Short() + ")"
	if !locked {
		s += " - no signal"
	}
	return s
}

func (g *hostGame) Update() error {
	if inpututil.IsKeyJustReleased(ebiten.KeySpace) || inpututil.IsKeyJustReleased(ebiten.KeyEnter) {
		g.h.Press(ButtonClick)
	}
	if inpututil.IsKeyJustReleased(ebiten.KeyH) {
		g.h.Press(ButtonHold)
	}

	timerHz, _ := g.h.video.Clocks()
	if err := g.h.video.Advance(uint64(timerHz)/uint64(ebiten.TPS()), g.step); err != nil {
		return err
	}

	if st := g.h.mon.Status(); st.Locked != g.locked {
		g.locked = st.Locked
		ebiten.SetWindowTitle(g.title(g.locked))
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	mon := g.h.mon
	w, h := mon.Width(), mon.Height()
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.scratch = make([]byte, mon.Stride()*h)
		g.fbImg = ebiten.NewImage(w, h)
	}

	// Without lock a real set shows a blank screen.
	if g.locked {
		mon.SnapshotInto(g.scratch)
	} else {
		clear(g.scratch)
	}

	stride := mon.Stride()
	dst := g.img.Pix
	for y := 0; y < h; y++ {
		row := g.scratch[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			v := byte(0)
			if row[x>>3]&(0x80>>(x&7)) != 0 {
				v = 0xFF
			}
			j := (y*w + x) * 4
			dst[j+0] = v
			dst[j+1] = v
			dst[j+2] = v
			dst[j+3] = 0xFF
		}
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.mon.Width(), g.h.mon.Height()
}
