//go:build !tinygo

// Command fieldscope runs the firmware on the simulated video chain for a
// number of fields and reports what a monitor would see: pulse timing, lock
// state and optionally the received picture.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"
	"time"

	"palvideo/app"
	"palvideo/demo"
	"palvideo/hal"
	"palvideo/internal/buildinfo"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/bmp"
	"golang.org/x/term"
)

const defaultPreviewCols = 80

type options struct {
	fields   uint64
	demo     string
	snapshot string
	ascii    bool
	cols     int
	verbose  bool
}

func main() {
	var o options
	flag.Uint64Var(&o.fields, "fields", 10, "Number of fields to simulate.")
	flag.StringVar(&o.demo, "demo", "testcard", "Demo to run: "+strings.Join(demo.Names(), ", ")+".")
	flag.StringVar(&o.snapshot, "snapshot", "", "Write the received picture to this BMP file.")
	flag.BoolVar(&o.ascii, "ascii", false, "Print a text preview of the received picture.")
	flag.IntVar(&o.cols, "cols", 0, "Preview width in characters (0 = terminal width).")
	flag.BoolVar(&o.verbose, "v", false, "Show firmware log output.")
	flag.Parse()

	if o.cols <= 0 {
		o.cols = terminalCols()
	}
	if err := run(os.Stdout, o); err != nil {
		fmt.Fprintln(os.Stderr, "fieldscope:", err)
		os.Exit(1)
	}
}

func terminalCols() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultPreviewCols
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultPreviewCols
	}
	return w
}

type capture struct {
	status     hal.MonitorStatus
	picture    *image.Paletted
	collisions uint64
	late       uint64
	idle       byte
}

func run(w io.Writer, o options) error {
	if o.fields < 2 {
		return fmt.Errorf("need at least 2 fields, got %d", o.fields)
	}
	var logw io.Writer
	if o.verbose {
		logw = w
	}
	c, err := simulate(o.fields, o.demo, logw)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, buildinfo.Banner("fieldscope"))
	fmt.Fprint(w, report(c))

	if o.ascii {
		fmt.Fprint(w, preview(c.picture, o.cols))
	}
	if o.snapshot != "" {
		if err := writeBMP(o.snapshot, c.picture); err != nil {
			return err
		}
		fmt.Fprintf(w, "snapshot written to %s\n", o.snapshot)
	}
	return nil
}

func simulate(fields uint64, demoName string, logw io.Writer) (*capture, error) {
	h := hal.NewHost(hal.DefaultSimConfig, logw)
	var startErr error
	newApp := func(h hal.HAL) func() error {
		s, err := app.NewSystem(h, app.Config{Demo: demoName})
		if err != nil {
			startErr = err
			return func() error { return err }
		}
		return s.Step
	}
	// One extra field so the monitor has measured the last one.
	cfg := hal.HeadlessConfig{Enabled: true, Hz: 50, Ticks: fields + 1, Fast: true}
	if err := hal.RunHeadlessHost(context.Background(), h, newApp, cfg); err != nil {
		if startErr != nil {
			return nil, startErr
		}
		return nil, fmt.Errorf("simulate: %w", err)
	}

	mon := h.Monitor()
	c := &capture{
		status:  mon.Status(),
		picture: picture(mon.Snapshot(), mon.Width(), mon.Height()),
		idle:    h.Sim().IdleByte(),
	}
	c.collisions, c.late = h.Sim().TransferStats()
	return c, nil
}

var palette = color.Palette{color.Black, color.White}

// picture unpacks an MSB-first 1-bpp raster into a two colour image.
func picture(raster []byte, w, h int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	stride := (w + 7) / 8
	for y := 0; y < h; y++ {
		row := raster[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			if row[x>>3]&(0x80>>(x&7)) != 0 {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

func writeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %q: %w", path, err)
	}
	if err := bmp.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode snapshot %q: %w", path, err)
	}
	return f.Close()
}

type styles struct {
	label lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	title lipgloss.Style
}

func newStyles() styles {
	return styles{
		label: lipgloss.NewStyle().Width(16),
		ok:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		bad:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
	}
}

// tolerance is the relative error a monitor accepts on field and line
// period.
const tolerance = 0.01

func report(c *capture) string {
	st := newStyles()
	var sb strings.Builder
	row := func(label, value string, good bool) {
		style := st.ok
		if !good {
			style = st.bad
		}
		sb.WriteString(st.label.Render(label))
		sb.WriteString(style.Render(value))
		sb.WriteByte('\n')
	}
	s := c.status

	sb.WriteString(st.title.Render(fmt.Sprintf("field %d", s.Fields)))
	sb.WriteByte('\n')
	lock := "locked"
	if !s.Locked {
		lock = "no lock"
	}
	row("signal", lock, s.Locked)
	row("field period", s.FieldPeriod.String(), near(s.FieldPeriod, 20*time.Millisecond))
	row("line period", s.LinePeriod.String(), near(s.LinePeriod, 64*time.Microsecond))
	row("hsync width", s.HSyncWidth.String(), s.HSyncWidth > 3500*time.Nanosecond && s.HSyncWidth < 6*time.Microsecond)
	row("broad pulses", fmt.Sprint(s.BroadPulses), s.BroadPulses == 5)
	row("short pulses", fmt.Sprint(s.ShortPulses), s.ShortPulses == 11)
	row("lines", fmt.Sprint(s.Lines), s.Lines == 304)
	row("rows", fmt.Sprint(s.Rows), s.Rows == c.picture.Rect.Dy())
	row("bad pulses", fmt.Sprint(s.BadPulses), s.BadPulses == 0)
	row("collisions", fmt.Sprint(c.collisions), c.collisions == 0)
	row("late transfers", fmt.Sprint(c.late), c.late == 0)
	row("idle level", fmt.Sprintf("0x%02x", c.idle), c.idle == 0)
	return sb.String()
}

func near(got, want time.Duration) bool {
	d := float64(got - want)
	if d < 0 {
		d = -d
	}
	return d <= float64(want)*tolerance
}

// preview renders img as text at most cols characters wide. Each character
// covers a cell twice as tall as it is wide and is drawn when at least a
// quarter of its pixels are lit.
func preview(img *image.Paletted, cols int) string {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if cols <= 0 {
		cols = defaultPreviewCols
	}
	cw := (w + cols - 1) / cols
	ch := 2 * cw
	var sb strings.Builder
	for y0 := 0; y0 < h; y0 += ch {
		for x0 := 0; x0 < w; x0 += cw {
			lit, total := 0, 0
			for y := y0; y < min(y0+ch, h); y++ {
				for x := x0; x < min(x0+cw, w); x++ {
					total++
					if img.ColorIndexAt(x, y) == 1 {
						lit++
					}
				}
			}
			if 4*lit >= total {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
