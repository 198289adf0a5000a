//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Host is the desktop HAL: a simulated video chain plus stdout logging.
type Host struct {
	logger  *hostLogger
	led     *hostLED
	video   *SimVideo
	mon     *Monitor
	buttons *hostButtons
}

// New returns a host HAL implementation.
func New() HAL {
	return NewHost(DefaultSimConfig, os.Stdout)
}

// NewHost returns a host HAL whose log lines go to w. A nil w discards them.
func NewHost(cfg SimConfig, w io.Writer) *Host {
	if w == nil {
		w = io.Discard
	}
	logger := &hostLogger{w: w}
	mon := NewMonitor(cfg.TimerHz, cfg.Width, cfg.Height)
	return &Host{
		logger:  logger,
		led:     &hostLED{},
		video:   NewSimVideo(cfg, mon),
		mon:     mon,
		buttons: newHostButtons(),
	}
}

func (h *Host) Logger() Logger   { return h.logger }
func (h *Host) LED() LED         { return h.led }
func (h *Host) Video() Video     { return h.video }
func (h *Host) Buttons() Buttons { return h.buttons }

// Sim returns the simulated video hardware.
func (h *Host) Sim() *SimVideo { return h.video }

// Monitor returns the simulated receiver.
func (h *Host) Monitor() *Monitor { return h.mon }

// Probe returns the LED pin state and the number of rising edges seen.
func (h *Host) Probe() (on bool, edges uint64) {
	h.led.mu.Lock()
	defer h.led.mu.Unlock()
	return h.led.on, h.led.edges
}

// Press injects a button gesture, as if the user button was used.
func (h *Host) Press(kind ButtonKind) {
	h.buttons.emit(ButtonEvent{Kind: kind})
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostLED is the timing probe pin. It toggles twice per field, so it counts
// edges instead of logging them.
type hostLED struct {
	mu    sync.Mutex
	on    bool
	edges uint64
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.on {
		l.edges++
	}
	l.on = true
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = false
}

type hostButtons struct {
	ch chan ButtonEvent
}

func newHostButtons() *hostButtons {
	return &hostButtons{ch: make(chan ButtonEvent, 16)}
}

func (b *hostButtons) Events() <-chan ButtonEvent { return b.ch }

func (b *hostButtons) emit(ev ButtonEvent) {
	select {
	case b.ch <- ev:
	default:
	}
}
