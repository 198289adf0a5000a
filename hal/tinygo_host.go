//go:build tinygo && !baremetal

package hal

import (
	"time"
)

type tinyGoHostHAL struct {
	logger  *tinyGoHostLogger
	led     *tinyGoHostLED
	video   *SimVideo
	buttons *tinyGoHostButtons
}

// New returns a TinyGo-on-host HAL implementation.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU
// pin mapping. The simulated video chain is advanced in real time from its
// own goroutine, which plays the part of the interrupt controller.
func New() HAL {
	cfg := DefaultSimConfig
	h := &tinyGoHostHAL{
		logger:  &tinyGoHostLogger{},
		led:     &tinyGoHostLED{},
		video:   NewSimVideo(cfg, NewMonitor(cfg.TimerHz, cfg.Width, cfg.Height)),
		buttons: &tinyGoHostButtons{ch: make(chan ButtonEvent)},
	}
	go func() {
		const hz = 50
		ticker := time.NewTicker(time.Second / hz)
		defer ticker.Stop()
		for range ticker.C {
			if err := h.video.Advance(uint64(cfg.TimerHz)/hz, nil); err != nil {
				h.logger.WriteLineString("hal: sim: " + err.Error())
				return
			}
		}
	}()
	return h
}

func (h *tinyGoHostHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHostHAL) LED() LED         { return h.led }
func (h *tinyGoHostHAL) Video() Video     { return h.video }
func (h *tinyGoHostHAL) Buttons() Buttons { return h.buttons }

type tinyGoHostLogger struct{}

func (l *tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l *tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}

type tinyGoHostLED struct {
	on bool
}

func (l *tinyGoHostLED) High() { l.on = true }
func (l *tinyGoHostLED) Low()  { l.on = false }

type tinyGoHostButtons struct {
	ch chan ButtonEvent
}

func (b *tinyGoHostButtons) Events() <-chan ButtonEvent { return b.ch }
