//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

// pinButtons polls an active-low push button. A press shorter than
// buttonHoldTime is a click, a longer one a hold.
type pinButtons struct {
	ch chan ButtonEvent
}

const (
	buttonPoll     = 10 * time.Millisecond
	buttonDebounce = 3 // consecutive equal samples
	buttonHoldTime = time.Second
)

func newPinButtons(pin machine.Pin) *pinButtons {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	b := &pinButtons{ch: make(chan ButtonEvent, 4)}
	go func() {
		ticker := time.NewTicker(buttonPoll)
		defer ticker.Stop()
		pressed := false
		same := 0
		var downAt time.Time
		for now := range ticker.C {
			down := !pin.Get()
			if down == pressed {
				same = 0
				continue
			}
			same++
			if same < buttonDebounce {
				continue
			}
			same = 0
			pressed = down
			if pressed {
				downAt = now
				continue
			}
			kind := ButtonClick
			if now.Sub(downAt) >= buttonHoldTime {
				kind = ButtonHold
			}
			select {
			case b.ch <- ButtonEvent{Kind: kind}:
			default:
			}
		}
	}()
	return b
}

func (b *pinButtons) Events() <-chan ButtonEvent { return b.ch }
