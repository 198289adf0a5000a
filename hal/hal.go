package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction. The firmware uses it as a timing
// probe while the foreground loop draws.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// SignalProbe is implemented by Video backends that can observe their own
// output, such as the host simulator.
type SignalProbe interface {
	SignalLocked() bool
}

// TimerChannel selects pulse timer compare channels.
type TimerChannel uint8

const (
	// ChannelSync is the sync pulse output. Its update event marks the line
	// boundary.
	ChannelSync TimerChannel = 1 << iota
	// ChannelData is the data trigger. It fires at the start of the visible
	// text area of each line.
	ChannelData
)

// PulseTimer generates the sync waveform. Writes to the compare and period
// registers are preloaded: they take effect at the start of the next period.
type PulseTimer interface {
	// SetCompare sets the sync pulse width in timer ticks.
	SetCompare(ticks uint32)
	// SetPeriod sets the line or half-line period in timer ticks.
	SetPeriod(ticks uint32)
	// SetTrigger sets the data trigger position within the period.
	SetTrigger(ticks uint32)
	EnableInterrupts(ch TimerChannel)
}

// StreamTransmitter shifts one row of pixels out, MSB first, and raises the
// transfer-complete event when the last bit has left.
type StreamTransmitter interface {
	Start(buf []byte)
	Stop()
	// WriteIdle parks the output at the given byte value after a transfer.
	WriteIdle(b byte)
}

// VideoHandlers are the interrupt entry points the firmware provides. Any of
// them may be nil.
type VideoHandlers struct {
	LineBoundary     func()
	DataTrigger      func()
	TransferComplete func()
}

// Video is the composite video output.
type Video interface {
	// Clocks returns the pulse timer counting rate and the transmitter bit
	// rate the timing must be derived from.
	Clocks() (timerHz, pixelHz uint32)
	Timer() PulseTimer
	Transmitter() StreamTransmitter
	// Attach installs interrupt handlers. It must be called before the timer
	// is started.
	Attach(h VideoHandlers)
}

// ButtonKind distinguishes short and long presses.
type ButtonKind uint8

const (
	ButtonClick ButtonKind = iota + 1
	ButtonHold
)

// ButtonEvent is a debounced button gesture, reported on release.
type ButtonEvent struct {
	Kind ButtonKind
}

// Buttons provides user button events (best-effort on each platform).
type Buttons interface {
	Events() <-chan ButtonEvent
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Video() Video
	Buttons() Buttons
}
