package video

import (
	"errors"
	"fmt"
	"time"
)

// PAL-derived line timing. All durations are in nanoseconds.
const (
	FieldRate      = 50  // fields per second
	LinesPerFrame  = 625 // interlaced frame; one field is half of it
	LinePeriodNs   = 1_000_000_000 / (LinesPerFrame * FieldRate / 2)
	HalfLineNs     = LinePeriodNs / 2
	HSyncNs        = 4700
	ShortSyncNs    = HSyncNs / 2
	LongSyncGapNs  = HSyncNs
	LongSyncNs     = HalfLineNs - LongSyncGapNs
	BackPorchNs    = 5700
	FrontPorchNs   = 1650
	TextOffsetNs   = 3400
	TextStartNs    = BackPorchNs + TextOffsetNs
	lineTimeBudget = LinePeriodNs - FrontPorchNs
)

// Line numbering within one field, counted in full scan lines from the end
// of the pre-equalising pulses.
const (
	FirstActiveLine = 6
	TextStartLine   = 49
	LastActiveLine  = 309

	NumBroadSync     = 5
	NumPreFrameSync  = 5
	NumPostFrameSync = 6
)

// ErrTiming reports an inconsistent timing configuration.
var ErrTiming = errors.New("video: invalid timing")

// Clocks describes the hardware clocks the timing is derived from.
type Clocks struct {
	// TimerHz is the pulse timer's counting frequency after prescaling.
	TimerHz uint32
	// PixelHz is the stream transmitter's bit rate (one bit per pixel).
	PixelHz uint32
}

// DefaultClocks matches a 56 MHz timer bus divided by 7 and a 28 MHz
// peripheral bus with the serial clock divided by 4.
var DefaultClocks = Clocks{
	TimerHz: 56_000_000 / 7,
	PixelHz: 28_000_000 / 4,
}

// Timing holds every timer value the engine programs, in timer ticks, plus
// the line layout for a given display height.
type Timing struct {
	Clocks Clocks

	Height        int
	BytesPerRow   int
	TextEndLine   int
	LinePeriod    uint32
	HalfLine      uint32
	HSync         uint32
	ShortSync     uint32
	LongSync      uint32
	TextStart     uint32
	TextWidthNs   uint32
	TransferTicks uint32
}

// NewTiming derives tick values for a display of width × height pixels.
func NewTiming(c Clocks, width, height int) Timing {
	bytesPerRow := (width + 7) / 8
	tm := Timing{
		Clocks:      c,
		Height:      height,
		BytesPerRow: bytesPerRow,
		TextEndLine: TextStartLine + height - 1,
	}
	if c.TimerHz == 0 || c.PixelHz == 0 {
		return tm
	}
	tm.LinePeriod = c.TimerHz / (LinesPerFrame * FieldRate / 2)
	tm.HalfLine = tm.LinePeriod / 2
	tm.HSync = c.Ticks(HSyncNs)
	tm.ShortSync = c.Ticks(ShortSyncNs)
	tm.LongSync = c.Ticks(LongSyncNs)
	tm.TextStart = c.Ticks(TextStartNs)
	tm.TextWidthNs = uint32((uint64(width)*1_000_000_000 + uint64(c.PixelHz)/2) / uint64(c.PixelHz))
	tm.TransferTicks = c.Ticks(uint64(bytesPerRow) * 8 * 1_000_000_000 / uint64(c.PixelHz))
	return tm
}

// TickNs returns the timer tick length in nanoseconds.
func (c Clocks) TickNs() uint64 {
	return 1_000_000_000 / uint64(c.TimerHz)
}

// Ticks converts nanoseconds to timer ticks, rounding to nearest.
func (c Clocks) Ticks(ns uint64) uint32 {
	tick := c.TickNs()
	return uint32((ns + tick/2) / tick)
}

// Duration converts timer ticks back to wall time.
func (c Clocks) Duration(ticks uint64) time.Duration {
	return time.Duration(ticks * 1_000_000_000 / uint64(c.TimerHz))
}

// FieldTicks returns the length of one field as generated by the engine.
func (tm Timing) FieldTicks() uint64 {
	halfLines := uint64(NumBroadSync + NumPreFrameSync + NumPostFrameSync)
	activeLines := uint64(LastActiveLine - FirstActiveLine + 1)
	return halfLines*uint64(tm.HalfLine) + activeLines*uint64(tm.LinePeriod)
}

// Validate checks that the tick values are consistent with each other and
// that the active text region is exactly Height lines long.
func (tm Timing) Validate() error {
	if tm.Clocks.TimerHz == 0 || tm.Clocks.PixelHz == 0 {
		return fmt.Errorf("%w: zero clock", ErrTiming)
	}
	if tm.Height <= 0 {
		return fmt.Errorf("%w: height %d", ErrTiming, tm.Height)
	}
	if got := tm.TextEndLine - TextStartLine + 1; got != tm.Height {
		return fmt.Errorf("%w: text region is %d lines, want %d", ErrTiming, got, tm.Height)
	}
	if tm.TextEndLine+1 >= LastActiveLine {
		return fmt.Errorf("%w: text end line %d leaves no blanking before line %d", ErrTiming, tm.TextEndLine, LastActiveLine)
	}
	if TextStartLine-1 <= FirstActiveLine {
		return fmt.Errorf("%w: text start line %d too early", ErrTiming, TextStartLine)
	}
	if !(tm.ShortSync < tm.HSync && tm.HSync < tm.LongSync && tm.LongSync < tm.HalfLine) {
		return fmt.Errorf("%w: pulse widths short=%d hsync=%d long=%d half=%d out of order",
			ErrTiming, tm.ShortSync, tm.HSync, tm.LongSync, tm.HalfLine)
	}
	if tm.TextStart <= tm.HSync {
		return fmt.Errorf("%w: data trigger at %d ticks inside sync pulse", ErrTiming, tm.TextStart)
	}
	budget := tm.Clocks.Ticks(lineTimeBudget)
	if end := tm.TextStart + tm.TransferTicks; end > budget {
		return fmt.Errorf("%w: line data ends at %d ticks, front porch starts at %d", ErrTiming, end, budget)
	}
	return nil
}

// VideoCounts returns how many fields elapse in d, rounded down. Animation
// code uses it to express speeds in wall time.
func VideoCounts(d time.Duration) uint32 {
	return uint32(d * FieldRate / time.Second)
}
