package video

import (
	"errors"
	"fmt"
	"sync/atomic"

	"palvideo/hal"
	"palvideo/internal/evq"
)

// Engine is the sync timing state machine. It is driven by two pulse timer
// interrupts: the line boundary (end of each sync pulse) and the data
// trigger (start of the visible area of each line).
//
// One field is 5 broad pulses, 5 equalising pulses, full lines 6..309 and
// 6 equalising pulses. Timer writes made from OnLineBoundary apply to the
// following period, so each transition programs the pulse shape of the next
// line, not the current one.
//
// The handlers never block, never allocate and run in bounded time.
type Engine struct {
	tm     Timing
	timer  hal.PulseTimer
	disp   *Dispatcher
	events *evq.Queue

	phase    SyncPhase
	pulses   int
	scanLine int

	fields   atomic.Uint32
	blanking atomic.Bool
	notify   atomic.Pointer[func(BlankingEvent)]
}

// NewEngine checks tm and returns an engine that drives timer and hands
// visible lines to disp. Call Start once the interrupt handlers are attached.
func NewEngine(tm Timing, timer hal.PulseTimer, disp *Dispatcher) (*Engine, error) {
	if err := tm.Validate(); err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, errors.New("video: nil pulse timer")
	}
	if disp == nil {
		return nil, errors.New("video: nil dispatcher")
	}
	if h := disp.fb.Height(); h != tm.Height {
		return nil, fmt.Errorf("%w: framebuffer has %d rows, timing has %d", ErrTiming, h, tm.Height)
	}
	if s := disp.fb.Stride(); s != tm.BytesPerRow {
		return nil, fmt.Errorf("%w: framebuffer rows are %d bytes, timing has %d", ErrTiming, s, tm.BytesPerRow)
	}
	return &Engine{tm: tm, timer: timer, disp: disp}, nil
}

// SetEvents routes field, blanking and overrun events into q. Pass nil to
// disable. Must be called before Start.
func (e *Engine) SetEvents(q *evq.Queue) {
	e.events = q
	e.disp.events = q
}

// Handlers returns the interrupt entry points for hal.Video.Attach.
func (e *Engine) Handlers() hal.VideoHandlers {
	return hal.VideoHandlers{
		LineBoundary:     e.OnLineBoundary,
		DataTrigger:      e.OnDataTrigger,
		TransferComplete: e.disp.OnTransferComplete,
	}
}

// Start programs the first broad pulse and enables both timer channels.
func (e *Engine) Start() {
	e.phase = FrameSync
	e.pulses = 0
	e.scanLine = 0
	e.timer.SetPeriod(e.tm.HalfLine)
	e.timer.SetCompare(e.tm.LongSync)
	e.timer.SetTrigger(e.tm.TextStart)
	e.timer.EnableInterrupts(hal.ChannelSync | hal.ChannelData)
}

// OnLineBoundary advances the state machine by one pulse.
func (e *Engine) OnLineBoundary() {
	switch e.phase {
	case FrameSync:
		e.pulses++
		if e.pulses >= NumBroadSync {
			e.timer.SetCompare(e.tm.ShortSync)
			e.phase = PreFrameShort
			e.pulses = 0
		}

	case PreFrameShort:
		e.pulses++
		if e.pulses >= NumPreFrameSync {
			e.timer.SetCompare(e.tm.HSync)
			e.timer.SetPeriod(e.tm.LinePeriod)
			e.phase = FrameActive
			e.scanLine = FirstActiveLine
			e.disp.reset()
		}

	case FrameActive:
		switch {
		case e.scanLine >= LastActiveLine:
			e.timer.SetCompare(e.tm.ShortSync)
			e.timer.SetPeriod(e.tm.HalfLine)
			e.pulses = 0
			e.phase = PostFrameShort
		case e.scanLine == TextStartLine-1:
			e.blanking.Store(false)
			e.raise(BlankEnd, evq.KindBlankEnd)
		case e.scanLine == e.tm.TextEndLine+1:
			e.blanking.Store(true)
			e.raise(BlankStart, evq.KindBlankStart)
		}
		e.scanLine++

	case PostFrameShort:
		e.pulses++
		if e.pulses >= NumPostFrameSync {
			e.timer.SetCompare(e.tm.LongSync)
			e.phase = FrameSync
			e.pulses = 0
			n := e.fields.Add(1)
			e.events.TryPush(evq.Event{Kind: evq.KindField, Value: n})
		}
	}
}

func (e *Engine) raise(ev BlankingEvent, k evq.Kind) {
	if fn := e.notify.Load(); fn != nil {
		(*fn)(ev)
	}
	e.events.TryPush(evq.Event{Kind: k, Value: e.fields.Load()})
}

// OnDataTrigger dispatches the next row while the scan is inside the text
// region. The line boundary handler has already counted this line.
func (e *Engine) OnDataTrigger() {
	if e.scanLine >= TextStartLine && e.scanLine <= e.tm.TextEndLine {
		e.disp.Dispatch()
	}
}

// SetBlankingCallback registers fn to be called from interrupt context at
// each blanking transition. Only one callback is held; the last registration
// wins. A nil fn removes the callback.
func (e *Engine) SetBlankingCallback(fn func(BlankingEvent)) {
	if fn == nil {
		e.notify.Store(nil)
		return
	}
	e.notify.Store(&fn)
}

// BlankingActive reports whether the scan is outside the text region. It
// starts false and first becomes true after the last row of the first field.
func (e *Engine) BlankingActive() bool { return e.blanking.Load() }

// Fields returns the number of completed fields.
func (e *Engine) Fields() uint32 { return e.fields.Load() }

// Phase returns the current state. Only meaningful from the interrupt
// context or when the timer is stopped.
func (e *Engine) Phase() SyncPhase { return e.phase }

// ScanLine returns the current line counter, with the same caveat as Phase.
func (e *Engine) ScanLine() int { return e.scanLine }

// Timing returns the timing the engine was built with.
func (e *Engine) Timing() Timing { return e.tm }
