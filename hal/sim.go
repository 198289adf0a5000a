//go:build !baremetal

package hal

import "fmt"

// SimConfig sizes the simulated video hardware.
type SimConfig struct {
	TimerHz uint32
	PixelHz uint32
	Width   int
	Height  int
}

// DefaultSimConfig models an 8 MHz pulse timer and a 7 MHz serial pixel
// clock feeding a 320×240 receiver.
var DefaultSimConfig = SimConfig{
	TimerHz: 8_000_000,
	PixelHz: 7_000_000,
	Width:   320,
	Height:  240,
}

// SimVideo is a cycle-level model of the pulse timer and the stream
// transmitter. Each call to RunPeriod advances one timer period: preloaded
// period, compare and trigger values are latched, the sync pulse is fed to
// the monitor, and the interrupt handlers are called in the order their
// events occur within the period.
//
// Handlers run synchronously on the caller's goroutine, so a foreground hook
// called between periods sees the same interleaving as a single core.
type SimVideo struct {
	cfg SimConfig
	mon *Monitor
	h   VideoHandlers

	timer simTimer
	tx    simTx

	now     uint64
	periods uint64
}

// NewSimVideo returns a simulator feeding mon. mon may be nil.
func NewSimVideo(cfg SimConfig, mon *Monitor) *SimVideo {
	s := &SimVideo{cfg: cfg, mon: mon}
	s.timer.sim = s
	s.tx.sim = s
	return s
}

func (s *SimVideo) Clocks() (timerHz, pixelHz uint32) { return s.cfg.TimerHz, s.cfg.PixelHz }
func (s *SimVideo) Timer() PulseTimer                 { return &s.timer }
func (s *SimVideo) Transmitter() StreamTransmitter    { return &s.tx }
func (s *SimVideo) Attach(h VideoHandlers)            { s.h = h }

// Monitor returns the attached receiver.
func (s *SimVideo) Monitor() *Monitor { return s.mon }

// SignalLocked reports whether the attached monitor has locked on.
func (s *SimVideo) SignalLocked() bool {
	return s.mon != nil && s.mon.Status().Locked
}

// Now returns the simulated time in timer ticks.
func (s *SimVideo) Now() uint64 { return s.now }

// Periods returns the number of timer periods run so far.
func (s *SimVideo) Periods() uint64 { return s.periods }

// Running reports whether any timer interrupt has been enabled.
func (s *SimVideo) Running() bool { return s.timer.enabled != 0 }

// RunPeriod simulates one timer period. It returns an error if the timer has
// not been started or is programmed with a zero period.
func (s *SimVideo) RunPeriod() error {
	t := &s.timer
	if t.enabled == 0 {
		return fmt.Errorf("sim: timer not started")
	}
	t.latch()
	if t.period == 0 {
		return fmt.Errorf("sim: zero timer period")
	}
	s.mon.Pulse(t.compare, t.period)

	if t.trigger < t.compare {
		s.fire(t.trigger, ChannelData)
		s.fire(t.compare, ChannelSync)
	} else {
		s.fire(t.compare, ChannelSync)
		s.fire(t.trigger, ChannelData)
	}
	if s.tx.busy {
		if s.tx.doneAt > t.period {
			s.tx.late++
		}
		s.complete()
	}

	s.now += uint64(t.period)
	s.periods++
	return nil
}

// Advance runs periods until at least ticks of simulated time have elapsed,
// calling fg after every period. fg may be nil. If the timer is not running
// the time passes without events and fg is called once.
func (s *SimVideo) Advance(ticks uint64, fg func() error) error {
	target := s.now + ticks
	if !s.Running() {
		s.now = target
		if fg != nil {
			return fg()
		}
		return nil
	}
	for s.now < target {
		if err := s.RunPeriod(); err != nil {
			return err
		}
		if fg != nil {
			if err := fg(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SimVideo) fire(at uint32, ch TimerChannel) {
	if s.tx.busy && s.tx.doneAt <= at {
		s.complete()
	}
	if s.timer.enabled&ch == 0 {
		return
	}
	s.tx.at = at
	switch ch {
	case ChannelSync:
		if s.h.LineBoundary != nil {
			s.h.LineBoundary()
		}
	case ChannelData:
		if s.h.DataTrigger != nil {
			s.h.DataTrigger()
		}
	}
}

func (s *SimVideo) complete() {
	if s.h.TransferComplete != nil {
		s.h.TransferComplete()
	}
	s.tx.busy = false
}

// TransferStats reports transmitter anomalies: transfers started while one
// was in flight, and transfers that ran past the end of their line.
func (s *SimVideo) TransferStats() (collisions, late uint64) {
	return s.tx.collisions, s.tx.late
}

// IdleByte returns the last value written with WriteIdle.
func (s *SimVideo) IdleByte() byte { return s.tx.idle }

type simTimer struct {
	sim *SimVideo

	compare, period, trigger uint32
	nextCompare, nextPeriod  uint32
	nextTrigger              uint32
	enabled                  TimerChannel
}

func (t *simTimer) SetCompare(ticks uint32) { t.nextCompare = ticks }
func (t *simTimer) SetPeriod(ticks uint32)  { t.nextPeriod = ticks }
func (t *simTimer) SetTrigger(ticks uint32) { t.nextTrigger = ticks }

func (t *simTimer) EnableInterrupts(ch TimerChannel) { t.enabled |= ch }

func (t *simTimer) latch() {
	t.compare = t.nextCompare
	t.period = t.nextPeriod
	t.trigger = t.nextTrigger
}

type simTx struct {
	sim *SimVideo

	busy   bool
	at     uint32
	doneAt uint32
	idle   byte

	collisions uint64
	late       uint64
}

func (x *simTx) Start(buf []byte) {
	if x.busy {
		x.collisions++
	}
	s := x.sim
	bits := uint64(len(buf)) * 8
	x.doneAt = x.at + uint32((bits*uint64(s.cfg.TimerHz)+uint64(s.cfg.PixelHz)-1)/uint64(s.cfg.PixelHz))
	x.busy = true
	s.mon.Row(buf)
}

func (x *simTx) Stop() { x.busy = false }

func (x *simTx) WriteIdle(b byte) { x.idle = b }
