package app

import (
	"errors"
	"fmt"
	"runtime"

	"palvideo/demo"
	"palvideo/gfx"
	"palvideo/hal"
	"palvideo/internal/buildinfo"
	"palvideo/internal/evq"
	"palvideo/video"
)

// Config selects what the firmware shows at start-up.
type Config struct {
	// Demo is the name of the first program. Empty starts with the first.
	Demo string
	// ReportEvery is the number of fields between status log lines.
	// Zero means once per second.
	ReportEvery uint32
}

// System owns the framebuffer, the video engine and the foreground loop
// state. Only the step function returned by New touches it after start-up.
type System struct {
	h      hal.HAL
	log    hal.Logger
	led    hal.LED
	probe  hal.SignalProbe
	fb     *gfx.FrameBuffer
	engine *video.Engine
	disp   *video.Dispatcher
	events *evq.Queue
	screen *demo.Screen

	programs []demo.Program
	cur      int
	cfg      Config

	blanking bool
	click    bool
	frozen   bool

	fields     uint32
	reportedAt uint32
	halted     error
}

// New initializes the video chain with the default config and returns the
// foreground step.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// NewWithConfig is New with an explicit config. Start-up errors are logged
// and returned from every call of the step.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	s, err := NewSystem(h, cfg)
	if err != nil {
		if h != nil && h.Logger() != nil {
			h.Logger().WriteLineString(err.Error())
		}
		return func() error { return err }
	}
	return s.Step
}

// Run starts the firmware and runs the foreground loop forever (TinyGo
// entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, Config{})
}

func RunWithConfig(h hal.HAL, cfg Config) {
	step := NewWithConfig(h, cfg)
	for {
		if err := step(); err != nil {
			select {}
		}
		runtime.Gosched()
	}
}

// NewSystem wires the framebuffer to the video hardware and starts the sync
// generator.
func NewSystem(h hal.HAL, cfg Config) (*System, error) {
	if h == nil {
		return nil, errors.New("app: nil hal")
	}
	v := h.Video()
	if v == nil {
		return nil, fmt.Errorf("app: video: %w", hal.ErrNotImplemented)
	}
	if cfg.ReportEvery == 0 {
		cfg.ReportEvery = video.FieldRate
	}

	programs := demo.All()
	cur := 0
	if cfg.Demo != "" {
		i, err := demo.Index(cfg.Demo)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		cur = i
	}

	timerHz, pixelHz := v.Clocks()
	tm := video.NewTiming(video.Clocks{TimerHz: timerHz, PixelHz: pixelHz}, gfx.DisplayWidth, gfx.DisplayHeight)
	fb := gfx.NewFrameBuffer(gfx.DisplayWidth, gfx.DisplayHeight)
	disp := video.NewDispatcher(fb, v.Transmitter())
	engine, err := video.NewEngine(tm, v.Timer(), disp)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	events := &evq.Queue{}
	engine.SetEvents(events)

	s := &System{
		h:        h,
		log:      h.Logger(),
		led:      h.LED(),
		fb:       fb,
		engine:   engine,
		disp:     disp,
		events:   events,
		screen:   demo.NewScreen(fb),
		programs: programs,
		cur:      cur,
		cfg:      cfg,
	}
	s.probe, _ = v.(hal.SignalProbe)

	s.logf("palvideo %s: %dx%d, line %d ticks, field %d ticks", buildinfo.Short(),
		gfx.DisplayWidth, gfx.DisplayHeight, tm.LinePeriod, tm.FieldTicks())
	s.programs[s.cur].Start(s.screen)
	s.logf("demo: %s", s.programs[s.cur].Name())

	v.Attach(engine.Handlers())
	engine.Start()
	return s, nil
}

// FrameBuffer returns the displayed framebuffer.
func (s *System) FrameBuffer() *gfx.FrameBuffer { return s.fb }

// Engine returns the sync generator.
func (s *System) Engine() *video.Engine { return s.engine }

// IsBlankingActive reports whether the raster is in vertical blanking, which
// is when the foreground may draw without tearing.
func (s *System) IsBlankingActive() bool { return s.engine.BlankingActive() }

// Program returns the running demo.
func (s *System) Program() demo.Program { return s.programs[s.cur] }

// Frozen reports whether a held button has paused the demo.
func (s *System) Frozen() bool { return s.frozen }

// Step is one pass of the foreground loop. Demo drawing happens on the
// first pass after blanking starts.
func (s *System) Step() (err error) {
	if s.halted != nil {
		return s.halted
	}
	defer func() {
		if r := recover(); r != nil {
			showPanic(s.log, s.fb, r)
			s.halted = fmt.Errorf("app: panic: %v", r)
			err = s.halted
		}
	}()

	s.pollButtons()
	s.drainEvents()

	blanking := s.engine.BlankingActive()
	edge := blanking && !s.blanking
	s.blanking = blanking

	p := s.programs[s.cur]
	if edge {
		s.ledHigh()
		if s.click {
			s.click = false
			s.next()
		} else if !s.frozen {
			s.screen.Stats = s.stats()
			p.Frame(s.screen)
		}
		s.ledLow()
	}
	if pp, ok := s.programs[s.cur].(demo.Passer); ok && !s.frozen {
		pp.Pass(s.screen, blanking)
	}
	return nil
}

// next clears the screen and starts the following demo.
func (s *System) next() {
	s.fb.ClearScreen()
	s.cur = (s.cur + 1) % len(s.programs)
	s.frozen = false
	s.programs[s.cur].Start(s.screen)
	s.logf("demo: %s", s.programs[s.cur].Name())
}

func (s *System) pollButtons() {
	b := s.h.Buttons()
	if b == nil {
		return
	}
	ch := b.Events()
	for {
		select {
		case ev := <-ch:
			switch ev.Kind {
			case hal.ButtonClick:
				s.click = true
			case hal.ButtonHold:
				s.frozen = !s.frozen
			}
		default:
			return
		}
	}
}

func (s *System) drainEvents() {
	for {
		ev, ok := s.events.TryPop()
		if !ok {
			break
		}
		if ev.Kind == evq.KindField {
			s.fields = ev.Value
		}
	}
	if s.fields-s.reportedAt >= s.cfg.ReportEvery {
		s.reportedAt = s.fields
		st := s.stats()
		lock := "n/a"
		if s.probe != nil {
			lock = fmt.Sprint(st.Locked)
		}
		s.logf("fields=%d overruns=%d dropped=%d lock=%s demo=%s",
			st.Fields, st.Overruns, st.Dropped, lock, s.programs[s.cur].Name())
	}
}

func (s *System) stats() demo.Stats {
	st := demo.Stats{
		Fields:   s.fields,
		Overruns: s.disp.Overruns(),
		Dropped:  s.events.Dropped(),
	}
	if s.probe != nil {
		st.Locked = s.probe.SignalLocked()
	}
	return st
}

func (s *System) logf(format string, args ...any) {
	if s.log != nil {
		s.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}

// The LED goes high while a demo draws, so a scope on the LED pin shows how
// much of the blanking interval the drawing uses.
func (s *System) ledHigh() {
	if s.led != nil {
		s.led.High()
	}
}

func (s *System) ledLow() {
	if s.led != nil {
		s.led.Low()
	}
}
