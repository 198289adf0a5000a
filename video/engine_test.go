package video

import (
	"errors"
	"testing"

	"palvideo/gfx"
	"palvideo/hal"
	"palvideo/internal/evq"
)

type fakeTimer struct {
	compare, period, trigger uint32
	nextCompare, nextPeriod  uint32
	enabled                  hal.TimerChannel
}

func (t *fakeTimer) SetCompare(ticks uint32)              { t.nextCompare = ticks }
func (t *fakeTimer) SetPeriod(ticks uint32)               { t.nextPeriod = ticks }
func (t *fakeTimer) SetTrigger(ticks uint32)              { t.trigger = ticks }
func (t *fakeTimer) EnableInterrupts(ch hal.TimerChannel) { t.enabled |= ch }

// latch applies preloaded values, as the hardware does at each update event.
func (t *fakeTimer) latch() {
	t.compare = t.nextCompare
	t.period = t.nextPeriod
}

type fakeTx struct {
	rows   [][]byte
	active bool
	stops  int
	idle   []byte
}

func (x *fakeTx) Start(buf []byte) {
	x.rows = append(x.rows, buf)
	x.active = true
}
func (x *fakeTx) Stop()            { x.active = false; x.stops++ }
func (x *fakeTx) WriteIdle(b byte) { x.idle = append(x.idle, b) }

type period struct {
	phase   SyncPhase
	compare uint32
	length  uint32
}

type rig struct {
	fb    *gfx.FrameBuffer
	timer *fakeTimer
	tx    *fakeTx
	e     *Engine
}

func newRig(t *testing.T) *rig {
	t.Helper()
	fb := gfx.NewFrameBuffer(gfx.DisplayWidth, gfx.DisplayHeight)
	for y := 0; y < fb.Height(); y++ {
		row := fb.Row(y)
		row[0] = byte(y)
		row[1] = byte(y >> 8)
	}
	r := &rig{fb: fb, timer: &fakeTimer{}, tx: &fakeTx{}}
	tm := NewTiming(DefaultClocks, fb.Width(), fb.Height())
	e, err := NewEngine(tm, r.timer, NewDispatcher(fb, r.tx))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	r.e = e
	e.Start()
	return r
}

// step runs n timer periods and returns what was emitted in each.
func (r *rig) step(n int) []period {
	out := make([]period, 0, n)
	for i := 0; i < n; i++ {
		r.timer.latch()
		out = append(out, period{phase: r.e.Phase(), compare: r.timer.compare, length: r.timer.period})
		r.e.OnLineBoundary()
		r.e.OnDataTrigger()
		if r.tx.active {
			r.e.disp.OnTransferComplete()
		}
	}
	return out
}

const periodsPerField = NumBroadSync + NumPreFrameSync + (LastActiveLine - FirstActiveLine + 1) + NumPostFrameSync

func TestEngineStartProgramsBroadPulse(t *testing.T) {
	r := newRig(t)
	tm := r.e.Timing()
	if r.timer.nextPeriod != tm.HalfLine || r.timer.nextCompare != tm.LongSync {
		t.Fatalf("Start() period=%d compare=%d, want %d %d", r.timer.nextPeriod, r.timer.nextCompare, tm.HalfLine, tm.LongSync)
	}
	if r.timer.trigger != tm.TextStart {
		t.Fatalf("trigger = %d, want %d", r.timer.trigger, tm.TextStart)
	}
	if r.timer.enabled != hal.ChannelSync|hal.ChannelData {
		t.Fatalf("enabled = %b, want both channels", r.timer.enabled)
	}
	if r.e.Phase() != FrameSync {
		t.Fatalf("Phase() = %v, want %v", r.e.Phase(), FrameSync)
	}
}

func TestEngineFieldWaveform(t *testing.T) {
	r := newRig(t)
	tm := r.e.Timing()

	for field := 0; field < 3; field++ {
		got := r.step(periodsPerField)

		type seg struct {
			n       int
			compare uint32
			length  uint32
		}
		want := []seg{
			{NumBroadSync, tm.LongSync, tm.HalfLine},
			{NumPreFrameSync, tm.ShortSync, tm.HalfLine},
			{LastActiveLine - FirstActiveLine + 1, tm.HSync, tm.LinePeriod},
			{NumPostFrameSync, tm.ShortSync, tm.HalfLine},
		}
		i := 0
		var total uint64
		for _, s := range want {
			for k := 0; k < s.n; k++ {
				p := got[i]
				if p.compare != s.compare || p.length != s.length {
					t.Fatalf("field %d period %d: compare=%d length=%d, want %d %d", field, i, p.compare, p.length, s.compare, s.length)
				}
				total += uint64(p.length)
				i++
			}
		}
		if total != tm.FieldTicks() {
			t.Fatalf("field ticks = %d, want %d", total, tm.FieldTicks())
		}
		if got := r.e.Fields(); got != uint32(field+1) {
			t.Fatalf("Fields() = %d, want %d", got, field+1)
		}
		if r.e.Phase() != FrameSync {
			t.Fatalf("Phase() after field = %v, want %v", r.e.Phase(), FrameSync)
		}
	}
}

func TestEnginePhaseCycle(t *testing.T) {
	r := newRig(t)
	periods := r.step(3 * periodsPerField)

	counts := map[SyncPhase]int{}
	var order []SyncPhase
	for _, p := range periods {
		counts[p.phase]++
		if len(order) == 0 || order[len(order)-1] != p.phase {
			order = append(order, p.phase)
		}
	}
	want := map[SyncPhase]int{
		FrameSync:      3 * NumBroadSync,
		PreFrameShort:  3 * NumPreFrameSync,
		FrameActive:    3 * (LastActiveLine - FirstActiveLine + 1),
		PostFrameShort: 3 * NumPostFrameSync,
	}
	for ph, n := range want {
		if counts[ph] != n {
			t.Fatalf("%v periods = %d, want %d", ph, counts[ph], n)
		}
	}
	for i, ph := range order {
		if ph != SyncPhase(i%4) {
			t.Fatalf("phase order %v, want cyclic from frame-sync", order)
		}
	}
}

func TestEngineBlankingNotifications(t *testing.T) {
	r := newRig(t)

	var got []BlankingEvent
	var lines []int
	r.e.SetBlankingCallback(func(ev BlankingEvent) {
		got = append(got, ev)
		lines = append(lines, r.e.ScanLine())
	})

	if r.e.BlankingActive() {
		t.Fatal("BlankingActive() = true before the first field")
	}
	r.step(3 * periodsPerField)

	if len(got) != 6 {
		t.Fatalf("notifications = %v, want 6", got)
	}
	for i, ev := range got {
		want := BlankEnd
		wantLine := TextStartLine - 1
		if i%2 == 1 {
			want = BlankStart
			wantLine = r.e.Timing().TextEndLine + 1
		}
		if ev != want || lines[i] != wantLine {
			t.Fatalf("notification %d = %v at line %d, want %v at line %d", i, ev, lines[i], want, wantLine)
		}
	}
	if !r.e.BlankingActive() {
		t.Fatal("BlankingActive() = false after a field")
	}
}

func TestEngineBlankingCallbackLastWins(t *testing.T) {
	r := newRig(t)

	var first, second int
	r.e.SetBlankingCallback(func(BlankingEvent) { first++ })
	r.e.SetBlankingCallback(func(BlankingEvent) { second++ })
	r.step(periodsPerField)
	if first != 0 || second != 2 {
		t.Fatalf("first=%d second=%d, want 0 2", first, second)
	}

	r.e.SetBlankingCallback(nil)
	r.step(periodsPerField)
	if second != 2 {
		t.Fatalf("callback ran after removal: %d", second)
	}
	if !r.e.BlankingActive() {
		t.Fatal("blanking state not tracked without a callback")
	}
}

func TestEngineBlankingTracksScan(t *testing.T) {
	r := newRig(t)
	r.step(periodsPerField)

	for i := 0; i < periodsPerField; i++ {
		r.step(1)
		inText := r.e.Phase() == FrameActive &&
			r.e.ScanLine() >= TextStartLine && r.e.ScanLine() <= r.e.Timing().TextEndLine+1
		if r.e.BlankingActive() == inText {
			t.Fatalf("period %d line %d: BlankingActive() = %v", i, r.e.ScanLine(), r.e.BlankingActive())
		}
	}
}

func TestEngineDispatchesEveryRowOnce(t *testing.T) {
	r := newRig(t)

	for field := 0; field < 2; field++ {
		r.tx.rows = nil
		r.step(periodsPerField)

		if len(r.tx.rows) != r.fb.Height() {
			t.Fatalf("field %d: dispatched %d rows, want %d", field, len(r.tx.rows), r.fb.Height())
		}
		for y, row := range r.tx.rows {
			if len(row) != r.fb.Stride() {
				t.Fatalf("row %d length = %d, want %d", y, len(row), r.fb.Stride())
			}
			if got := int(row[0]) | int(row[1])<<8; got != y {
				t.Fatalf("dispatch %d sent row %d", y, got)
			}
		}
		if r.tx.stops != len(r.tx.idle) {
			t.Fatalf("stops=%d idle writes=%d", r.tx.stops, len(r.tx.idle))
		}
		for _, b := range r.tx.idle {
			if b != 0 {
				t.Fatalf("WriteIdle(%#x), want 0", b)
			}
		}
	}
}

func TestEngineNoDispatchOutsideText(t *testing.T) {
	r := newRig(t)
	for i := 0; i < periodsPerField; i++ {
		before := len(r.tx.rows)
		r.step(1)
		sent := len(r.tx.rows) - before
		line := r.e.ScanLine()
		inText := r.e.Phase() == FrameActive && line >= TextStartLine && line <= r.e.Timing().TextEndLine
		if inText != (sent == 1) {
			t.Fatalf("period %d line %d phase %v: sent %d rows", i, line, r.e.Phase(), sent)
		}
	}
}

func TestEngineEvents(t *testing.T) {
	r := newRig(t)
	var q evq.Queue
	r.e.SetEvents(&q)
	r.step(2 * periodsPerField)

	var kinds []evq.Kind
	for {
		ev, ok := q.TryPop()
		if !ok {
			break
		}
		kinds = append(kinds, ev.Kind)
	}
	want := []evq.Kind{
		evq.KindBlankEnd, evq.KindBlankStart, evq.KindField,
		evq.KindBlankEnd, evq.KindBlankStart, evq.KindField,
	}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
}

func TestNewEngineRejectsMismatchedFramebuffer(t *testing.T) {
	fb := gfx.NewFrameBuffer(gfx.DisplayWidth, 200)
	tm := NewTiming(DefaultClocks, gfx.DisplayWidth, gfx.DisplayHeight)
	_, err := NewEngine(tm, &fakeTimer{}, NewDispatcher(fb, &fakeTx{}))
	if !errors.Is(err, ErrTiming) {
		t.Fatalf("NewEngine() err = %v, want ErrTiming", err)
	}
}

func TestDispatcherRowBound(t *testing.T) {
	fb := gfx.NewFrameBuffer(16, 4)
	tx := &fakeTx{}
	d := NewDispatcher(fb, tx)
	for i := 0; i < 4; i++ {
		d.Dispatch()
	}
	if d.DisplayLine() != 4 {
		t.Fatalf("DisplayLine() = %d, want 4", d.DisplayLine())
	}

	if checked {
		defer func() {
			if recover() == nil {
				t.Fatal("dispatch past the last row did not panic")
			}
		}()
		d.Dispatch()
		return
	}

	d.Dispatch()
	if len(tx.rows) != 4 || d.Overruns() != 1 {
		t.Fatalf("rows=%d overruns=%d, want 4 1", len(tx.rows), d.Overruns())
	}
}

func TestSyncPhaseString(t *testing.T) {
	tests := []struct {
		p    SyncPhase
		want string
	}{
		{FrameSync, "frame-sync"},
		{PreFrameShort, "pre-frame-short"},
		{FrameActive, "frame-active"},
		{PostFrameShort, "post-frame-short"},
		{SyncPhase(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}
