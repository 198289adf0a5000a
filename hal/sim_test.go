//go:build !tinygo

package hal

import (
	"testing"
	"time"
)

func TestSimVideoRequiresStart(t *testing.T) {
	s := NewSimVideo(DefaultSimConfig, nil)
	if err := s.RunPeriod(); err == nil {
		t.Fatal("RunPeriod() before start: want error")
	}

	calls := 0
	if err := s.Advance(1000, func() error { calls++; return nil }); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if calls != 1 || s.Now() != 1000 {
		t.Fatalf("calls=%d now=%d, want 1 1000", calls, s.Now())
	}
}

func TestSimVideoPreloadedPeriod(t *testing.T) {
	s := NewSimVideo(DefaultSimConfig, nil)
	tm := s.Timer()
	tm.SetPeriod(256)
	tm.SetCompare(20)

	boundaries := 0
	s.Attach(VideoHandlers{
		LineBoundary: func() {
			boundaries++
			if boundaries == 1 {
				tm.SetPeriod(512)
			}
		},
	})
	tm.EnableInterrupts(ChannelSync)

	want := []uint64{256, 768, 1280}
	for i, w := range want {
		if err := s.RunPeriod(); err != nil {
			t.Fatalf("RunPeriod: %v", err)
		}
		if s.Now() != w {
			t.Fatalf("period %d: Now() = %d, want %d", i, s.Now(), w)
		}
	}
	if boundaries != 3 {
		t.Fatalf("boundaries = %d, want 3", boundaries)
	}
}

func TestSimVideoEventOrder(t *testing.T) {
	s := NewSimVideo(DefaultSimConfig, nil)
	tm := s.Timer()
	tx := s.Transmitter()
	tm.SetPeriod(512)
	tm.SetCompare(38)
	tm.SetTrigger(73)

	var order []string
	s.Attach(VideoHandlers{
		LineBoundary: func() { order = append(order, "line") },
		DataTrigger: func() {
			order = append(order, "data")
			tx.Start(make([]byte, 40))
		},
		TransferComplete: func() {
			order = append(order, "done")
			tx.Stop()
			tx.WriteIdle(0)
		},
	})
	tm.EnableInterrupts(ChannelSync | ChannelData)

	for i := 0; i < 2; i++ {
		if err := s.RunPeriod(); err != nil {
			t.Fatalf("RunPeriod: %v", err)
		}
	}
	want := []string{"line", "data", "done", "line", "data", "done"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if c, late := s.TransferStats(); c != 0 || late != 0 {
		t.Fatalf("TransferStats() = %d, %d, want 0, 0", c, late)
	}
}

func TestSimVideoLateTransfer(t *testing.T) {
	s := NewSimVideo(DefaultSimConfig, nil)
	tm := s.Timer()
	tx := s.Transmitter()
	tm.SetPeriod(256)
	tm.SetCompare(19)
	tm.SetTrigger(73)
	s.Attach(VideoHandlers{DataTrigger: func() { tx.Start(make([]byte, 40)) }})
	tm.EnableInterrupts(ChannelSync | ChannelData)

	if err := s.RunPeriod(); err != nil {
		t.Fatalf("RunPeriod: %v", err)
	}
	if _, late := s.TransferStats(); late != 1 {
		t.Fatalf("late = %d, want 1", late)
	}
}

// feedField sends one field of the given pulse plan to m.
func feedField(m *Monitor, broad, pre, lines, post int) {
	for i := 0; i < broad; i++ {
		m.Pulse(218, 256)
	}
	for i := 0; i < pre; i++ {
		m.Pulse(19, 256)
	}
	for i := 0; i < lines; i++ {
		m.Pulse(38, 512)
	}
	for i := 0; i < post; i++ {
		m.Pulse(19, 256)
	}
}

func TestMonitorLock(t *testing.T) {
	m := NewMonitor(8_000_000, 320, 240)
	for i := 0; i < 3; i++ {
		feedField(m, 5, 5, 304, 6)
	}
	// The next broad pulse closes the third field.
	m.Pulse(218, 256)

	st := m.Status()
	if !st.Locked {
		t.Fatalf("Status() = %+v, want locked", st)
	}
	if st.Fields != 3 {
		t.Fatalf("Fields = %d, want 3", st.Fields)
	}
	if st.FieldPeriod != 19968*time.Microsecond {
		t.Fatalf("FieldPeriod = %v, want 19.968ms", st.FieldPeriod)
	}
	if st.LinePeriod != 64*time.Microsecond {
		t.Fatalf("LinePeriod = %v, want 64µs", st.LinePeriod)
	}
	if st.HSyncWidth != 4750*time.Nanosecond {
		t.Fatalf("HSyncWidth = %v, want 4.75µs", st.HSyncWidth)
	}
	if st.BroadPulses != 5 || st.ShortPulses != 11 || st.Lines != 304 {
		t.Fatalf("pulses = %d/%d/%d, want 5/11/304", st.BroadPulses, st.ShortPulses, st.Lines)
	}
}

func TestMonitorNoLock(t *testing.T) {
	tests := []struct {
		name string
		feed func(m *Monitor)
	}{
		{"first field only", func(m *Monitor) {
			feedField(m, 5, 5, 304, 6)
		}},
		{"four broad pulses", func(m *Monitor) {
			feedField(m, 4, 5, 304, 6)
			feedField(m, 4, 5, 304, 6)
		}},
		{"field too long", func(m *Monitor) {
			feedField(m, 5, 5, 340, 6)
			feedField(m, 5, 5, 340, 6)
		}},
		{"unstable field", func(m *Monitor) {
			feedField(m, 5, 5, 304, 6)
			feedField(m, 5, 5, 303, 6)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(8_000_000, 320, 240)
			tt.feed(m)
			m.Pulse(218, 256)
			if st := m.Status(); st.Locked {
				t.Fatalf("Status() = %+v, want unlocked", st)
			}
		})
	}
}

func TestMonitorLatchesRows(t *testing.T) {
	m := NewMonitor(8_000_000, 16, 2)
	m.Pulse(218, 256)
	m.Row([]byte{0xAA, 0x55})
	m.Row([]byte{0x0F, 0xF0})
	m.Row([]byte{0xFF, 0xFF})

	got := m.Snapshot()
	want := []byte{0xAA, 0x55, 0x0F, 0xF0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot() = % x, want % x", got, want)
		}
	}
}

func TestNilMonitorIgnoresInput(t *testing.T) {
	var m *Monitor
	m.Pulse(38, 512)
	m.Row([]byte{1})
}
