//go:build !baremetal

package hal

import (
	"sync"
	"time"
)

// Pulse width classes, in nanoseconds.
const (
	monBroadMinNs = 15_000
	monHSyncMinNs = 3_500
	monHSyncMaxNs = 6_000
	monShortMinNs = 1_500

	monFieldNs = 20_000_000
	monLineNs  = 64_000
)

// MonitorStatus is the receiver's view of the last complete field.
type MonitorStatus struct {
	Locked      bool
	Fields      uint64
	FieldPeriod time.Duration
	LinePeriod  time.Duration
	HSyncWidth  time.Duration
	BroadPulses int
	ShortPulses int
	Lines       int
	Rows        int
	BadPulses   int
}

// Monitor is a simulated composite receiver. It measures the sync pulses it
// is fed, finds field starts at the first broad pulse, decides whether it
// would hold lock, and latches each received row of pixels into a 1-bpp
// raster in arrival order.
type Monitor struct {
	mu sync.Mutex

	timerHz uint32
	width   int
	height  int
	stride  int
	raster  []byte

	started   bool
	inBroad   bool
	ticks     uint64
	lineTicks uint32
	hsync     uint32
	broad     int
	short     int
	lines     int
	rows      int
	bad       int
	prevTicks uint64

	st MonitorStatus
}

// NewMonitor returns a receiver for a width×height raster driven by a timer
// counting at timerHz.
func NewMonitor(timerHz uint32, width, height int) *Monitor {
	stride := (width + 7) / 8
	return &Monitor{
		timerHz: timerHz,
		width:   width,
		height:  height,
		stride:  stride,
		raster:  make([]byte, stride*height),
	}
}

func (m *Monitor) Width() int  { return m.width }
func (m *Monitor) Height() int { return m.height }
func (m *Monitor) Stride() int { return m.stride }

func (m *Monitor) ns(ticks uint64) uint64 {
	return ticks * 1_000_000_000 / uint64(m.timerHz)
}

// Pulse records one timer period that began with a sync pulse of width ticks.
func (m *Monitor) Pulse(width, period uint32) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.ns(uint64(width))
	broad := w >= monBroadMinNs
	if broad && !m.inBroad {
		if m.started {
			m.finishField()
		}
		m.started = true
		m.ticks, m.broad, m.short, m.lines, m.rows, m.bad = 0, 0, 0, 0, 0, 0
	}
	m.inBroad = broad
	m.ticks += uint64(period)

	switch {
	case broad:
		m.broad++
	case w >= monHSyncMinNs && w <= monHSyncMaxNs:
		m.lines++
		m.lineTicks = period
		m.hsync = width
	case w >= monShortMinNs && w < monHSyncMinNs:
		m.short++
	default:
		m.bad++
	}
}

// Row latches one transmitted row. Rows beyond the raster height are ignored.
func (m *Monitor) Row(buf []byte) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rows < m.height {
		copy(m.raster[m.rows*m.stride:(m.rows+1)*m.stride], buf)
	}
	m.rows++
}

func (m *Monitor) finishField() {
	field := m.ns(m.ticks)
	line := m.ns(uint64(m.lineTicks))

	locked := m.bad == 0 &&
		m.broad == 5 &&
		m.ticks == m.prevTicks &&
		within(field, monFieldNs, 100) &&
		within(line, monLineNs, 100)

	m.prevTicks = m.ticks
	m.st = MonitorStatus{
		Locked:      locked,
		Fields:      m.st.Fields + 1,
		FieldPeriod: time.Duration(field),
		LinePeriod:  time.Duration(line),
		HSyncWidth:  time.Duration(m.ns(uint64(m.hsync))),
		BroadPulses: m.broad,
		ShortPulses: m.short,
		Lines:       m.lines,
		Rows:        m.rows,
		BadPulses:   m.bad,
	}
}

// within reports whether got is within want/div of want.
func within(got, want, div uint64) bool {
	tol := want / div
	return got+tol >= want && got <= want+tol
}

// Status returns the measurements of the last complete field.
func (m *Monitor) Status() MonitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

// Snapshot returns a copy of the latched raster, rows packed MSB-first.
func (m *Monitor) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.raster))
	copy(out, m.raster)
	return out
}

// SnapshotInto copies the raster into dst, which must be Stride()*Height()
// bytes long.
func (m *Monitor) SnapshotInto(dst []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy(dst, m.raster)
}
