package video

import (
	"fmt"
	"sync/atomic"

	"palvideo/gfx"
	"palvideo/hal"
	"palvideo/internal/evq"
)

// Dispatcher hands framebuffer rows to the stream transmitter, one per
// visible line, and parks the output after each transfer.
type Dispatcher struct {
	fb     *gfx.FrameBuffer
	tx     hal.StreamTransmitter
	events *evq.Queue

	line     int
	overruns atomic.Uint32
}

// NewDispatcher returns a dispatcher reading rows from fb.
func NewDispatcher(fb *gfx.FrameBuffer, tx hal.StreamTransmitter) *Dispatcher {
	return &Dispatcher{fb: fb, tx: tx}
}

func (d *Dispatcher) reset() { d.line = 0 }

// Dispatch starts the transfer of the next row and advances the row counter.
// A row index past the framebuffer is a broken timing invariant: it panics
// in checked builds and is dropped and counted otherwise.
func (d *Dispatcher) Dispatch() {
	row := d.line
	if row >= d.fb.Height() {
		if checked {
			panic(fmt.Sprintf("video: dispatch of row %d past %d-row framebuffer", row, d.fb.Height()))
		}
		d.overruns.Add(1)
		d.events.TryPush(evq.Event{Kind: evq.KindOverrun, Value: uint32(row)})
		return
	}
	d.tx.Start(d.fb.Row(row))
	d.line++
}

// OnTransferComplete stops the transmitter and writes one zero byte so the
// output idles at black.
func (d *Dispatcher) OnTransferComplete() {
	d.tx.Stop()
	d.tx.WriteIdle(0)
}

// DisplayLine returns the index of the next row to dispatch.
func (d *Dispatcher) DisplayLine() int { return d.line }

// Overruns returns how many out-of-range dispatches were dropped.
func (d *Dispatcher) Overruns() uint32 { return d.overruns.Load() }
