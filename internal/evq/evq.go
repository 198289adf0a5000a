// Package evq is a fixed-size event ring for handing events from interrupt
// handlers to the foreground loop.
package evq

import "sync/atomic"

// Kind identifies an event.
type Kind uint8

const (
	// KindField marks a completed field. Value is the field number.
	KindField Kind = iota + 1
	// KindOverrun marks a dispatch that would have read past the last row.
	// Value is the rejected row index.
	KindOverrun
	// KindBlankStart and KindBlankEnd mirror the blanking notifications.
	// Value is the field number.
	KindBlankStart
	KindBlankEnd
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindOverrun:
		return "overrun"
	case KindBlankStart:
		return "blank-start"
	case KindBlankEnd:
		return "blank-end"
	default:
		return "unknown"
	}
}

// Event is a fixed-size event record.
type Event struct {
	Kind  Kind
	Value uint32
}

// Slots is the ring capacity.
const Slots = 64

// Queue is a single-producer, single-consumer ring. The producer side never
// blocks and never allocates, so it is safe to call from interrupt handlers.
type Queue struct {
	_       [0]func() // not comparable
	head    atomic.Uint32
	tail    atomic.Uint32
	dropped atomic.Uint32
	slots   [Slots]Event
}

// TryPush enqueues ev, returning false (and counting a drop) if the ring is full.
func (q *Queue) TryPush(ev Event) bool {
	if q == nil {
		return false
	}
	head := q.head.Load()
	tail := q.tail.Load()
	if head-tail >= Slots {
		q.dropped.Add(1)
		return false
	}
	q.slots[head%Slots] = ev
	q.head.Store(head + 1)
	return true
}

// TryPop dequeues one event, returning false if the ring is empty.
func (q *Queue) TryPop() (Event, bool) {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail == head {
		return Event{}, false
	}
	ev := q.slots[tail%Slots]
	q.tail.Store(tail + 1)
	return ev, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return int(q.head.Load() - q.tail.Load())
}

// Dropped returns how many events were discarded because the ring was full.
func (q *Queue) Dropped() uint32 {
	return q.dropped.Load()
}
