package hal

// lineSequencer runs the interrupt side of a video output whose timer only
// interrupts at the end of each period. The wrap runs the line boundary and
// then arms a one-shot timer for the data trigger, so no handler waits for
// the trigger position. If the position has already passed, the trigger
// runs at once.
type lineSequencer struct {
	h       VideoHandlers
	trigger uint32
	arm     func(at uint32) bool
}

func (s *lineSequencer) wrap() {
	if s.h.LineBoundary != nil {
		s.h.LineBoundary()
	}
	if s.arm == nil || !s.arm(s.trigger) {
		s.dataTrigger()
	}
}

func (s *lineSequencer) dataTrigger() {
	if s.h.DataTrigger != nil {
		s.h.DataTrigger()
	}
}

func (s *lineSequencer) transferDone() {
	if s.h.TransferComplete != nil {
		s.h.TransferComplete()
	}
}
