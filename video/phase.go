package video

// SyncPhase is the position of the engine within a field.
type SyncPhase uint8

const (
	// FrameSync emits the broad (vertical sync) pulses.
	FrameSync SyncPhase = iota
	// PreFrameShort emits the equalising pulses before the active lines.
	PreFrameShort
	// FrameActive emits one horizontal sync per line.
	FrameActive
	// PostFrameShort emits the equalising pulses after the active lines.
	PostFrameShort
)

func (p SyncPhase) String() string {
	switch p {
	case FrameSync:
		return "frame-sync"
	case PreFrameShort:
		return "pre-frame-short"
	case FrameActive:
		return "frame-active"
	case PostFrameShort:
		return "post-frame-short"
	default:
		return "unknown"
	}
}

// BlankingEvent is passed to the blanking callback.
type BlankingEvent uint8

const (
	// BlankEnd is raised on the line before the first visible row.
	BlankEnd BlankingEvent = iota
	// BlankStart is raised on the line after the last visible row.
	BlankStart
)

func (e BlankingEvent) String() string {
	if e == BlankStart {
		return "blank-start"
	}
	return "blank-end"
}
