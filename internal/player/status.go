package player

// Status mirrors the pipeline's state model.
type Status int

const (
	Null Status = iota
	Ready
	Paused
	Playing
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Null:
		return "Null"
	case Ready:
		return "Ready"
	case Paused:
		return "Paused"
	case Playing:
		return "Playing"
	default:
		return "Unknown"
	}
}

// SeekFlags selects how the pipeline resolves a seek target.
type SeekFlags int

const (
	// SeekFlushKeyUnit flushes and snaps to the nearest key unit. Fast,
	// used for user jumps.
	SeekFlushKeyUnit SeekFlags = iota
	// SeekFlushAccurate flushes and lands on the exact sample. Used when
	// restoring a saved session position.
	SeekFlushAccurate
)
