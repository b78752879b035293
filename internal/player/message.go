package player

import "time"

// MessageKind discriminates pipeline bus messages.
type MessageKind int

const (
	MsgStateChanged MessageKind = iota
	MsgStreamStart
	MsgAsyncDone
	MsgBuffering
	MsgEOS
	MsgError
)

// String returns the message kind name.
func (k MessageKind) String() string {
	switch k {
	case MsgStateChanged:
		return "StateChanged"
	case MsgStreamStart:
		return "StreamStart"
	case MsgAsyncDone:
		return "AsyncDone"
	case MsgBuffering:
		return "Buffering"
	case MsgEOS:
		return "Eos"
	case MsgError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Message is one event from the pipeline's asynchronous bus.
type Message struct {
	Kind MessageKind

	// State carries the new state for MsgStateChanged.
	State Status
	// Percent carries the fill level for MsgBuffering.
	Percent int
	// RunningTime carries the stream clock for MsgAsyncDone, -1 when the
	// pipeline could not provide one.
	RunningTime time.Duration
	// Err carries the native error for MsgError.
	Err error
}
