package player

import (
	"context"
	"time"
)

// Pipeline is the contract the playback engine drives. It hides the native
// media graph behind a small state machine: Null → Ready → Paused → Playing.
type Pipeline interface {
	// SetURI loads the source to play next. Safe to call from the
	// about-to-finish callback for a gapless transition.
	SetURI(uri string)

	// SetState drives the pipeline toward the target state and blocks
	// until the transition is confirmed, polling at 500 ms. The context
	// bounds the wait.
	SetState(ctx context.Context, target Status) error

	// State returns the most recently confirmed state.
	State() Status

	// Position returns the current stream clock, false if unavailable.
	Position() (time.Duration, bool)

	// Duration returns the current source duration, false if unavailable.
	Duration() (time.Duration, bool)

	// Seek moves the stream clock.
	Seek(pos time.Duration, flags SeekFlags) error

	// Messages returns the pipeline's asynchronous bus.
	Messages() <-chan Message

	// OnAboutToFinish registers the lead-out callback. It runs on the
	// pipeline's own thread and must only do a quick non-blocking send.
	OnAboutToFinish(fn func())

	// Close tears the pipeline down to Null and releases resources.
	Close() error
}
