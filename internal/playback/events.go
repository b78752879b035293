package playback

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/queue"
)

// Event is a notification broadcast to every observer.
type Event interface{ isEvent() }

// BufferingEvent reports pipeline buffer fill transitions.
type BufferingEvent struct {
	IsBuffering bool          `json:"is_buffering"`
	Percent     int           `json:"percent"`
	Target      player.Status `json:"-"`
}

// StatusEvent reports a confirmed pipeline state change.
type StatusEvent struct {
	Status player.Status `json:"-"`
}

// PositionEvent carries the stream clock.
type PositionEvent struct {
	Clock time.Duration `json:"-"`
}

// DurationEvent carries the current source duration.
type DurationEvent struct {
	Clock time.Duration `json:"-"`
}

// CurrentTrackEvent reports the track now marked Playing.
type CurrentTrackEvent struct {
	Track queue.Track `json:"track"`
}

// TrackListEvent reports a queue replacement.
type TrackListEvent struct {
	Kind     queue.Kind    `json:"-"`
	EntityID string        `json:"entity_id"`
	Tracks   []queue.Track `json:"tracks"`
}

// AudioQualityEvent reports the format of the stream about to play.
type AudioQualityEvent struct {
	BitDepth     int     `json:"bit_depth"`
	SamplingRate float64 `json:"sampling_rate"`
}

// ErrorEvent reports a failure. The engine keeps running; observers decide
// what to do with it.
type ErrorEvent struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (BufferingEvent) isEvent()    {}
func (StatusEvent) isEvent()       {}
func (PositionEvent) isEvent()     {}
func (DurationEvent) isEvent()     {}
func (CurrentTrackEvent) isEvent() {}
func (TrackListEvent) isEvent()    {}
func (AudioQualityEvent) isEvent() {}
func (ErrorEvent) isEvent()        {}

// MarshalEvent encodes an event as a JSON object with a "type"
// discriminator for the websocket surface. Clocks go out in milliseconds.
func MarshalEvent(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case BufferingEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			BufferingEvent
			Target string `json:"target"`
		}{"buffering", e, statusLabel(e.Target)})
	case StatusEvent:
		return json.Marshal(struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		}{"status", statusLabel(e.Status)})
	case PositionEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			MS   int64  `json:"clock_ms"`
		}{"position", e.Clock.Milliseconds()})
	case DurationEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			MS   int64  `json:"clock_ms"`
		}{"duration", e.Clock.Milliseconds()})
	case CurrentTrackEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			CurrentTrackEvent
		}{"current_track", e})
	case TrackListEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			Kind string `json:"kind"`
			TrackListEvent
		}{"current_track_list", e.Kind.String(), e})
	case AudioQualityEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			AudioQualityEvent
		}{"audio_quality", e})
	case ErrorEvent:
		return json.Marshal(struct {
			Type string `json:"type"`
			ErrorEvent
		}{"error", e})
	default:
		return nil, fmt.Errorf("playback: unknown event %T", ev)
	}
}

func statusLabel(s player.Status) string {
	return strings.ToLower(s.String())
}
