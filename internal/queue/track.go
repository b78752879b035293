package queue

import (
	"strings"
	"time"
)

// Status describes where a track sits in the queue's playback order.
type Status int

const (
	Unplayed Status = iota
	Playing
	Played
	Unplayable
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Unplayed:
		return "Unplayed"
	case Playing:
		return "Playing"
	case Played:
		return "Played"
	case Unplayable:
		return "Unplayable"
	default:
		return "Unknown"
	}
}

// MarshalJSON writes the status as a lowercase name for the wire.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToLower(s.String()) + `"`), nil
}

// Track is one entry in the queue. Position is 1-based: an album's disc
// track number, a playlist's index, or 1 for a single-track session.
//
// StreamURL is transient. It is only present while the track is loaded in
// the pipeline or being prepared as the next track, and never survives a
// queue replacement.
type Track struct {
	ID         int           `json:"id"`
	Position   int           `json:"position"`
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	Album      string        `json:"album"`
	AlbumID    string        `json:"album_id,omitempty"`
	Duration   time.Duration `json:"duration"`
	Explicit   bool          `json:"explicit"`
	HiRes      bool          `json:"hires"`
	Streamable bool          `json:"streamable"`
	Status     Status        `json:"status"`

	StreamURL string `json:"-"`
}
