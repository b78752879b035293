package queue

import (
	"errors"
	"fmt"
	"sort"
)

// Kind tags what a queue was built from.
type Kind int

const (
	Unknown Kind = iota
	Album
	Playlist
	Single
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Album:
		return "album"
	case Playlist:
		return "playlist"
	case Single:
		return "track"
	default:
		return "unknown"
	}
}

// ErrNotFound is returned when no track exists at the requested position.
var ErrNotFound = errors.New("queue: no track at position")

// ErrUnplayable is returned when the target track cannot be streamed.
// The queue is left untouched.
var ErrUnplayable = errors.New("queue: track not streamable")

// List is an ordered collection of tracks keyed by position. Positions are
// unique and monotonically increasing but need not be contiguous (playlist
// positions keep gaps after unavailable tracks are removed upstream).
//
// List is not safe for concurrent use; the playback engine serializes all
// mutation.
type List struct {
	tracks   []*Track // sorted by Position
	kind     Kind
	entityID string
	current  int // index into tracks, -1 if none
}

// New creates an empty queue.
func New() *List {
	return &List{current: -1}
}

// Replace atomically swaps the queue contents. Any previous Playing marks
// die with the old contents. Tracks are sorted by position; duplicate
// positions are rejected.
func (l *List) Replace(kind Kind, entityID string, tracks []Track) error {
	sorted := make([]*Track, 0, len(tracks))
	for i := range tracks {
		t := tracks[i]
		if t.Status == Playing {
			t.Status = Unplayed
		}
		t.StreamURL = ""
		sorted = append(sorted, &t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Position == sorted[i-1].Position {
			return fmt.Errorf("queue: duplicate position %d", sorted[i].Position)
		}
	}

	l.tracks = sorted
	l.kind = kind
	l.entityID = entityID
	l.current = -1
	return nil
}

// Kind returns what this queue was built from.
func (l *List) Kind() Kind { return l.kind }

// EntityID returns the id of the album or playlist the queue was built
// from, or the track id for a single-track session.
func (l *List) EntityID() string { return l.entityID }

// Len returns the number of tracks.
func (l *List) Len() int { return len(l.tracks) }

// Tracks returns a copy of the queue contents in position order.
func (l *List) Tracks() []Track {
	out := make([]Track, len(l.tracks))
	for i, t := range l.tracks {
		out[i] = *t
	}
	return out
}

// Current returns the single track marked Playing, or nil.
func (l *List) Current() *Track {
	if l.current < 0 || l.current >= len(l.tracks) {
		return nil
	}
	return l.tracks[l.current]
}

// indexOfPosition returns the index of the track at exactly pos, or -1.
func (l *List) indexOfPosition(pos int) int {
	i := sort.Search(len(l.tracks), func(i int) bool { return l.tracks[i].Position >= pos })
	if i < len(l.tracks) && l.tracks[i].Position == pos {
		return i
	}
	return -1
}

// SkipTo moves the cursor to the track at the given position and re-marks
// every track relative to it: earlier positions become Played, the target
// Playing, later positions Unplayed. Unplayable marks are sticky.
//
// Positions below 1 clamp to 1. A missing position returns ErrNotFound and
// an unplayable target returns ErrUnplayable; in both cases the queue is a
// no-op and the previous cursor stays intact.
func (l *List) SkipTo(pos int) (*Track, error) {
	if pos < 1 {
		pos = 1
	}
	idx := l.indexOfPosition(pos)
	if idx < 0 {
		return nil, fmt.Errorf("%w %d", ErrNotFound, pos)
	}
	target := l.tracks[idx]
	if !target.Streamable || target.Status == Unplayable {
		return nil, fmt.Errorf("%w: track %d at position %d", ErrUnplayable, target.ID, pos)
	}

	for i, t := range l.tracks {
		if t.Status == Unplayable {
			continue
		}
		switch {
		case i < idx:
			t.Status = Played
		case i == idx:
			t.Status = Playing
		default:
			t.Status = Unplayed
		}
	}
	l.current = idx
	return target, nil
}

// AdvanceNext moves to the next higher existing position. For albums that
// is current+1; for playlists it naturally lands on the next entry across
// position gaps. Returns nil at the tail, leaving the queue untouched.
func (l *List) AdvanceNext() *Track {
	next := l.current + 1
	if l.current < 0 {
		next = 0
	}
	if next >= len(l.tracks) {
		return nil
	}
	t, err := l.SkipTo(l.tracks[next].Position)
	if err != nil {
		return nil
	}
	return t
}

// NextStreamable returns the first streamable track after the cursor
// without moving it, or nil. Used by the gapless preload to decide what to
// fetch next.
func (l *List) NextStreamable() *Track {
	for i := l.current + 1; i < len(l.tracks); i++ {
		if i < 0 {
			continue
		}
		t := l.tracks[i]
		if t.Streamable && t.Status != Unplayable {
			return t
		}
	}
	return nil
}

// At returns a copy of the track at exactly pos.
func (l *List) At(pos int) (Track, bool) {
	idx := l.indexOfPosition(pos)
	if idx < 0 {
		return Track{}, false
	}
	return *l.tracks[idx], true
}

// NextPositionAfter returns the next higher existing position, false at the
// tail. Position gaps in playlists are stepped over.
func (l *List) NextPositionAfter(pos int) (int, bool) {
	i := sort.Search(len(l.tracks), func(i int) bool { return l.tracks[i].Position > pos })
	if i >= len(l.tracks) {
		return 0, false
	}
	return l.tracks[i].Position, true
}

// PrevPositionBefore returns the next lower existing position, false at the
// head.
func (l *List) PrevPositionBefore(pos int) (int, bool) {
	i := sort.Search(len(l.tracks), func(i int) bool { return l.tracks[i].Position >= pos })
	if i == 0 {
		return 0, false
	}
	return l.tracks[i-1].Position, true
}

// FindByID returns the position of the first track with the given id.
// Playlists can contain duplicates; the first match in position order wins.
func (l *List) FindByID(trackID int) (int, bool) {
	for _, t := range l.tracks {
		if t.ID == trackID {
			return t.Position, true
		}
	}
	return 0, false
}

// MarkUnplayable flags the track with the given id so skips and preloads
// pass over it.
func (l *List) MarkUnplayable(trackID int) {
	for _, t := range l.tracks {
		if t.ID == trackID {
			t.Status = Unplayable
		}
	}
}

// FirstStreamable returns the lowest-position streamable track, or nil.
func (l *List) FirstStreamable() *Track {
	for _, t := range l.tracks {
		if t.Streamable && t.Status != Unplayable {
			return t
		}
	}
	return nil
}

// SetStreamURL attaches a transient stream URL to the track at pos.
func (l *List) SetStreamURL(pos int, url string) {
	if idx := l.indexOfPosition(pos); idx >= 0 {
		l.tracks[idx].StreamURL = url
	}
}

// ClearStreamURLs drops every transient stream URL.
func (l *List) ClearStreamURLs() {
	for _, t := range l.tracks {
		t.StreamURL = ""
	}
}
