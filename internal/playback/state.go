package playback

import (
	"sync"
	"time"

	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/queue"
)

// State is the authoritative playback record. The engine loop is the only
// writer; surfaces hold read access. Queue mutation goes through the
// wrapper methods so the lock always covers it.
//
// None of the methods perform I/O and none are held across pipeline or
// network calls.
type State struct {
	mu sync.RWMutex

	list      *queue.List
	status    player.Status // last confirmed pipeline state
	target    player.Status // last user intent
	buffering bool
	resuming  bool
	position  time.Duration
	duration  time.Duration

	quitWhenDone bool
	quitOnce     sync.Once
	quit         chan struct{}
}

// NewState creates an empty record with an empty queue.
func NewState() *State {
	return &State{
		list: queue.New(),
		quit: make(chan struct{}),
	}
}

// Status returns the last confirmed pipeline state.
func (s *State) Status() player.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus records a confirmed pipeline state.
func (s *State) SetStatus(v player.Status) {
	s.mu.Lock()
	s.status = v
	s.mu.Unlock()
}

// TargetStatus returns the state the user most recently asked for.
func (s *State) TargetStatus() player.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// SetTargetStatus records a new user intent.
func (s *State) SetTargetStatus(v player.Status) {
	s.mu.Lock()
	s.target = v
	s.mu.Unlock()
}

// Buffering reports whether the pipeline is filling its buffer.
func (s *State) Buffering() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffering
}

// SetBuffering flips the buffering flag.
func (s *State) SetBuffering(v bool) {
	s.mu.Lock()
	s.buffering = v
	s.mu.Unlock()
}

// Resuming reports whether a session restore is in flight.
func (s *State) Resuming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resuming
}

// SetResuming flips the restore-in-flight flag.
func (s *State) SetResuming(v bool) {
	s.mu.Lock()
	s.resuming = v
	s.mu.Unlock()
}

// Position returns the last observed stream clock.
func (s *State) Position() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// SetPosition records the stream clock.
func (s *State) SetPosition(v time.Duration) {
	s.mu.Lock()
	s.position = v
	s.mu.Unlock()
}

// Duration returns the last observed source duration.
func (s *State) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

// SetDuration records the source duration.
func (s *State) SetDuration(v time.Duration) {
	s.mu.Lock()
	s.duration = v
	s.mu.Unlock()
}

// QuitWhenDone reports whether the engine exits at end of stream.
func (s *State) QuitWhenDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quitWhenDone
}

// SetQuitWhenDone arms exit-at-end-of-stream.
func (s *State) SetQuitWhenDone(v bool) {
	s.mu.Lock()
	s.quitWhenDone = v
	s.mu.Unlock()
}

// Quit fans out the shutdown signal. Safe to call more than once.
func (s *State) Quit() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// QuitSignal returns a channel closed once Quit is called. Every long-lived
// task selects on it.
func (s *State) QuitSignal() <-chan struct{} { return s.quit }

// Quitting reports whether Quit has been called.
func (s *State) Quitting() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// Queue wrappers. All return copies so readers never alias engine-owned
// tracks.

// ReplaceQueue swaps the queue contents and resets the transient clock
// fields.
func (s *State) ReplaceQueue(kind queue.Kind, entityID string, tracks []queue.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.list.Replace(kind, entityID, tracks); err != nil {
		return err
	}
	s.position = 0
	s.duration = 0
	return nil
}

// SkipTo moves the queue cursor, re-marking statuses around it.
func (s *State) SkipTo(pos int) (queue.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.list.SkipTo(pos)
	if err != nil {
		return queue.Track{}, err
	}
	return *t, nil
}

// AdvanceNext moves the cursor to the next higher position, false at the
// tail.
func (s *State) AdvanceNext() (queue.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.list.AdvanceNext()
	if t == nil {
		return queue.Track{}, false
	}
	return *t, true
}

// CurrentTrack returns the track marked Playing, false when none is.
func (s *State) CurrentTrack() (queue.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.list.Current()
	if t == nil {
		return queue.Track{}, false
	}
	return *t, true
}

// TrackAt returns the track at exactly pos.
func (s *State) TrackAt(pos int) (queue.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.At(pos)
}

// NextPosition returns the position following pos, false at the tail.
func (s *State) NextPosition(pos int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.NextPositionAfter(pos)
}

// PrevPosition returns the position preceding pos, false at the head.
func (s *State) PrevPosition(pos int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.PrevPositionBefore(pos)
}

// FirstStreamable returns the lowest-position playable track.
func (s *State) FirstStreamable() (queue.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.list.FirstStreamable()
	if t == nil {
		return queue.Track{}, false
	}
	return *t, true
}

// NextStreamable returns the first playable track after the cursor without
// moving it.
func (s *State) NextStreamable() (queue.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.list.NextStreamable()
	if t == nil {
		return queue.Track{}, false
	}
	return *t, true
}

// FindByID maps a track id to its first queue position.
func (s *State) FindByID(trackID int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.FindByID(trackID)
}

// MarkUnplayable flags every entry with the given track id.
func (s *State) MarkUnplayable(trackID int) {
	s.mu.Lock()
	s.list.MarkUnplayable(trackID)
	s.mu.Unlock()
}

// SetStreamURL attaches a freshly signed URL to the track at pos.
func (s *State) SetStreamURL(pos int, url string) {
	s.mu.Lock()
	s.list.SetStreamURL(pos, url)
	s.mu.Unlock()
}

// TrackList returns a snapshot of the whole queue for broadcast.
func (s *State) TrackList() TrackListEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TrackListEvent{
		Kind:     s.list.Kind(),
		EntityID: s.list.EntityID(),
		Tracks:   s.list.Tracks(),
	}
}

// QueueLen returns the number of queued tracks.
func (s *State) QueueLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Len()
}
