package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

var _ beep.Streamer = (*spliceStreamer)(nil)

// spliceStreamer plays one source and hands off to a queued next source the
// moment the first one runs dry, inside a single Stream call. This is what
// makes the transition gapless: the speaker never observes an empty buffer
// between tracks.
type spliceStreamer struct {
	mu       sync.Mutex
	current  beep.Streamer
	next     beep.Streamer
	onSwitch func() // runs on the speaker thread; must not block
}

// Stream implements beep.Streamer.
func (g *spliceStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return 0, false
	}

	n, ok = g.current.Stream(samples)
	if n < len(samples) && ok {
		n2, ok2 := g.current.Stream(samples[n:])
		n += n2
		ok = ok2
	}

	if !ok && g.next != nil {
		if g.onSwitch != nil {
			g.onSwitch()
		}
		g.current = g.next
		g.next = nil

		if n < len(samples) {
			n2, ok2 := g.current.Stream(samples[n:])
			n += n2
			ok = ok2
		} else {
			ok = true
		}
	}

	return n, ok
}

// Err implements beep.Streamer.
func (g *spliceStreamer) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		return g.current.Err()
	}
	return nil
}

// SetNext queues the source to splice in when the current one ends.
func (g *spliceStreamer) SetNext(s beep.Streamer) {
	g.mu.Lock()
	g.next = s
	g.mu.Unlock()
}

// ClearNext drops any queued source.
func (g *spliceStreamer) ClearNext() {
	g.mu.Lock()
	g.next = nil
	g.mu.Unlock()
}

// HasNext reports whether a source is queued.
func (g *spliceStreamer) HasNext() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next != nil
}
