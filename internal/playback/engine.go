package playback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/llehouerou/quartz/internal/logger"
	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/qobuz"
	"github.com/llehouerou/quartz/internal/queue"
)

const (
	// How far JumpForward/JumpBackward move the clock.
	jumpStep = 10 * time.Second
	// Previous restarts the current track instead of skipping back when
	// the clock is past this point.
	previousThreshold = time.Second
	// Clock loop tick.
	clockInterval = 500 * time.Millisecond
)

// Engine owns all playback mutation. One goroutine runs the loop; every
// surface talks to it through Controls and listens on the notification bus.
type Engine struct {
	pipe     player.Pipeline
	catalog  Catalog
	store    SessionStore
	state    *State
	bus      *Broadcaster
	controls Controls

	// Pinged from the pipeline's lead-out thread; serviced by the loop.
	preload chan struct{}
}

// Options configure engine construction.
type Options struct {
	// Store receives the session snapshot on quit. Nil disables resume.
	Store SessionStore
	// QuitWhenDone makes end-of-stream terminate the engine.
	QuitWhenDone bool
}

// NewEngine wires an engine to its pipeline and catalog. Call Run to start
// the loop.
func NewEngine(pipe player.Pipeline, catalog Catalog, opts Options) *Engine {
	e := &Engine{
		pipe:     pipe,
		catalog:  catalog,
		store:    opts.Store,
		state:    NewState(),
		bus:      NewBroadcaster(),
		controls: NewControls(),
		preload:  make(chan struct{}, 1),
	}
	e.state.SetQuitWhenDone(opts.QuitWhenDone)
	// The callback runs on the pipeline's thread. One non-blocking send,
	// nothing else.
	pipe.OnAboutToFinish(func() {
		select {
		case e.preload <- struct{}{}:
		default:
		}
	})
	return e
}

// Controls returns the shared command sender.
func (e *Engine) Controls() Controls { return e.controls }

// State returns the read handle surfaces snapshot from.
func (e *Engine) State() *State { return e.state }

// Subscribe registers a notification observer.
func (e *Engine) Subscribe() *Subscription { return e.bus.Subscribe() }

// Run is the engine loop. It consumes commands, pipeline messages and
// preload pings one at a time until Quit or context cancellation, then
// drains the pipeline to Null and closes the bus.
func (e *Engine) Run(ctx context.Context) error {
	go e.clockLoop(ctx)

	msgs := e.pipe.Messages()
	for {
		select {
		case <-ctx.Done():
			e.shutdown(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-e.state.QuitSignal():
			e.shutdown(context.WithoutCancel(ctx))
			return nil
		case cmd := <-e.controls.ch:
			e.handleCommand(ctx, cmd)
		case msg, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			e.handleMessage(ctx, msg)
		case <-e.preload:
			e.preloadNext(ctx)
		}
	}
}

func (e *Engine) handleCommand(ctx context.Context, cmd Command) {
	logger.Debug("command", logger.String("cmd", fmt.Sprintf("%T", cmd)))
	switch c := cmd.(type) {
	case Play:
		e.state.SetTargetStatus(player.Playing)
		e.setPipelineState(ctx, player.Playing)
	case Pause:
		e.state.SetTargetStatus(player.Paused)
		e.setPipelineState(ctx, player.Paused)
	case Stop:
		e.state.SetTargetStatus(player.Ready)
		e.setPipelineState(ctx, player.Ready)
	case PlayPause:
		if e.state.Status() == player.Playing {
			e.handleCommand(ctx, Pause{})
		} else {
			e.handleCommand(ctx, Play{})
		}
	case Quit:
		e.state.Quit()
	case Next:
		e.next(ctx)
	case Previous:
		e.previous(ctx)
	case SkipToIndex:
		e.skip(ctx, c.Position)
	case SkipToTrackID:
		pos, ok := e.state.FindByID(c.TrackID)
		if !ok {
			e.publishError(ErrorStreamURL, fmt.Errorf("track %d not in queue", c.TrackID))
			return
		}
		e.skip(ctx, pos)
	case JumpForward:
		e.jump(jumpStep)
	case JumpBackward:
		e.jump(-jumpStep)
	case PlayAlbum:
		e.playAlbum(ctx, c.AlbumID)
	case PlayTrack:
		e.playTrack(ctx, c.TrackID)
	case PlayPlaylist:
		e.playPlaylist(ctx, c.PlaylistID)
	case PlayURI:
		e.playURI(ctx, c.URL)
	}
}

// next advances to the next playable track, silently passing over entries
// that cannot stream.
func (e *Engine) next(ctx context.Context) {
	pos := 0
	if cur, ok := e.state.CurrentTrack(); ok {
		pos = cur.Position
	}
	for {
		n, ok := e.state.NextPosition(pos)
		if !ok {
			return
		}
		t, ok := e.state.TrackAt(n)
		if !ok {
			return
		}
		if !t.Streamable || t.Status == queue.Unplayable {
			e.state.MarkUnplayable(t.ID)
			pos = n
			continue
		}
		e.skip(ctx, n)
		return
	}
}

// previous restarts the current track when more than a second in,
// otherwise skips to the preceding position.
func (e *Engine) previous(ctx context.Context) {
	cur, ok := e.state.CurrentTrack()
	if !ok {
		return
	}
	if pos, have := e.pipe.Position(); have && pos > previousThreshold {
		if err := e.pipe.Seek(0, player.SeekFlushKeyUnit); err != nil {
			e.publishError(ErrorPipeline, err)
			return
		}
		e.state.SetPosition(0)
		e.bus.Publish(PositionEvent{})
		return
	}
	prev, ok := e.state.PrevPosition(cur.Position)
	if !ok {
		prev = cur.Position
	}
	e.skip(ctx, prev)
}

// skip is the common protocol: validate the target, fetch a fresh URL,
// then pipeline to Ready, move the cursor, load the URL and restore the
// target state. Validation and the fetch happen before the pipeline leaves
// its current source, so a bad target or a failed fetch is an error event
// and nothing else; whatever was playing keeps playing.
func (e *Engine) skip(ctx context.Context, target int) {
	candidate, ok := e.state.TrackAt(target)
	if !ok {
		e.publishError(ErrorStreamURL, fmt.Errorf("position %d: %w", target, queue.ErrNotFound))
		return
	}
	if !candidate.Streamable || candidate.Status == queue.Unplayable {
		e.publishError(ErrorStreamURL, fmt.Errorf("position %d: %w", target, queue.ErrUnplayable))
		return
	}
	url, err := e.resolveStreamURL(ctx, candidate)
	if err != nil {
		e.publishError(ErrorStreamURL, err)
		return
	}

	e.setPipelineState(ctx, player.Ready)
	track, err := e.state.SkipTo(target)
	if err != nil {
		e.publishError(ErrorStreamURL, err)
		e.setPipelineState(ctx, e.state.TargetStatus())
		return
	}
	e.pipe.SetURI(url)
	e.setPipelineState(ctx, e.state.TargetStatus())
	e.bus.Publish(CurrentTrackEvent{Track: track})
}

func (e *Engine) jump(delta time.Duration) {
	if e.state.Buffering() {
		return
	}
	pos, ok := e.pipe.Position()
	if !ok {
		return
	}
	target := pos + delta
	if target < 0 {
		target = 0
	}
	if dur, ok := e.pipe.Duration(); ok && target > dur {
		target = dur
	}
	if err := e.pipe.Seek(target, player.SeekFlushKeyUnit); err != nil {
		e.publishError(ErrorPipeline, err)
		return
	}
	e.state.SetPosition(target)
	e.bus.Publish(PositionEvent{Clock: target})
}

func (e *Engine) playAlbum(ctx context.Context, id string) {
	album, err := e.catalog.Album(ctx, id)
	if err != nil {
		e.publishError(ErrorCatalog, err)
		return
	}
	e.startQueue(ctx, queue.Album, id, albumTracks(album))
}

func (e *Engine) playPlaylist(ctx context.Context, id int64) {
	playlist, err := e.catalog.Playlist(ctx, id)
	if err != nil {
		e.publishError(ErrorCatalog, err)
		return
	}
	e.startQueue(ctx, queue.Playlist, strconv.FormatInt(id, 10), playlistTracks(playlist))
}

func (e *Engine) playTrack(ctx context.Context, id int) {
	track, err := e.catalog.Track(ctx, id)
	if err != nil {
		e.publishError(ErrorCatalog, err)
		return
	}
	e.startQueue(ctx, queue.Single, strconv.Itoa(id), singleTrack(track))
}

func (e *Engine) playURI(ctx context.Context, raw string) {
	ref, err := qobuz.ParseURL(raw)
	if err != nil {
		e.publishError(ErrorUnrecognizedURI, err)
		return
	}
	switch ref.Kind {
	case qobuz.EntityAlbum:
		e.playAlbum(ctx, ref.ID)
	case qobuz.EntityPlaylist:
		id, err := strconv.ParseInt(ref.ID, 10, 64)
		if err != nil {
			e.publishError(ErrorUnrecognizedURI, fmt.Errorf("playlist id %q: %w", ref.ID, err))
			return
		}
		e.playPlaylist(ctx, id)
	case qobuz.EntityTrack:
		id, err := strconv.Atoi(ref.ID)
		if err != nil {
			e.publishError(ErrorUnrecognizedURI, fmt.Errorf("track id %q: %w", ref.ID, err))
			return
		}
		e.playTrack(ctx, id)
	}
}

// startQueue replaces the queue and starts playback on the first playable
// track.
func (e *Engine) startQueue(ctx context.Context, kind queue.Kind, entityID string, tracks []queue.Track) {
	if len(tracks) == 0 {
		e.publishError(ErrorCatalog, fmt.Errorf("no tracks in %s %s", kind, entityID))
		return
	}
	if err := e.state.ReplaceQueue(kind, entityID, tracks); err != nil {
		e.publishError(ErrorCatalog, err)
		return
	}
	first, ok := e.state.FirstStreamable()
	if !ok {
		e.publishError(ErrorStreamURL, fmt.Errorf("no streamable tracks in %s %s", kind, entityID))
		return
	}
	e.setPipelineState(ctx, player.Ready)
	track, err := e.state.SkipTo(first.Position)
	if err != nil {
		e.publishError(ErrorStreamURL, err)
		return
	}
	url, err := e.resolveStreamURL(ctx, track)
	if err != nil {
		e.publishError(ErrorStreamURL, err)
		return
	}
	e.pipe.SetURI(url)
	e.state.SetTargetStatus(player.Playing)
	e.setPipelineState(ctx, player.Playing)
	e.bus.Publish(e.state.TrackList())
	e.bus.Publish(CurrentTrackEvent{Track: track})
}

func (e *Engine) handleMessage(ctx context.Context, msg player.Message) {
	switch msg.Kind {
	case player.MsgStateChanged:
		// Only transitions that land on the user's target become the
		// observed status; transient Ready hops during skips stay quiet.
		if msg.State != e.state.Status() && msg.State == e.state.TargetStatus() {
			e.state.SetStatus(msg.State)
			e.bus.Publish(StatusEvent{Status: msg.State})
		}
	case player.MsgStreamStart:
		if cur, ok := e.state.CurrentTrack(); ok {
			e.bus.Publish(CurrentTrackEvent{Track: cur})
		}
		if dur, ok := e.pipe.Duration(); ok {
			e.state.SetDuration(dur)
			e.bus.Publish(DurationEvent{Clock: dur})
		}
		e.setPipelineState(ctx, e.state.TargetStatus())
	case player.MsgAsyncDone:
		pos := msg.RunningTime
		if pos < 0 {
			p, ok := e.pipe.Position()
			if !ok {
				p = 0
			}
			pos = p
		}
		e.state.SetPosition(pos)
		e.bus.Publish(PositionEvent{Clock: pos})
	case player.MsgBuffering:
		e.handleBuffering(ctx, msg.Percent)
	case player.MsgEOS:
		e.handleEOS(ctx)
	case player.MsgError:
		e.publishError(ErrorPipeline, msg.Err)
	}
}

func (e *Engine) handleBuffering(ctx context.Context, pct int) {
	switch {
	case pct < 100 && !e.state.Buffering():
		e.setPipelineState(ctx, player.Paused)
		e.state.SetBuffering(true)
		e.bus.Publish(BufferingEvent{IsBuffering: true, Percent: pct, Target: e.state.TargetStatus()})
	case pct >= 100 && e.state.Buffering():
		e.state.SetBuffering(false)
		e.setPipelineState(ctx, e.state.TargetStatus())
		e.bus.Publish(BufferingEvent{IsBuffering: false, Percent: pct, Target: e.state.TargetStatus()})
	}
}

// handleEOS rewinds the finished queue so a later Play starts over from the
// head, or quits outright when armed to.
func (e *Engine) handleEOS(ctx context.Context) {
	if e.state.QuitWhenDone() {
		e.state.Quit()
		return
	}
	e.state.SetTargetStatus(player.Paused)
	e.setPipelineState(ctx, player.Ready)
	e.state.SetPosition(0)
	e.state.SetDuration(0)

	first, ok := e.state.FirstStreamable()
	if !ok {
		return
	}
	track, err := e.state.SkipTo(first.Position)
	if err != nil {
		e.publishError(ErrorStreamURL, err)
		return
	}
	url, err := e.resolveStreamURL(ctx, track)
	if err != nil {
		e.publishError(ErrorStreamURL, err)
		return
	}
	e.pipe.SetURI(url)
	e.setPipelineState(ctx, player.Paused)
	e.bus.Publish(CurrentTrackEvent{Track: track})
	e.bus.Publish(PositionEvent{})
}

// preloadNext services a lead-out ping: advance the cursor to the next
// playable track, fetch its URL and hand it to the pipeline for a gapless
// switch. A track whose URL fetch fails is marked unplayable and the next
// candidate tried, bounded by the remaining queue.
func (e *Engine) preloadNext(ctx context.Context) {
	for {
		next, ok := e.state.NextStreamable()
		if !ok {
			// Nothing left to queue; the pipeline drains to EOS.
			return
		}
		tu, err := e.catalog.TrackURL(ctx, next.ID, e.catalog.Quality())
		if err != nil {
			logger.Warn("preload url fetch failed",
				logger.Int("track", next.ID), logger.Err(err))
			e.state.MarkUnplayable(next.ID)
			continue
		}
		if _, err := e.state.SkipTo(next.Position); err != nil {
			return
		}
		e.state.SetStreamURL(next.Position, tu.URL)
		e.pipe.SetURI(tu.URL)
		e.bus.Publish(AudioQualityEvent{BitDepth: tu.BitDepth, SamplingRate: tu.SamplingRate})
		return
	}
}

// clockLoop broadcasts the stream position every half second while playing.
func (e *Engine) clockLoop(ctx context.Context) {
	ticker := time.NewTicker(clockInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.state.QuitSignal():
			return
		case <-ticker.C:
			if e.state.Status() != player.Playing {
				continue
			}
			if pos, ok := e.pipe.Position(); ok {
				e.state.SetPosition(pos)
				e.bus.Publish(PositionEvent{Clock: pos})
			}
		}
	}
}

// resolveStreamURL fetches a signed URL for the track and records it on the
// queue entry. Also announces the negotiated stream format.
func (e *Engine) resolveStreamURL(ctx context.Context, t queue.Track) (string, error) {
	tu, err := e.catalog.TrackURL(ctx, t.ID, e.catalog.Quality())
	if err != nil {
		return "", err
	}
	e.state.SetStreamURL(t.Position, tu.URL)
	e.bus.Publish(AudioQualityEvent{BitDepth: tu.BitDepth, SamplingRate: tu.SamplingRate})
	return tu.URL, nil
}

// setPipelineState drives the pipeline and reports failures on the bus
// instead of returning them; commands never hand errors back to surfaces.
func (e *Engine) setPipelineState(ctx context.Context, target player.Status) {
	if err := e.pipe.SetState(ctx, target); err != nil {
		e.publishError(ErrorPipeline, err)
	}
}

func (e *Engine) publishError(kind ErrorKind, err error) {
	kind = classify(kind, err)
	logger.Warn("playback error", logger.String("kind", string(kind)), logger.Err(err))
	e.bus.Publish(ErrorEvent{Kind: kind, Message: err.Error()})
}

// classify overrides the call-site kind for errors with a kind of their
// own.
func classify(kind ErrorKind, err error) ErrorKind {
	switch {
	case errors.Is(err, qobuz.ErrNoCredentials):
		return ErrorNoCredentials
	case errors.Is(err, qobuz.ErrUnrecognizedURI):
		return ErrorUnrecognizedURI
	default:
		return kind
	}
}

// shutdown saves the session, drains the pipeline to Null and closes the
// bus. Runs exactly once, from the engine loop.
func (e *Engine) shutdown(ctx context.Context) {
	e.saveSnapshot()
	if err := e.pipe.SetState(ctx, player.Ready); err != nil {
		logger.Warn("shutdown to ready", logger.Err(err))
	}
	if err := e.pipe.SetState(ctx, player.Null); err != nil {
		logger.Warn("shutdown to null", logger.Err(err))
	}
	if err := e.pipe.Close(); err != nil {
		logger.Warn("pipeline close", logger.Err(err))
	}
	e.bus.Close()
}

// saveSnapshot writes the resume record when a session worth resuming
// exists.
func (e *Engine) saveSnapshot() {
	if e.store == nil {
		return
	}
	cur, ok := e.state.CurrentTrack()
	if !ok {
		return
	}
	list := e.state.TrackList()
	if list.Kind == queue.Unknown {
		return
	}
	sess := Session{
		EntityKind:    list.Kind.String(),
		EntityID:      list.EntityID,
		TrackPosition: cur.Position,
		Position:      e.state.Position(),
	}
	if err := e.store.SaveSession(sess); err != nil {
		logger.Warn("save session", logger.Err(err))
		return
	}
	logger.Info("session saved",
		logger.String("kind", sess.EntityKind),
		logger.String("entity", sess.EntityID),
		logger.Int("position", sess.TrackPosition))
}
