package playback

import (
	"context"
	"fmt"
	"strconv"

	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/queue"
)

// Resume rebuilds the saved session: refetch the entity, land the cursor on
// the saved track, load its URL and seek to the saved clock. The pipeline
// ends up Paused, or Playing when autoplay is set.
//
// Call before Run starts consuming; the loop is not yet racing for the
// state. On failure the queue is rolled back to empty and an Error event
// published alongside the returned error.
func (e *Engine) Resume(ctx context.Context, autoplay bool) error {
	if e.store == nil {
		return ErrNoSession
	}
	sess, ok, err := e.store.Session()
	if err != nil {
		e.publishError(ErrorResume, err)
		return err
	}
	if !ok {
		return ErrNoSession
	}

	e.state.SetResuming(true)
	defer e.state.SetResuming(false)

	if err := e.restoreSession(ctx, sess, autoplay); err != nil {
		_ = e.state.ReplaceQueue(queue.Unknown, "", nil)
		err = fmt.Errorf("restore %s %s: %w", sess.EntityKind, sess.EntityID, err)
		e.publishError(ErrorResume, err)
		return err
	}
	return nil
}

func (e *Engine) restoreSession(ctx context.Context, sess Session, autoplay bool) error {
	var (
		kind   queue.Kind
		tracks []queue.Track
	)
	switch sess.EntityKind {
	case "album":
		album, err := e.catalog.Album(ctx, sess.EntityID)
		if err != nil {
			return err
		}
		kind, tracks = queue.Album, albumTracks(album)
	case "playlist":
		id, err := strconv.ParseInt(sess.EntityID, 10, 64)
		if err != nil {
			return fmt.Errorf("playlist id %q: %w", sess.EntityID, err)
		}
		playlist, err := e.catalog.Playlist(ctx, id)
		if err != nil {
			return err
		}
		kind, tracks = queue.Playlist, playlistTracks(playlist)
	case "track":
		id, err := strconv.Atoi(sess.EntityID)
		if err != nil {
			return fmt.Errorf("track id %q: %w", sess.EntityID, err)
		}
		track, err := e.catalog.Track(ctx, id)
		if err != nil {
			return err
		}
		kind, tracks = queue.Single, singleTrack(track)
	default:
		return fmt.Errorf("unknown entity kind %q", sess.EntityKind)
	}

	if err := e.state.ReplaceQueue(kind, sess.EntityID, tracks); err != nil {
		return err
	}
	track, err := e.state.SkipTo(sess.TrackPosition)
	if err != nil {
		return err
	}
	url, err := e.resolveStreamURL(ctx, track)
	if err != nil {
		return err
	}
	e.pipe.SetURI(url)

	if err := e.pipe.SetState(ctx, player.Ready); err != nil {
		return err
	}
	if err := e.pipe.SetState(ctx, player.Paused); err != nil {
		return err
	}
	if sess.Position > 0 {
		if err := e.pipe.Seek(sess.Position, player.SeekFlushAccurate); err != nil {
			return err
		}
	}
	e.state.SetPosition(sess.Position)

	target := player.Paused
	if autoplay {
		target = player.Playing
	}
	e.state.SetTargetStatus(target)
	if autoplay {
		if err := e.pipe.SetState(ctx, player.Playing); err != nil {
			return err
		}
	}

	e.bus.Publish(e.state.TrackList())
	e.bus.Publish(CurrentTrackEvent{Track: track})
	e.bus.Publish(PositionEvent{Clock: sess.Position})
	return nil
}
