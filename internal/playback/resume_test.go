package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/queue"
)

func TestResume_RestoresSessionPaused(t *testing.T) {
	cat := newFakeCatalog()
	cat.albums["abc"] = albumOf("abc", 11, 12, 13, 14, 15)
	store := &fakeStore{}
	store.SaveSession(Session{
		EntityKind:    "album",
		EntityID:      "abc",
		TrackPosition: 5,
		Position:      42500 * time.Millisecond,
	})

	pipe := player.NewMock()
	eng := NewEngine(pipe, cat, Options{Store: store})
	sub := eng.Subscribe()

	if err := eng.Resume(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	list := waitFor[TrackListEvent](t, sub)
	if list.Kind != queue.Album || list.EntityID != "abc" {
		t.Errorf("list = kind %v entity %s", list.Kind, list.EntityID)
	}
	cur := waitFor[CurrentTrackEvent](t, sub)
	if cur.Track.Position != 5 || cur.Track.ID != 15 {
		t.Errorf("current = pos %d id %d", cur.Track.Position, cur.Track.ID)
	}
	pos := waitFor[PositionEvent](t, sub)
	if pos.Clock != 42500*time.Millisecond {
		t.Errorf("clock = %v", pos.Clock)
	}

	seeks := pipe.SeekCalls()
	if len(seeks) != 1 || seeks[0].Pos != 42500*time.Millisecond || seeks[0].Flags != player.SeekFlushAccurate {
		t.Errorf("seeks = %+v", seeks)
	}
	if eng.State().TargetStatus() != player.Paused {
		t.Errorf("target = %v, want Paused", eng.State().TargetStatus())
	}
	if pipe.State() != player.Paused {
		t.Errorf("pipeline = %v, want Paused", pipe.State())
	}
	if pipe.CurrentURI() != "https://cdn.test/15.flac" {
		t.Errorf("uri = %s", pipe.CurrentURI())
	}

	// Earlier tracks are Played, the target Playing.
	tracks := eng.State().TrackList().Tracks
	for i := 0; i < 4; i++ {
		if tracks[i].Status != queue.Played {
			t.Errorf("track %d status = %v", i+1, tracks[i].Status)
		}
	}
	if tracks[4].Status != queue.Playing {
		t.Errorf("track 5 status = %v", tracks[4].Status)
	}
}

func TestResume_Autoplay(t *testing.T) {
	cat := newFakeCatalog()
	cat.albums["abc"] = albumOf("abc", 11)
	store := &fakeStore{}
	store.SaveSession(Session{EntityKind: "album", EntityID: "abc", TrackPosition: 1})

	pipe := player.NewMock()
	eng := NewEngine(pipe, cat, Options{Store: store})

	if err := eng.Resume(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if eng.State().TargetStatus() != player.Playing {
		t.Errorf("target = %v", eng.State().TargetStatus())
	}
	if pipe.State() != player.Playing {
		t.Errorf("pipeline = %v", pipe.State())
	}
}

func TestResume_NoSession(t *testing.T) {
	cat := newFakeCatalog()
	pipe := player.NewMock()
	eng := NewEngine(pipe, cat, Options{Store: &fakeStore{}})

	if err := eng.Resume(context.Background(), false); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}

	eng2 := NewEngine(player.NewMock(), cat, Options{})
	if err := eng2.Resume(context.Background(), false); !errors.Is(err, ErrNoSession) {
		t.Errorf("err without store = %v, want ErrNoSession", err)
	}
}

func TestResume_FailureRollsBack(t *testing.T) {
	cat := newFakeCatalog() // album missing from catalog
	store := &fakeStore{}
	store.SaveSession(Session{EntityKind: "album", EntityID: "gone", TrackPosition: 1})

	pipe := player.NewMock()
	eng := NewEngine(pipe, cat, Options{Store: store})
	sub := eng.Subscribe()

	if err := eng.Resume(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	ev := waitFor[ErrorEvent](t, sub)
	if ev.Kind != ErrorResume {
		t.Errorf("kind = %s", ev.Kind)
	}
	if eng.State().QueueLen() != 0 {
		t.Errorf("queue len = %d after rollback", eng.State().QueueLen())
	}
	if len(pipe.URICalls()) != 0 {
		t.Errorf("uri loaded despite failure: %v", pipe.URICalls())
	}
}

func TestResume_SnapshotRoundTrip(t *testing.T) {
	cat := newFakeCatalog()
	cat.albums["abc"] = albumOf("abc", 11, 12)
	store := &fakeStore{}

	// First run: play, advance position, quit.
	pipe := player.NewMock()
	eng := NewEngine(pipe, cat, Options{Store: store})
	sub := eng.Subscribe()
	done := make(chan error, 1)
	go func() { done <- eng.Run(context.Background()) }()

	eng.Controls().Send(PlayAlbum{AlbumID: "abc"})
	waitFor[CurrentTrackEvent](t, sub)
	eng.Controls().Send(SkipToIndex{Position: 2})
	waitFor[CurrentTrackEvent](t, sub)
	pipe.Emit(player.Message{Kind: player.MsgAsyncDone, RunningTime: 30 * time.Second})
	waitFor[PositionEvent](t, sub)
	eng.Controls().Send(Quit{})
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	// Second run: resume lands on the same track and clock.
	pipe2 := player.NewMock()
	eng2 := NewEngine(pipe2, cat, Options{Store: store})
	if err := eng2.Resume(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	cur, ok := eng2.State().CurrentTrack()
	if !ok || cur.Position != 2 {
		t.Errorf("resumed position = %d, want 2", cur.Position)
	}
	if eng2.State().Position() != 30*time.Second {
		t.Errorf("resumed clock = %v", eng2.State().Position())
	}
}
