package queue

import (
	"errors"
	"testing"
)

func albumTracks(n int) []Track {
	tracks := make([]Track, n)
	for i := range tracks {
		tracks[i] = Track{
			ID:         100 + i,
			Position:   i + 1,
			Title:      "Track",
			Streamable: true,
		}
	}
	return tracks
}

func TestReplace_ClearsPlayingMarks(t *testing.T) {
	l := New()
	tracks := albumTracks(3)
	tracks[1].Status = Playing

	if err := l.Replace(Album, "abc", tracks); err != nil {
		t.Fatal(err)
	}

	for _, tr := range l.Tracks() {
		if tr.Status == Playing {
			t.Errorf("track %d still marked Playing after replace", tr.ID)
		}
	}
	if l.Current() != nil {
		t.Error("Current() != nil after replace")
	}
}

func TestReplace_RejectsDuplicatePositions(t *testing.T) {
	l := New()
	tracks := albumTracks(2)
	tracks[1].Position = 1

	if err := l.Replace(Album, "abc", tracks); err == nil {
		t.Error("expected error for duplicate positions")
	}
}

func TestSkipTo_MarksStatuses(t *testing.T) {
	l := New()
	if err := l.Replace(Album, "abc", albumTracks(5)); err != nil {
		t.Fatal(err)
	}

	cur, err := l.SkipTo(3)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Position != 3 {
		t.Fatalf("SkipTo(3) landed on position %d", cur.Position)
	}

	for _, tr := range l.Tracks() {
		var want Status
		switch {
		case tr.Position < 3:
			want = Played
		case tr.Position == 3:
			want = Playing
		default:
			want = Unplayed
		}
		if tr.Status != want {
			t.Errorf("position %d: status = %v, want %v", tr.Position, tr.Status, want)
		}
	}
}

func TestSkipTo_ExactlyOnePlaying(t *testing.T) {
	l := New()
	if err := l.Replace(Album, "abc", albumTracks(4)); err != nil {
		t.Fatal(err)
	}

	for _, pos := range []int{1, 4, 2, 2, 3} {
		if _, err := l.SkipTo(pos); err != nil {
			t.Fatal(err)
		}
		playing := 0
		for _, tr := range l.Tracks() {
			if tr.Status == Playing {
				playing++
			}
		}
		if playing != 1 {
			t.Fatalf("after SkipTo(%d): %d tracks Playing, want 1", pos, playing)
		}
		if cur := l.Current(); cur == nil || cur.Position != pos {
			t.Fatalf("after SkipTo(%d): Current() = %+v", pos, cur)
		}
	}
}

func TestSkipTo_ClampsBelowOne(t *testing.T) {
	l := New()
	if err := l.Replace(Album, "abc", albumTracks(3)); err != nil {
		t.Fatal(err)
	}

	cur, err := l.SkipTo(-2)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Position != 1 {
		t.Errorf("SkipTo(-2) landed on %d, want 1", cur.Position)
	}
}

func TestSkipTo_UnplayableIsNoOp(t *testing.T) {
	l := New()
	tracks := albumTracks(3)
	tracks[1].Streamable = false
	if err := l.Replace(Playlist, "55", tracks); err != nil {
		t.Fatal(err)
	}
	if _, err := l.SkipTo(1); err != nil {
		t.Fatal(err)
	}

	_, err := l.SkipTo(2)
	if !errors.Is(err, ErrUnplayable) {
		t.Fatalf("SkipTo(2) err = %v, want ErrUnplayable", err)
	}
	// Cursor unchanged.
	if cur := l.Current(); cur == nil || cur.Position != 1 {
		t.Errorf("cursor moved on failed skip: %+v", cur)
	}
}

func TestSkipTo_MissingPosition(t *testing.T) {
	l := New()
	if err := l.Replace(Album, "abc", albumTracks(3)); err != nil {
		t.Fatal(err)
	}

	if _, err := l.SkipTo(9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SkipTo(9) err = %v, want ErrNotFound", err)
	}
}

func TestAdvanceNext_PlaylistGaps(t *testing.T) {
	l := New()
	tracks := []Track{
		{ID: 1, Position: 1, Streamable: true},
		{ID: 2, Position: 4, Streamable: true},
		{ID: 3, Position: 9, Streamable: true},
	}
	if err := l.Replace(Playlist, "55", tracks); err != nil {
		t.Fatal(err)
	}
	if _, err := l.SkipTo(1); err != nil {
		t.Fatal(err)
	}

	next := l.AdvanceNext()
	if next == nil || next.Position != 4 {
		t.Fatalf("AdvanceNext() = %+v, want position 4", next)
	}
	next = l.AdvanceNext()
	if next == nil || next.Position != 9 {
		t.Fatalf("AdvanceNext() = %+v, want position 9", next)
	}
}

func TestAdvanceNext_TailReturnsNil(t *testing.T) {
	l := New()
	if err := l.Replace(Album, "abc", albumTracks(2)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.SkipTo(2); err != nil {
		t.Fatal(err)
	}

	if next := l.AdvanceNext(); next != nil {
		t.Errorf("AdvanceNext() at tail = %+v, want nil", next)
	}
	// State untouched.
	if cur := l.Current(); cur == nil || cur.Position != 2 {
		t.Errorf("cursor moved at tail: %+v", cur)
	}
}

func TestNextStreamable_SkipsUnplayable(t *testing.T) {
	l := New()
	tracks := albumTracks(3)
	if err := l.Replace(Playlist, "55", tracks); err != nil {
		t.Fatal(err)
	}
	if _, err := l.SkipTo(1); err != nil {
		t.Fatal(err)
	}
	l.MarkUnplayable(101) // position 2

	next := l.NextStreamable()
	if next == nil || next.Position != 3 {
		t.Fatalf("NextStreamable() = %+v, want position 3", next)
	}
}

func TestFindByID_FirstMatchWins(t *testing.T) {
	l := New()
	tracks := []Track{
		{ID: 7, Position: 1, Streamable: true},
		{ID: 8, Position: 2, Streamable: true},
		{ID: 7, Position: 3, Streamable: true}, // playlists can repeat tracks
	}
	if err := l.Replace(Playlist, "55", tracks); err != nil {
		t.Fatal(err)
	}

	pos, ok := l.FindByID(7)
	if !ok || pos != 1 {
		t.Errorf("FindByID(7) = %d, %v; want 1, true", pos, ok)
	}
	if _, ok := l.FindByID(99); ok {
		t.Error("FindByID(99) found a track")
	}
}

func TestClearStreamURLs(t *testing.T) {
	l := New()
	tracks := albumTracks(2)
	if err := l.Replace(Album, "abc", tracks); err != nil {
		t.Fatal(err)
	}
	cur, err := l.SkipTo(1)
	if err != nil {
		t.Fatal(err)
	}
	cur.StreamURL = "https://streaming.example.com/signed"

	l.ClearStreamURLs()
	if got := l.Current().StreamURL; got != "" {
		t.Errorf("StreamURL = %q after clear", got)
	}
}
