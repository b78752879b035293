package playback

import (
	"context"
	"time"

	"github.com/llehouerou/quartz/internal/qobuz"
	"github.com/llehouerou/quartz/internal/queue"
)

// Catalog is the remote service surface the engine consumes. qobuz.Client
// satisfies it; tests substitute a mock.
type Catalog interface {
	Login(ctx context.Context) error
	Album(ctx context.Context, id string) (*qobuz.Album, error)
	Playlist(ctx context.Context, id int64) (*qobuz.Playlist, error)
	Track(ctx context.Context, id int) (*qobuz.Track, error)
	TrackURL(ctx context.Context, trackID int, quality qobuz.Quality) (*qobuz.TrackURL, error)
	Quality() qobuz.Quality
}

var _ Catalog = (*qobuz.Client)(nil)

// SessionStore persists the single last-session snapshot.
type SessionStore interface {
	SaveSession(s Session) error
	// Session returns the saved snapshot, false when none exists.
	Session() (Session, bool, error)
	ClearSession() error
}

// Session is what survives a restart: enough to rebuild the queue and land
// on the same track at roughly the same clock.
type Session struct {
	EntityKind    string // album, playlist or track
	EntityID      string
	TrackPosition int
	Position      time.Duration
}

// albumTracks converts a catalog album into queue entries. Position is the
// disc track number.
func albumTracks(a *qobuz.Album) []queue.Track {
	if a.Tracks == nil {
		return nil
	}
	out := make([]queue.Track, 0, len(a.Tracks.Items))
	for _, t := range a.Tracks.Items {
		qt := trackEntry(t)
		qt.Position = t.TrackNumber
		if qt.Artist == "" {
			qt.Artist = a.Artist.Name
		}
		qt.Album = a.Title
		qt.AlbumID = a.ID
		out = append(out, qt)
	}
	return out
}

// playlistTracks converts a catalog playlist. Position is the 1-based index
// within the playlist, not the disc track number.
func playlistTracks(p *qobuz.Playlist) []queue.Track {
	if p.Tracks == nil {
		return nil
	}
	out := make([]queue.Track, 0, len(p.Tracks.Items))
	for i, t := range p.Tracks.Items {
		qt := trackEntry(t)
		qt.Position = i + 1
		out = append(out, qt)
	}
	return out
}

// singleTrack builds a one-entry queue at position 1.
func singleTrack(t *qobuz.Track) []queue.Track {
	qt := trackEntry(*t)
	qt.Position = 1
	return []queue.Track{qt}
}

func trackEntry(t qobuz.Track) queue.Track {
	qt := queue.Track{
		ID:         t.ID,
		Title:      t.Title,
		Duration:   time.Duration(t.Duration) * time.Second,
		Explicit:   t.ParentalWarning,
		HiRes:      t.HiResStreamable,
		Streamable: t.Streamable,
	}
	if t.Performer != nil {
		qt.Artist = t.Performer.Name
	}
	if t.Album != nil {
		qt.Album = t.Album.Title
		qt.AlbumID = t.Album.ID
		if qt.Artist == "" {
			qt.Artist = t.Album.Artist.Name
		}
	}
	return qt
}
