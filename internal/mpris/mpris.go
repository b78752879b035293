//go:build linux

package mpris

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/quartz/internal/playback"
	"github.com/llehouerou/quartz/internal/player"
)

// Adapter exposes the playback engine on the session bus as an MPRIS
// media player, so desktop media keys and applets can drive it.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(controls playback.Controls, state *playback.State) (*Adapter, error) {
	a := &Adapter{}

	rootAdapter := &rootAdapter{controls: controls}
	playerAdapter := &playerAdapter{controls: controls, state: state}

	a.server = server.NewServer("quartz", rootAdapter, playerAdapter)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	controls playback.Controls
}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	r.controls.Send(playback.Quit{})
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return true, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Quartz", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/flac", "audio/mpeg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	controls playback.Controls
	state    *playback.State
}

func (p *playerAdapter) Next() error {
	p.controls.Send(playback.Next{})
	return nil
}

func (p *playerAdapter) Previous() error {
	p.controls.Send(playback.Previous{})
	return nil
}

func (p *playerAdapter) Pause() error {
	p.controls.Send(playback.Pause{})
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.controls.Send(playback.PlayPause{})
	return nil
}

func (p *playerAdapter) Stop() error {
	p.controls.Send(playback.Stop{})
	return nil
}

func (p *playerAdapter) Play() error {
	p.controls.Send(playback.Play{})
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	// The engine exposes fixed-size jumps rather than arbitrary offsets.
	if offset >= 0 {
		p.controls.Send(playback.JumpForward{})
	} else {
		p.controls.Send(playback.JumpBackward{})
	}
	return nil
}

func (p *playerAdapter) SetPosition(_ string, _ types.Microseconds) error {
	return nil // Not supported
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	p.controls.Send(playback.PlayURI{URL: uri})
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.state.Status() {
	case player.Playing:
		return types.PlaybackStatusPlaying, nil
	case player.Paused:
		return types.PlaybackStatusPaused, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track, ok := p.state.CurrentTrack()
	if !ok {
		return types.Metadata{}, nil
	}

	return types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(track.ID)),
		Length:      types.Microseconds(track.Duration.Microseconds()),
		Title:       track.Title,
		Artist:      []string{track.Artist},
		Album:       track.Album,
		TrackNumber: track.Position,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.state.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	track, ok := p.state.CurrentTrack()
	if !ok {
		return false, nil
	}
	_, ok = p.state.NextPosition(track.Position)
	return ok, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	_, ok := p.state.CurrentTrack()
	return ok, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.state.QueueLen() > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(id int) string {
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%d", id)
}
