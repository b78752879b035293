package playback

import (
	"encoding/json"
	"fmt"
)

// Bound on the control channel. Full-channel sends block, which throttles
// key-mash storms at the surface instead of flooding the engine.
const commandBufferSize = 10

// Command is a control request for the engine. Every surface enqueues
// through the same Controls handle; the engine consumes in enqueue order.
type Command interface{ isCommand() }

type (
	// Play drives the pipeline to Playing without touching the queue.
	Play struct{}
	// Pause drives the pipeline to Paused without touching the queue.
	Pause struct{}
	// PlayPause toggles between Playing and Paused.
	PlayPause struct{}
	// Stop drives the pipeline back to Ready.
	Stop struct{}
	// Quit saves a session snapshot and terminates the engine.
	Quit struct{}
	// Next skips forward to the next playable track.
	Next struct{}
	// Previous restarts the current track when more than a second in,
	// otherwise skips back one track.
	Previous struct{}
	// SkipToIndex skips to an explicit queue position.
	SkipToIndex struct {
		Position int `json:"position"`
	}
	// SkipToTrackID skips to the first queue entry with the given track id.
	SkipToTrackID struct {
		TrackID int `json:"track_id"`
	}
	// JumpForward seeks ahead ten seconds, clamped to the duration.
	JumpForward struct{}
	// JumpBackward seeks back ten seconds, clamped to zero.
	JumpBackward struct{}
	// PlayAlbum replaces the queue with an album and starts playback.
	PlayAlbum struct {
		AlbumID string `json:"album_id"`
	}
	// PlayTrack replaces the queue with a single track and starts playback.
	PlayTrack struct {
		TrackID int `json:"track_id"`
	}
	// PlayPlaylist replaces the queue with a playlist and starts playback.
	PlayPlaylist struct {
		PlaylistID int64 `json:"playlist_id"`
	}
	// PlayURI parses a streaming web link and plays the entity it names.
	PlayURI struct {
		URL string `json:"url"`
	}
)

func (Play) isCommand()          {}
func (Pause) isCommand()         {}
func (PlayPause) isCommand()     {}
func (Stop) isCommand()          {}
func (Quit) isCommand()          {}
func (Next) isCommand()          {}
func (Previous) isCommand()      {}
func (SkipToIndex) isCommand()   {}
func (SkipToTrackID) isCommand() {}
func (JumpForward) isCommand()   {}
func (JumpBackward) isCommand()  {}
func (PlayAlbum) isCommand()     {}
func (PlayTrack) isCommand()     {}
func (PlayPlaylist) isCommand()  {}
func (PlayURI) isCommand()       {}

// Controls is the write end of the control channel. Cheap to copy around;
// every surface holds one.
type Controls struct {
	ch chan Command
}

// NewControls creates the bounded control channel.
func NewControls() Controls {
	return Controls{ch: make(chan Command, commandBufferSize)}
}

// Send enqueues one command. Blocks while the channel is full.
func (c Controls) Send(cmd Command) {
	c.ch <- cmd
}

// SendUntil enqueues one command, abandoning the attempt when cancel
// closes first. Reports whether the command was enqueued. Surfaces that
// outlive the engine use this so a full channel cannot park them forever.
func (c Controls) SendUntil(cancel <-chan struct{}, cmd Command) bool {
	select {
	case c.ch <- cmd:
		return true
	case <-cancel:
		return false
	}
}

// Commands exposes the read end. Only the engine loop should consume it.
func (c Controls) Commands() <-chan Command {
	return c.ch
}

// commandEnvelope is the websocket wire form of a Command.
type commandEnvelope struct {
	Type       string `json:"type"`
	Position   int    `json:"position,omitempty"`
	TrackID    int    `json:"track_id,omitempty"`
	AlbumID    string `json:"album_id,omitempty"`
	PlaylistID int64  `json:"playlist_id,omitempty"`
	URL        string `json:"url,omitempty"`
}

// MarshalCommand encodes a command as a JSON object with a "type"
// discriminator, the same convention events use.
func MarshalCommand(cmd Command) ([]byte, error) {
	env := commandEnvelope{}
	switch c := cmd.(type) {
	case Play:
		env.Type = "play"
	case Pause:
		env.Type = "pause"
	case PlayPause:
		env.Type = "play_pause"
	case Stop:
		env.Type = "stop"
	case Quit:
		env.Type = "quit"
	case Next:
		env.Type = "next"
	case Previous:
		env.Type = "previous"
	case SkipToIndex:
		env.Type = "skip_to_index"
		env.Position = c.Position
	case SkipToTrackID:
		env.Type = "skip_to_track_id"
		env.TrackID = c.TrackID
	case JumpForward:
		env.Type = "jump_forward"
	case JumpBackward:
		env.Type = "jump_backward"
	case PlayAlbum:
		env.Type = "play_album"
		env.AlbumID = c.AlbumID
	case PlayTrack:
		env.Type = "play_track"
		env.TrackID = c.TrackID
	case PlayPlaylist:
		env.Type = "play_playlist"
		env.PlaylistID = c.PlaylistID
	case PlayURI:
		env.Type = "play_uri"
		env.URL = c.URL
	default:
		return nil, fmt.Errorf("playback: unknown command %T", cmd)
	}
	return json.Marshal(env)
}

// UnmarshalCommand decodes a websocket command envelope.
func UnmarshalCommand(data []byte) (Command, error) {
	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("playback: decode command: %w", err)
	}
	switch env.Type {
	case "play":
		return Play{}, nil
	case "pause":
		return Pause{}, nil
	case "play_pause":
		return PlayPause{}, nil
	case "stop":
		return Stop{}, nil
	case "quit":
		return Quit{}, nil
	case "next":
		return Next{}, nil
	case "previous":
		return Previous{}, nil
	case "skip_to_index":
		return SkipToIndex{Position: env.Position}, nil
	case "skip_to_track_id":
		return SkipToTrackID{TrackID: env.TrackID}, nil
	case "jump_forward":
		return JumpForward{}, nil
	case "jump_backward":
		return JumpBackward{}, nil
	case "play_album":
		return PlayAlbum{AlbumID: env.AlbumID}, nil
	case "play_track":
		return PlayTrack{TrackID: env.TrackID}, nil
	case "play_playlist":
		return PlayPlaylist{PlaylistID: env.PlaylistID}, nil
	case "play_uri":
		return PlayURI{URL: env.URL}, nil
	default:
		return nil, fmt.Errorf("playback: unknown command type %q", env.Type)
	}
}
