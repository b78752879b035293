package playback

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/queue"
)

func TestCommandWireRoundTrip(t *testing.T) {
	cmds := []Command{
		Play{},
		Pause{},
		PlayPause{},
		Stop{},
		Quit{},
		Next{},
		Previous{},
		SkipToIndex{Position: 7},
		SkipToTrackID{TrackID: 164802591},
		JumpForward{},
		JumpBackward{},
		PlayAlbum{AlbumID: "lhrak0dpdxcbc"},
		PlayTrack{TrackID: 42},
		PlayPlaylist{PlaylistID: 3551270},
		PlayURI{URL: "https://play.qobuz.com/album/abc"},
	}
	for _, cmd := range cmds {
		data, err := MarshalCommand(cmd)
		if err != nil {
			t.Fatalf("marshal %T: %v", cmd, err)
		}
		back, err := UnmarshalCommand(data)
		if err != nil {
			t.Fatalf("unmarshal %T (%s): %v", cmd, data, err)
		}
		if back != cmd {
			t.Errorf("round trip %T: got %#v", cmd, back)
		}
	}
}

func TestSendUntil_GivesUpOnCancel(t *testing.T) {
	c := NewControls()
	cancel := make(chan struct{})

	if !c.SendUntil(cancel, Play{}) {
		t.Fatal("send with buffer room should succeed")
	}
	if cmd := <-c.Commands(); cmd != (Play{}) {
		t.Fatalf("command = %#v", cmd)
	}

	// With the channel saturated a cancelled send abandons the command
	// instead of parking forever.
	for range commandBufferSize {
		c.Send(Next{})
	}
	result := make(chan bool, 1)
	go func() { result <- c.SendUntil(cancel, Play{}) }()
	close(cancel)

	select {
	case ok := <-result:
		if ok {
			t.Error("send reported success after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SendUntil still blocked after cancel")
	}
}

func TestUnmarshalCommand_Unknown(t *testing.T) {
	if _, err := UnmarshalCommand([]byte(`{"type":"dance"}`)); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := UnmarshalCommand([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestMarshalEvent_Discriminators(t *testing.T) {
	events := map[string]Event{
		"buffering":          BufferingEvent{IsBuffering: true, Percent: 40, Target: player.Playing},
		"status":             StatusEvent{Status: player.Paused},
		"position":           PositionEvent{Clock: 42500 * time.Millisecond},
		"duration":           DurationEvent{Clock: 200 * time.Second},
		"current_track":      CurrentTrackEvent{Track: queue.Track{ID: 1, Position: 1, Title: "t"}},
		"current_track_list": TrackListEvent{Kind: queue.Album, EntityID: "abc"},
		"audio_quality":      AudioQualityEvent{BitDepth: 24, SamplingRate: 96},
		"error":              ErrorEvent{Kind: ErrorCatalog, Message: "boom"},
	}
	for want, ev := range events {
		data, err := MarshalEvent(ev)
		if err != nil {
			t.Fatalf("marshal %T: %v", ev, err)
		}
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		if probe.Type != want {
			t.Errorf("type = %q, want %q", probe.Type, want)
		}
	}
}

func TestMarshalEvent_Payloads(t *testing.T) {
	data, err := MarshalEvent(PositionEvent{Clock: 42500 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	var pos struct {
		MS int64 `json:"clock_ms"`
	}
	if err := json.Unmarshal(data, &pos); err != nil {
		t.Fatal(err)
	}
	if pos.MS != 42500 {
		t.Errorf("clock_ms = %d", pos.MS)
	}

	data, err = MarshalEvent(StatusEvent{Status: player.Playing})
	if err != nil {
		t.Fatal(err)
	}
	var st struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "playing" {
		t.Errorf("status = %q", st.Status)
	}
}
