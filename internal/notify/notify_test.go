package notify

import (
	"testing"

	"github.com/llehouerou/quartz/internal/playback"
	"github.com/llehouerou/quartz/internal/queue"
)

func TestUrgencyValues(t *testing.T) {
	// Verify urgency constants match D-Bus spec
	if UrgencyLow != 0 {
		t.Errorf("UrgencyLow = %d, want 0", UrgencyLow)
	}
	if UrgencyNormal != 1 {
		t.Errorf("UrgencyNormal = %d, want 1", UrgencyNormal)
	}
	if UrgencyCritical != 2 {
		t.Errorf("UrgencyCritical = %d, want 2", UrgencyCritical)
	}
}

type recordingNotifier struct {
	sent   []Notification
	nextID uint32
}

func (r *recordingNotifier) Notify(n Notification) (uint32, error) {
	r.sent = append(r.sent, n)
	r.nextID++
	return r.nextID, nil
}

func (r *recordingNotifier) Close(_ uint32) error { return nil }

func TestWatch_TrackChangesReplacePrevious(t *testing.T) {
	bus := playback.NewBroadcaster()
	sub := bus.Subscribe()
	rec := &recordingNotifier{}

	done := make(chan struct{})
	go func() {
		Watch(sub, rec)
		close(done)
	}()

	bus.Publish(playback.CurrentTrackEvent{Track: queue.Track{Title: "One", Artist: "Band", Album: "LP"}})
	bus.Publish(playback.CurrentTrackEvent{Track: queue.Track{Title: "Two", Artist: "Band", Album: "LP"}})
	bus.Publish(playback.PositionEvent{})
	bus.Close()
	<-done

	if len(rec.sent) != 2 {
		t.Fatalf("notifications = %d, want 2", len(rec.sent))
	}
	if rec.sent[0].ReplacesID != 0 {
		t.Errorf("first notification ReplacesID = %d, want 0", rec.sent[0].ReplacesID)
	}
	if rec.sent[1].ReplacesID != 1 {
		t.Errorf("second notification ReplacesID = %d, want 1", rec.sent[1].ReplacesID)
	}
	if rec.sent[1].Title != "Two" {
		t.Errorf("title = %q", rec.sent[1].Title)
	}
}

func TestWatch_ErrorsAreNotified(t *testing.T) {
	bus := playback.NewBroadcaster()
	sub := bus.Subscribe()
	rec := &recordingNotifier{}

	done := make(chan struct{})
	go func() {
		Watch(sub, rec)
		close(done)
	}()

	bus.Publish(playback.ErrorEvent{Kind: playback.ErrorStreamURL, Message: "track 42 is not streamable"})
	bus.Close()
	<-done

	if len(rec.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(rec.sent))
	}
	if rec.sent[0].Title != "Playback error" || rec.sent[0].Urgency != UrgencyNormal {
		t.Errorf("notification = %+v", rec.sent[0])
	}
}
