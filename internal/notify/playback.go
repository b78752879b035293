package notify

import (
	"fmt"

	"github.com/llehouerou/quartz/internal/playback"
)

const trackNotificationTimeout = 5000 // ms

// Watch consumes a bus subscription and raises a desktop notification for
// every track change and playback error. Each track notification replaces
// the previous one so skipping through a queue does not stack popups.
// Returns when the subscription closes.
func Watch(sub *playback.Subscription, notifier Notifier) {
	var lastID uint32

	for ev := range sub.Events() {
		switch ev := ev.(type) {
		case playback.CurrentTrackEvent:
			id, err := notifier.Notify(Notification{
				Title:      ev.Track.Title,
				Body:       fmt.Sprintf("%s · %s", ev.Track.Artist, ev.Track.Album),
				Icon:       "audio-x-generic",
				Timeout:    trackNotificationTimeout,
				ReplacesID: lastID,
				Urgency:    UrgencyLow,
			})
			if err == nil && id != 0 {
				lastID = id
			}

		case playback.ErrorEvent:
			_, _ = notifier.Notify(Notification{
				Title:   "Playback error",
				Body:    ev.Message,
				Icon:    "dialog-error",
				Timeout: trackNotificationTimeout,
				Urgency: UrgencyNormal,
			})
		}
	}
}
