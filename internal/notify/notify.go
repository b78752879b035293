// Package notify raises desktop notifications for playback activity.
package notify

// Urgency levels, numbered per the freedesktop notification spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification is one popup. A zero ReplacesID opens a new popup; a
// previous id replaces it in place, which is what track skips want.
type Notification struct {
	Title      string
	Body       string
	Icon       string // icon name or image path
	Timeout    int32  // ms; -1 server default, 0 sticky
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier delivers notifications. The D-Bus implementation degrades to a
// no-op when no session bus is reachable, so callers never branch on it.
type Notifier interface {
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}
