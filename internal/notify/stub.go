//go:build !linux

package notify

// New returns a no-op notifier; desktop notifications are only wired up on
// Linux.
func New() (Notifier, error) {
	return &stubNotifier{}, nil
}

type stubNotifier struct{}

func (*stubNotifier) Notify(_ Notification) (uint32, error) { return 0, nil }

func (*stubNotifier) Close(_ uint32) error { return nil }
