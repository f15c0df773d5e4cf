//go:build !linux

package notify

// stubNotifier reports every notification as undeliverable.
type stubNotifier struct{}

// New returns a notifier that always fails on non-Linux platforms.
// Desktop notifications are only supported on Linux via D-Bus.
func New(_ Options) Notifier {
	return stubNotifier{}
}

func (stubNotifier) Notify(_ Notification) (uint32, error) {
	return 0, ErrUnavailable
}
