// Package notify provides desktop notifications via D-Bus.
package notify

import "errors"

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

const DefaultAppName = "notibus"

// ErrUnavailable is returned when no notification service can be reached.
var ErrUnavailable = errors.New("desktop notification service unavailable")

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Options identifies the application to the notification service.
type Options struct {
	AppName      string // app_name argument
	DesktopEntry string // desktop-entry hint
}

func (o Options) withDefaults() Options {
	if o.AppName == "" {
		o.AppName = DefaultAppName
	}
	if o.DesktopEntry == "" {
		o.DesktopEntry = o.AppName
	}
	return o
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	Notify(n Notification) (uint32, error)
}
