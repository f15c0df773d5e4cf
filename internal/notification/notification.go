// Package notification defines the payload carried from sender to receivers.
package notification

import "github.com/llehouerou/notibus/internal/recipients"

// Urgency is the freedesktop urgency name.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

const (
	DefaultIcon    = "dialog-information"
	DefaultTimeout = int32(5000) // ms
)

// ParseUrgency maps s to an Urgency. Unknown values become UrgencyNormal.
func ParseUrgency(s string) Urgency {
	switch u := Urgency(s); u {
	case UrgencyLow, UrgencyNormal, UrgencyCritical:
		return u
	default:
		return UrgencyNormal
	}
}

// Notification is an immutable notification payload.
type Notification struct {
	Title      string
	Body       string
	Urgency    Urgency
	Icon       string
	Timeout    int32 // ms, 0 = never expire; forwarded to the sink unchecked
	Recipients recipients.Recipients
}

// Option customizes a Notification built by New.
type Option func(*Notification)

// WithUrgency sets the urgency. Unknown names are normalized to normal.
func WithUrgency(u string) Option {
	return func(n *Notification) { n.Urgency = ParseUrgency(u) }
}

// WithIcon sets the icon name or path.
func WithIcon(icon string) Option {
	return func(n *Notification) { n.Icon = icon }
}

// WithTimeout sets the expiry timeout in milliseconds.
func WithTimeout(ms int32) Option {
	return func(n *Notification) { n.Timeout = ms }
}

// WithRecipients sets the audience. A zero Recipients means everyone.
func WithRecipients(r recipients.Recipients) Option {
	return func(n *Notification) { n.Recipients = r }
}

// New builds a Notification with defaults applied for anything not set.
func New(title, body string, opts ...Option) Notification {
	n := Notification{
		Title:   title,
		Body:    body,
		Urgency: UrgencyNormal,
		Icon:    DefaultIcon,
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&n)
	}
	if n.Recipients.Type == "" {
		n.Recipients = recipients.Everyone()
	}
	return n
}
