// Package sender publishes notifications onto the bus.
package sender

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/llehouerou/notibus/internal/bus"
	"github.com/llehouerou/notibus/internal/notification"
	"github.com/llehouerou/notibus/internal/recipients"
)

// AdminIcon is the default icon for PublishToAdmins.
const AdminIcon = "security-high"

// ID identifies a published notification in sender-side logs.
// It is not transmitted.
type ID = uuid.UUID

// ErrSend is wrapped by every SendError.
var ErrSend = errors.New("send notification failed")

// SendError reports that a notification could not be put on the bus.
type SendError struct {
	Title string
	Err   error
}

func (e *SendError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("send notification: %v", e.Err)
	}
	return fmt.Sprintf("send %q: %v", e.Title, e.Err)
}

func (e *SendError) Unwrap() []error {
	return []error{ErrSend, e.Err}
}

// Publisher emits notification signals. It holds no state besides its
// emitter and is safe for concurrent use if the emitter is.
type Publisher struct {
	emitter bus.Emitter
	logger  *slog.Logger
}

// New returns a Publisher that emits through e.
func New(e bus.Emitter, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{emitter: e, logger: logger}
}

// Dial connects to the given bus and returns a Publisher using it along
// with a function that closes the connection.
func Dial(kind bus.Kind, logger *slog.Logger) (*Publisher, func() error, error) {
	conn, err := bus.Connect(kind)
	if err != nil {
		return nil, nil, &SendError{Err: err}
	}
	return New(conn, logger), conn.Close, nil
}

// Publish emits n as a single signal. Delivery is fire-and-forget and
// failures are not retried.
func (p *Publisher) Publish(n notification.Notification) (ID, error) {
	sig := bus.Signal{
		Title:      n.Title,
		Body:       n.Body,
		Urgency:    string(n.Urgency),
		Icon:       n.Icon,
		Timeout:    n.Timeout,
		Recipients: n.Recipients.Encode(),
	}
	if err := bus.Emit(p.emitter, sig); err != nil {
		return uuid.Nil, &SendError{Title: n.Title, Err: err}
	}

	id := uuid.New()
	p.logger.Debug("notification sent",
		"notification_id", id,
		"title", n.Title,
		"recipients", n.Recipients.String(),
	)
	return id, nil
}

// PublishToEveryone publishes to all sessions.
func (p *Publisher) PublishToEveryone(title, body string, opts ...notification.Option) (ID, error) {
	return p.publishTo(recipients.Everyone(), title, body, opts)
}

// PublishToAdmins publishes to admin sessions. The icon defaults to
// AdminIcon unless opts set one.
func (p *Publisher) PublishToAdmins(title, body string, opts ...notification.Option) (ID, error) {
	opts = append([]notification.Option{notification.WithIcon(AdminIcon)}, opts...)
	return p.publishTo(recipients.AdminsOnly(), title, body, opts)
}

// PublishToUsers publishes to sessions owned by the named users.
func (p *Publisher) PublishToUsers(users []string, title, body string, opts ...notification.Option) (ID, error) {
	return p.publishTo(recipients.Users(users), title, body, opts)
}

// PublishToGroups publishes to sessions whose user is in one of groups.
func (p *Publisher) PublishToGroups(groups []string, title, body string, opts ...notification.Option) (ID, error) {
	return p.publishTo(recipients.Groups(groups), title, body, opts)
}

func (p *Publisher) publishTo(
	r recipients.Recipients,
	title, body string,
	opts []notification.Option,
) (ID, error) {
	all := make([]notification.Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, notification.WithRecipients(r))
	return p.Publish(notification.New(title, body, all...))
}
