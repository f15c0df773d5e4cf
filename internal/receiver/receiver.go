// Package receiver listens for notification signals and shows the ones
// addressed to the current session.
package receiver

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/llehouerou/notibus/internal/bus"
	"github.com/llehouerou/notibus/internal/identity"
	"github.com/llehouerou/notibus/internal/notification"
	"github.com/llehouerou/notibus/internal/notify"
	"github.com/llehouerou/notibus/internal/recipients"
)

// State is the lifecycle state of a Listener.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	// ErrBusClosed is returned by Run when the event stream ends because
	// the bus connection was lost.
	ErrBusClosed = errors.New("notification bus closed")
	// ErrAlreadyStarted is returned by Run on a listener that is not in
	// StateCreated.
	ErrAlreadyStarted = errors.New("listener already started")
)

// Recorder stores the outcome of each handled event.
type Recorder interface {
	Record(r Record) error
}

// Options configures a Listener. All fields are optional.
type Options struct {
	Logger   *slog.Logger
	Recorder Recorder
	Now      func() time.Time
}

// Listener filters incoming notifications against a fixed identity and
// forwards the authorized ones to a desktop sink. Events are handled one
// at a time, in delivery order.
type Listener struct {
	identity identity.Context
	sink     notify.Notifier
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	state    atomic.Int32
}

// New creates a Listener in StateCreated.
func New(id identity.Context, sink notify.Notifier, opts Options) *Listener {
	l := &Listener{
		identity: id,
		sink:     sink,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		now:      opts.Now,
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Identity returns the identity notifications are matched against.
func (l *Listener) Identity() identity.Context {
	return l.identity
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Serve subscribes to notification signals on conn and runs until ctx is
// cancelled or the connection is lost. The subscription is released on
// return; conn itself is left open.
func (l *Listener) Serve(ctx context.Context, conn bus.Conn) error {
	sub, err := bus.Subscribe(conn)
	if err != nil {
		return err
	}
	defer sub.Close()

	l.logger.Info("listening for notifications",
		"interface", bus.Interface,
		"user", l.identity.User,
		"groups", l.identity.Groups,
		"admin", l.identity.IsAdmin,
	)
	return l.Run(ctx, sub.Events)
}

// Run handles events until ctx is cancelled (returns nil) or events is
// closed (returns ErrBusClosed). A listener runs at most once.
func (l *Listener) Run(ctx context.Context, events <-chan bus.Event) error {
	if !l.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	defer l.state.Store(int32(StateStopped))

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("shutting down")
			return nil
		case ev, ok := <-events:
			if !ok {
				l.logger.Error("notification bus closed")
				return ErrBusClosed
			}
			l.HandleEvent(ev)
		}
	}
}

// HandleEvent decodes, filters and dispatches a single event. It never
// panics on bad input and its result does not affect later events.
func (l *Listener) HandleEvent(ev bus.Event) Outcome {
	rec := Record{ReceivedAt: l.now(), Sender: ev.Sender}
	defer func() { l.record(rec) }()

	sig, err := bus.ParseSignal(ev.Body)
	if err != nil {
		l.logger.Warn("dropping malformed signal", "sender", ev.Sender, "error", err)
		rec.Outcome, rec.Err = OutcomeMalformed, err
		return rec.Outcome
	}

	scope, err := recipients.Parse(sig.Recipients)
	if err != nil {
		l.logger.Warn("unreadable recipients, delivering to everyone",
			"sender", ev.Sender,
			"recipients", sig.Recipients,
			"error", err,
		)
		scope = recipients.Everyone()
	}

	n := notification.New(sig.Title, sig.Body,
		notification.WithUrgency(sig.Urgency),
		notification.WithIcon(sig.Icon),
		notification.WithTimeout(sig.Timeout),
		notification.WithRecipients(scope),
	)
	rec.Notification = n

	log := l.logger.With(
		"title", n.Title,
		"urgency", string(n.Urgency),
		"recipients", n.Recipients.String(),
	)
	log.Debug("signal received", "sender", ev.Sender, "body", n.Body, "icon", n.Icon, "timeout", n.Timeout)

	if !n.Recipients.Matches(l.identity) {
		log.Info("not addressed to this session", "user", l.identity.User)
		rec.Outcome = OutcomeRejected
		return rec.Outcome
	}

	id, err := l.sink.Notify(desktopNotification(n))
	if err != nil {
		log.Error("display notification", "error", err)
		rec.Outcome, rec.Err = OutcomeFailed, err
		return rec.Outcome
	}

	log.Info("notification displayed", "notification_id", id)
	rec.Outcome, rec.NotificationID = OutcomeDelivered, id
	return rec.Outcome
}

func (l *Listener) record(rec Record) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.Record(rec); err != nil {
		l.logger.Warn("record delivery", "error", err)
	}
}

func desktopNotification(n notification.Notification) notify.Notification {
	return notify.Notification{
		Title:   n.Title,
		Body:    n.Body,
		Icon:    n.Icon,
		Timeout: n.Timeout,
		Urgency: urgencyLevel(n.Urgency),
	}
}

func urgencyLevel(u notification.Urgency) notify.Urgency {
	switch u {
	case notification.UrgencyLow:
		return notify.UrgencyLow
	case notification.UrgencyCritical:
		return notify.UrgencyCritical
	default:
		return notify.UrgencyNormal
	}
}
