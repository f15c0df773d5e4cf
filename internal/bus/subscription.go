package bus

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const eventBufferSize = 16

// Event is one raw notification signal as delivered by the bus.
type Event struct {
	Sender string
	Body   []interface{}
}

// Subscription delivers notification signals received on a connection.
// Events is closed when the subscription is closed or the connection is
// lost.
type Subscription struct {
	Events <-chan Event

	conn      Conn
	signals   chan *dbus.Signal
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func matchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember(Member),
	}
}

// Subscribe registers a match rule for notification signals on conn and
// starts forwarding them to Events.
func Subscribe(conn Conn) (*Subscription, error) {
	s := &Subscription{
		conn:    conn,
		signals: make(chan *dbus.Signal, eventBufferSize),
		events:  make(chan Event, eventBufferSize),
		done:    make(chan struct{}),
	}
	s.Events = s.events

	// Register the channel first so nothing matched is missed.
	conn.Signal(s.signals)
	if err := conn.AddMatchSignal(matchOptions()...); err != nil {
		conn.RemoveSignal(s.signals)
		return nil, fmt.Errorf("add signal match: %w", err)
	}

	go s.forward()
	return s, nil
}

func (s *Subscription) forward() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case sig, ok := <-s.signals:
			if !ok {
				return
			}
			// The connection may carry other signals routed to this channel.
			if sig.Name != SignalName {
				continue
			}
			select {
			case s.events <- Event{Sender: sig.Sender, Body: sig.Body}:
			case <-s.done:
				return
			}
		}
	}
}

// Close removes the match rule and stops delivery. It is safe to call more
// than once. The underlying connection is left open.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.conn.RemoveSignal(s.signals)
		s.closeErr = s.conn.RemoveMatchSignal(matchOptions()...)
		close(s.done)
	})
	return s.closeErr
}
