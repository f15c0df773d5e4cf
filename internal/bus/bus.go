// Package bus carries notification signals over D-Bus.
//
// A notification travels as a single broadcast signal whose arguments are
// positional:
//
//	Notification(s title, s body, s urgency, s icon, i timeout, s recipients)
//
// Receivers decode by position, so the argument order is part of the
// protocol.
package bus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	Interface = "com.notibus.Notification"
	Member    = "Notification"
	Path      = dbus.ObjectPath("/com/notibus/Notification")

	// SignalName is the fully qualified name used by Emit and seen on
	// received signals.
	SignalName = Interface + "." + Member
)

// Kind selects which message bus to connect to.
type Kind string

const (
	System  Kind = "system"
	Session Kind = "session"
)

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case System, Session:
		return k, nil
	default:
		return "", fmt.Errorf("unknown bus %q (want %q or %q)", s, System, Session)
	}
}

// ErrConnection is wrapped by every ConnectionError.
var ErrConnection = errors.New("bus connection failed")

// ConnectionError reports that the message bus could not be reached.
type ConnectionError struct {
	Kind Kind
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s bus: %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

// Emitter emits signals. *dbus.Conn satisfies it.
type Emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Conn is the subset of *dbus.Conn used by publishers and subscribers.
type Conn interface {
	Emitter
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

var _ Conn = (*dbus.Conn)(nil)

// Connect opens a private connection to the requested bus.
// The caller owns the connection and must Close it.
func Connect(kind Kind) (*dbus.Conn, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	switch kind {
	case System:
		conn, err = dbus.ConnectSystemBus()
	case Session:
		conn, err = dbus.ConnectSessionBus()
	default:
		err = fmt.Errorf("unknown bus %q", kind)
	}
	if err != nil {
		return nil, &ConnectionError{Kind: kind, Err: err}
	}
	return conn, nil
}
