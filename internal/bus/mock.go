package bus

import (
	"errors"
	"sync"

	"github.com/godbus/dbus/v5"
)

// MockSender is the unique name the Mock reports as signal sender.
const MockSender = ":1.1"

// Emitted is a signal recorded by Mock.
type Emitted struct {
	Path dbus.ObjectPath
	Name string
	Body []interface{}
}

// Mock is an in-memory Conn for tests. Emitted signals are recorded and
// delivered to every registered signal channel.
type Mock struct {
	mu       sync.Mutex
	emitted  []Emitted
	channels []chan<- *dbus.Signal
	matches  int
	emitErr  error
	matchErr error
	closed   bool
}

// NewMock creates a connected mock bus.
func NewMock() *Mock {
	return &Mock{}
}

// SetEmitError makes subsequent Emit calls fail with err.
func (m *Mock) SetEmitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitErr = err
}

// SetMatchError makes subsequent AddMatchSignal calls fail with err.
func (m *Mock) SetMatchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchErr = err
}

func (m *Mock) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("dbus: connection closed by user")
	}
	if m.emitErr != nil {
		err := m.emitErr
		m.mu.Unlock()
		return err
	}
	m.emitted = append(m.emitted, Emitted{Path: path, Name: name, Body: values})
	m.mu.Unlock()

	m.Deliver(&dbus.Signal{Sender: MockSender, Path: path, Name: name, Body: values})
	return nil
}

// Deliver hands sig to every registered channel, as if it arrived from
// another peer.
func (m *Mock) Deliver(sig *dbus.Signal) {
	m.mu.Lock()
	channels := append([]chan<- *dbus.Signal(nil), m.channels...)
	m.mu.Unlock()

	for _, ch := range channels {
		ch <- sig
	}
}

// Emitted returns a copy of every signal emitted so far.
func (m *Mock) Emitted() []Emitted {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Emitted(nil), m.emitted...)
}

// Matches returns the number of active match rules.
func (m *Mock) Matches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matches
}

func (m *Mock) AddMatchSignal(_ ...dbus.MatchOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.matchErr != nil {
		return m.matchErr
	}
	m.matches++
	return nil
}

func (m *Mock) RemoveMatchSignal(_ ...dbus.MatchOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.matches > 0 {
		m.matches--
	}
	return nil
}

func (m *Mock) Signal(ch chan<- *dbus.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, ch)
}

func (m *Mock) RemoveSignal(ch chan<- *dbus.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.channels {
		if c == ch {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			return
		}
	}
}

// Disconnect simulates losing the bus: every registered channel is closed.
func (m *Mock) Disconnect() {
	m.mu.Lock()
	channels := m.channels
	m.channels = nil
	m.mu.Unlock()

	for _, ch := range channels {
		close(ch)
	}
}

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Disconnect()
	return nil
}
