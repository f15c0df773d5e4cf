package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Conn = (*Mock)(nil)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("system")
	require.NoError(t, err)
	assert.Equal(t, System, k)

	k, err = ParseKind("session")
	require.NoError(t, err)
	assert.Equal(t, Session, k)

	_, err = ParseKind("starter")
	assert.Error(t, err)
}

func TestConnectUnknownKind(t *testing.T) {
	_, err := Connect(Kind("bogus"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, Kind("bogus"), connErr.Kind)
}

func TestConnectUnreachableSessionBus(t *testing.T) {
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/nonexistent/notibus-test-bus")

	_, err := Connect(Session)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestEmitUsesWireOrder(t *testing.T) {
	m := NewMock()
	sig := Signal{
		Title:      "Build Status",
		Body:       "CI pipeline completed",
		Urgency:    "normal",
		Icon:       "dialog-information",
		Timeout:    5000,
		Recipients: `{"type":"groups","list":["developers"]}`,
	}

	require.NoError(t, Emit(m, sig))

	emitted := m.Emitted()
	require.Len(t, emitted, 1)
	assert.Equal(t, Path, emitted[0].Path)
	assert.Equal(t, "com.notibus.Notification.Notification", emitted[0].Name)
	assert.Equal(t, []interface{}{
		"Build Status",
		"CI pipeline completed",
		"normal",
		"dialog-information",
		int32(5000),
		`{"type":"groups","list":["developers"]}`,
	}, emitted[0].Body)
}

func TestParseSignalRoundTrip(t *testing.T) {
	sig := Signal{"t", "b", "low", "icon", -1, `{"type":"everyone","list":[]}`}

	got, err := ParseSignal(sig.Values())
	require.NoError(t, err)
	assert.Equal(t, sig, got)
}

func TestParseSignalDefaults(t *testing.T) {
	got, err := ParseSignal([]interface{}{"Hello", "World"})
	require.NoError(t, err)

	assert.Equal(t, Signal{
		Title:      "Hello",
		Body:       "World",
		Urgency:    "normal",
		Icon:       "dialog-information",
		Timeout:    5000,
		Recipients: `{"type":"everyone","list":[]}`,
	}, got)
}

func TestParseSignalCoercesFields(t *testing.T) {
	tests := []struct {
		name    string
		body    []interface{}
		timeout int32
		urgency string
	}{
		{"int64 timeout", []interface{}{"t", "b", "low", "i", int64(7000)}, 7000, "low"},
		{"uint32 timeout", []interface{}{"t", "b", "low", "i", uint32(10)}, 10, "low"},
		{"huge timeout clamps", []interface{}{"t", "b", "low", "i", int64(1) << 40}, 1<<31 - 1, "low"},
		{"huge unsigned timeout clamps", []interface{}{"t", "b", "low", "i", uint64(1) << 40}, 1<<31 - 1, "low"},
		{"variant timeout", []interface{}{"t", "b", "low", "i", dbus.MakeVariant(int32(3))}, 3, "low"},
		{"string timeout uses default", []interface{}{"t", "b", "low", "i", "3000"}, 5000, "low"},
		{"non-string urgency uses default", []interface{}{"t", "b", 2, "i", int32(1)}, 1, "normal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSignal(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.timeout, got.Timeout)
			assert.Equal(t, tt.urgency, got.Urgency)
		})
	}
}

func TestParseSignalMalformed(t *testing.T) {
	bodies := [][]interface{}{
		nil,
		{"only title"},
		{42, "body"},
		{"title", []byte("body")},
	}

	for _, body := range bodies {
		_, err := ParseSignal(body)
		assert.ErrorIs(t, err, ErrMalformed, "body %v", body)
	}
}

func receive(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "events closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestSubscriptionDeliversNotificationSignals(t *testing.T) {
	m := NewMock()
	sub, err := Subscribe(m)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, 1, m.Matches())

	m.Deliver(&dbus.Signal{Sender: ":1.9", Path: "/other", Name: "org.example.Other.Changed"})
	require.NoError(t, Emit(m, Signal{Title: "t", Body: "b"}))

	ev := receive(t, sub.Events)
	assert.Equal(t, MockSender, ev.Sender)
	assert.Equal(t, "t", ev.Body[0])
}

func TestSubscriptionClose(t *testing.T) {
	m := NewMock()
	sub, err := Subscribe(m)
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "second close is a no-op")
	assert.Equal(t, 0, m.Matches())

	select {
	case _, ok := <-sub.Events:
		assert.False(t, ok, "events should be closed")
	case <-time.After(time.Second):
		t.Fatal("events not closed after Close")
	}
}

func TestSubscriptionEndsOnDisconnect(t *testing.T) {
	m := NewMock()
	sub, err := Subscribe(m)
	require.NoError(t, err)
	defer sub.Close()

	m.Disconnect()

	select {
	case _, ok := <-sub.Events:
		assert.False(t, ok, "events should be closed")
	case <-time.After(time.Second):
		t.Fatal("events not closed after disconnect")
	}
}

func TestSubscribeMatchError(t *testing.T) {
	m := NewMock()
	m.SetMatchError(errors.New("access denied"))

	_, err := Subscribe(m)
	assert.Error(t, err)
}
