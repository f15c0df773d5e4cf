package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/notibus/internal/notification"
	"github.com/llehouerou/notibus/internal/receiver"
	"github.com/llehouerou/notibus/internal/recipients"
)

func openTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	s, err := Open(":memory:", maxEntries)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t, 0)
	at := time.UnixMilli(1_700_000_000_000)

	n := notification.New("Build Status", "CI pipeline completed",
		notification.WithRecipients(recipients.Groups([]string{"developers"})),
	)
	require.NoError(t, s.Record(receiver.Record{
		ReceivedAt:     at,
		Sender:         ":1.42",
		Notification:   n,
		Outcome:        receiver.OutcomeDelivered,
		NotificationID: 7,
	}))
	require.NoError(t, s.Record(receiver.Record{
		ReceivedAt:   at.Add(time.Second),
		Notification: n,
		Outcome:      receiver.OutcomeFailed,
		Err:          errors.New("service unavailable"),
	}))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "failed", entries[0].Outcome)
	assert.Equal(t, "service unavailable", entries[0].Error)
	assert.Zero(t, entries[0].NotificationID)
	assert.Empty(t, entries[0].Sender)

	got := entries[1]
	assert.Equal(t, at, got.ReceivedAt)
	assert.Equal(t, ":1.42", got.Sender)
	assert.Equal(t, "Build Status", got.Title)
	assert.Equal(t, "CI pipeline completed", got.Body)
	assert.Equal(t, "normal", got.Urgency)
	assert.Equal(t, recipients.Groups([]string{"developers"}), recipients.Decode(got.Recipients))
	assert.Equal(t, "delivered", got.Outcome)
	assert.Equal(t, uint32(7), got.NotificationID)
	assert.Empty(t, got.Error)
}

func TestRecordMalformed(t *testing.T) {
	s := openTestStore(t, 0)

	require.NoError(t, s.Record(receiver.Record{
		ReceivedAt: time.Now(),
		Outcome:    receiver.OutcomeMalformed,
		Err:        errors.New("malformed notification signal: 1 arguments"),
	}))

	entries, err := s.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "malformed", entries[0].Outcome)
	assert.Empty(t, entries[0].Title)
	assert.Empty(t, entries[0].Recipients)
}

func TestRecordTrimsToMaxEntries(t *testing.T) {
	s := openTestStore(t, 3)

	for i := range 5 {
		n := notification.New(string(rune('a'+i)), "body")
		require.NoError(t, s.Record(receiver.Record{
			ReceivedAt:   time.Now(),
			Notification: n,
			Outcome:      receiver.OutcomeRejected,
		}))
	}

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e", entries[0].Title)
	assert.Equal(t, "c", entries[2].Title)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	s, err := Open(path, 10)
	require.NoError(t, err)
	defer s.Close()

	entries, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
