// Package history keeps a local log of the notifications a receiver has
// handled and what it decided for each.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/notibus/internal/db"
	"github.com/llehouerou/notibus/internal/receiver"
)

const (
	appName           = "notibus"
	dbFileName        = "history.db"
	DefaultMaxEntries = 1000
)

// Entry is one stored delivery decision.
type Entry struct {
	ID             int64
	ReceivedAt     time.Time
	Sender         string
	Title          string
	Body           string
	Urgency        string
	Recipients     string // wire encoding
	Outcome        string
	NotificationID uint32
	Error          string
}

// Store is a SQLite-backed delivery log. It implements receiver.Recorder.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// DefaultPath returns the history database location under the XDG data
// directory, creating parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens or creates the history database at path. maxEntries bounds the
// number of rows kept; values <= 0 use DefaultMaxEntries.
func Open(path string, maxEntries int) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases shared and serializes
	// writers.
	conn.SetMaxOpenConns(1)

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{db: conn, maxEntries: maxEntries}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores rec and trims the log to the configured size.
func (s *Store) Record(rec receiver.Record) error {
	n := rec.Notification
	var errText string
	if rec.Err != nil {
		errText = rec.Err.Error()
	}
	var notifID sql.NullInt64
	if rec.Outcome == receiver.OutcomeDelivered {
		notifID = sql.NullInt64{Int64: int64(rec.NotificationID), Valid: true}
	}
	var scope string
	if n.Recipients.Type != "" {
		scope = n.Recipients.Encode()
	}

	return db.WithTx(context.Background(), s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO deliveries
				(received_at, sender, title, body, urgency, recipients, outcome, notification_id, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ReceivedAt.UnixMilli(), db.NullString(rec.Sender), n.Title, n.Body, db.NullString(string(n.Urgency)),
			db.NullString(scope), rec.Outcome.String(), notifID, db.NullString(errText),
		)
		if err != nil {
			return fmt.Errorf("insert delivery: %w", err)
		}

		_, err = tx.Exec(`
			DELETE FROM deliveries
			WHERE id NOT IN (SELECT id FROM deliveries ORDER BY id DESC LIMIT ?)
		`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("trim deliveries: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, received_at, sender, title, body, urgency, recipients, outcome, notification_id, error
		FROM deliveries
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			receivedAt int64
			sender     sql.NullString
			urgency    sql.NullString
			scope      sql.NullString
			notifID    sql.NullInt64
			errText    sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &receivedAt, &sender, &e.Title, &e.Body, &urgency,
			&scope, &e.Outcome, &notifID, &errText,
		); err != nil {
			return nil, err
		}
		e.ReceivedAt = time.UnixMilli(receivedAt)
		e.Sender = db.NullStringValue(sender)
		e.Urgency = db.NullStringValue(urgency)
		e.Recipients = db.NullStringValue(scope)
		e.NotificationID = uint32(db.NullInt64Value(notifID)) //nolint:gosec // stored from a uint32
		e.Error = db.NullStringValue(errText)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
