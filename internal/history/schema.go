package history

import (
	"database/sql"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			received_at INTEGER NOT NULL,
			sender TEXT,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			urgency TEXT,
			recipients TEXT,
			outcome TEXT NOT NULL,
			notification_id INTEGER,
			error TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_deliveries_received_at ON deliveries(received_at);
	`)
	return err
}
