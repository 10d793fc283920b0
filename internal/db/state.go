package db

import (
	"database/sql"
	"fmt"
	"time"
)

// The watermark lives in a single keyed row of pipeline_state so the
// destination file fully describes how far it has been loaded.
const lastLoadedDateKey = "last_loaded_date"

// StateBackend implements the watermark persistence contract of
// internal/state against the pipeline_state table.
type StateBackend struct {
	db *DB
}

// NewStateBackend creates a watermark backend over the given database
func NewStateBackend(database *DB) *StateBackend {
	return &StateBackend{db: database}
}

// GetLastLoadedDate reads the persisted watermark.
// Returns ok=false if no watermark row exists yet.
func (b *StateBackend) GetLastLoadedDate() (time.Time, bool, error) {
	var value string

	query := "SELECT value FROM pipeline_state WHERE key = ?"
	err := b.db.QueryRow(query, lastLoadedDateKey).Scan(&value)

	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, err
	}

	date, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt watermark value %q: %w", value, err)
	}

	return date, true, nil
}

// SetLastLoadedDate overwrites the watermark. The write runs in its own
// transaction so a crash can never leave a torn value.
func (b *StateBackend) SetLastLoadedDate(date time.Time) error {
	return b.db.WithTransaction(func(tx *Tx) error {
		query := `
			INSERT INTO pipeline_state (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`

		_, err := tx.Exec(query, lastLoadedDateKey, date.Format(time.DateOnly), time.Now().UTC())
		return err
	})
}

// Clear removes the watermark row entirely
func (b *StateBackend) Clear() error {
	_, err := b.db.Exec("DELETE FROM pipeline_state WHERE key = ?", lastLoadedDateKey)
	return err
}
