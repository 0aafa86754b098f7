package device

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultArchiveLimit = 100
	maxArchiveLimit     = 500
)

// SQLiteArchive implements Archive using SQLite.
//
// Events land in the device_events table created by the schema
// migrations.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive creates a new SQLite event archive.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteArchive: Archive instance ready for use
func NewSQLiteArchive(db *sql.DB) *SQLiteArchive {
	return &SQLiteArchive{db: db}
}

// Record inserts one press/release event.
func (a *SQLiteArchive) Record(ctx context.Context, ev Event) error {
	if ev.Type != EventPress && ev.Type != EventRelease {
		return fmt.Errorf("%w: %s", ErrNotArchivable, ev.Type)
	}
	if ev.Button < 0 {
		return fmt.Errorf("button index must not be negative")
	}

	_, err := a.db.ExecContext(ctx,
		"INSERT INTO device_events (type, button) VALUES (?, ?)",
		string(ev.Type),
		ev.Button,
	)
	if err != nil {
		return fmt.Errorf("inserting device event: %w", err)
	}

	return nil
}

// Recent returns archived events at or after since, oldest first.
// limit defaults to 100 and is clamped to 500.
func (a *SQLiteArchive) Recent(ctx context.Context, since time.Time, limit int) ([]ArchiveEntry, error) {
	if limit <= 0 {
		limit = defaultArchiveLimit
	}
	if limit > maxArchiveLimit {
		limit = maxArchiveLimit
	}

	query := `SELECT id, type, button, created_at
		 FROM device_events`
	args := make([]any, 0, 2)
	if !since.IsZero() {
		query += " WHERE created_at >= ?"
		args = append(args, since.UTC().Format(time.RFC3339))
	}
	query += " ORDER BY created_at ASC, id ASC LIMIT ?"
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying device events: %w", err)
	}
	defer rows.Close()

	entries := make([]ArchiveEntry, 0, limit)
	for rows.Next() {
		var entry ArchiveEntry
		var kind string
		var createdAt string

		if err := rows.Scan(&entry.ID, &kind, &entry.Button, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning device event: %w", err)
		}
		entry.Type = EventType(kind)

		timestamp, err := parseArchiveTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device events: %w", err)
	}

	return entries, nil
}

// Prune deletes events older than the given duration.
func (a *SQLiteArchive) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := a.db.ExecContext(ctx,
		"DELETE FROM device_events WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting device events: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseArchiveTimestamp parses a timestamp stored in SQLite.
func parseArchiveTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
