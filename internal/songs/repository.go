package songs

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeFormat matches the strftime default the schema uses.
const timeFormat = "2006-01-02T15:04:05Z"

// Repository defines the interface for song metadata persistence.
type Repository interface {
	Create(ctx context.Context, song *Song) error
	List(ctx context.Context) ([]Song, error)

	// TrimToCount deletes the oldest rows beyond max and returns their
	// ids so the caller can delete the audio files too.
	TrimToCount(ctx context.Context, max int) ([]string, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed song repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a song row. CreatedAt is written explicitly rather
// than left to the column default: the adoption path backdates rows to
// the audio file's modification time.
func (r *SQLiteRepository) Create(ctx context.Context, song *Song) error {
	const query = `INSERT INTO songs (id, url, prompt, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		song.ID, song.URL, nullStr(song.Prompt), nullInt(song.DurationMS),
		song.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("inserting song %s: %w", song.ID, err)
	}
	return nil
}

// List returns all songs, oldest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Song, error) {
	const query = `SELECT id, url, prompt, duration_ms, created_at
		FROM songs ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	var list []Song
	for rows.Next() {
		s, err := scanSongRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song row: %w", err)
		}
		list = append(list, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating song rows: %w", err)
	}
	return list, nil
}

// TrimToCount deletes every row beyond the newest max, oldest first.
// Same-second inserts tie-break on rowid, so insertion order wins.
func (r *SQLiteRepository) TrimToCount(ctx context.Context, max int) ([]string, error) {
	if max < 1 {
		return nil, fmt.Errorf("max must be at least 1, got %d", max)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning trim: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	const victims = `SELECT id FROM songs
		ORDER BY created_at DESC, rowid DESC LIMIT -1 OFFSET ?`
	rows, err := tx.QueryContext(ctx, victims, max)
	if err != nil {
		return nil, fmt.Errorf("selecting trim victims: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning trim victim: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating trim victims: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, nil
	}

	const del = `DELETE FROM songs WHERE id IN (SELECT id FROM songs
		ORDER BY created_at DESC, rowid DESC LIMIT -1 OFFSET ?)`
	if _, err := tx.ExecContext(ctx, del, max); err != nil {
		return nil, fmt.Errorf("deleting trimmed songs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing trim: %w", err)
	}
	return ids, nil
}

// scanSongRow scans a song from a Rows cursor.
func scanSongRow(rows *sql.Rows) (*Song, error) {
	var s Song
	var prompt sql.NullString
	var durationMS sql.NullInt64
	var createdAt string

	if err := rows.Scan(&s.ID, &s.URL, &prompt, &durationMS, &createdAt); err != nil {
		return nil, err
	}
	if prompt.Valid {
		s.Prompt = &prompt.String
	}
	if durationMS.Valid {
		s.DurationMS = &durationMS.Int64
	}
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

// nullStr converts a *string to a sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullInt converts a *int64 to a sql.NullInt64 for nullable columns.
func nullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// parseTime parses an ISO 8601 timestamp from SQLite. Zero time is
// returned on failure, which the schema-enforced format rules out.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
