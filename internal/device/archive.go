package device

import (
	"context"
	"time"
)

// ArchiveEntry is a single persisted press/release event.
type ArchiveEntry struct {
	// ID is the auto-incremented primary key for the archive row.
	ID int64 `json:"id"`

	// Type is the event kind (PRESS or RELEASE).
	Type EventType `json:"type"`

	// Button is the button index the event was derived for.
	Button int `json:"button"`

	// CreatedAt is the timestamp the event was recorded (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Archive persists derived press/release events beyond the in-memory
// history buffer.
//
// Implementations must be thread-safe and use UTC timestamps. Snapshot
// events are never archived; they exist only as subscriber greetings.
type Archive interface {
	// Record persists one press/release event.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - ev: Event to persist (press or release only)
	//
	// Returns:
	//   - error: nil on success, ErrNotArchivable for snapshot events,
	//     otherwise the underlying persistence error
	Record(ctx context.Context, ev Event) error

	// Recent returns archived events at or after since, oldest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - since: Lower bound (zero value means no bound)
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []ArchiveEntry: Matching entries ordered by created_at ascending
	//   - error: nil on success, otherwise the underlying query error
	Recent(ctx context.Context, since time.Time, limit int) ([]ArchiveEntry, error)

	// Prune deletes entries older than the given duration.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - olderThan: Retention window (entries older than now-olderThan are deleted)
	//
	// Returns:
	//   - int64: Number of rows deleted
	//   - error: nil on success, otherwise the underlying database error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}
