package songs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/padworks/padlink/internal/infrastructure/logging"
)

// urlPrefix is the path the HTTP layer serves audio files under.
const urlPrefix = "/songs/files/"

// Library coordinates the metadata rows and the on-disk audio store.
type Library struct {
	repo  Repository
	store *Store
	max   int
	log   *logging.Logger
}

// NewLibrary creates a song library capped at maxCount songs.
func NewLibrary(repo Repository, store *Store, maxCount int, log *logging.Logger) *Library {
	return &Library{
		repo:  repo,
		store: store,
		max:   maxCount,
		log:   log.Component("songs"),
	}
}

// Save stores one uploaded song and returns its metadata row. Prompt
// and duration are optional; nil means the caller did not supply them.
func (l *Library) Save(ctx context.Context, audio io.Reader, prompt *string, durationMS *int64) (*Song, error) {
	id := uuid.NewString()

	size, err := l.store.Save(id, audio)
	if err != nil {
		return nil, err
	}

	song := &Song{
		ID:         id,
		URL:        urlPrefix + id + audioExt,
		Prompt:     prompt,
		DurationMS: durationMS,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, song); err != nil {
		if rmErr := l.store.Remove(id); rmErr != nil {
			l.log.Warn("orphaned audio after failed insert", "id", id, "error", rmErr)
		}
		return nil, err
	}

	l.log.Info("song saved", "id", id, "bytes", size)
	l.enforceCap(ctx)
	return song, nil
}

// List returns every song, oldest first.
func (l *Library) List(ctx context.Context) ([]Song, error) {
	return l.repo.List(ctx)
}

// FilePath resolves a song id to its audio path for serving. Returns
// ErrNotFound when the id is malformed or the file does not exist.
func (l *Library) FilePath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", ErrNotFound
	}
	path := l.store.Path(id)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Reconcile adopts audio files present on disk without a metadata row,
// backdating each to its file modification time. Returns the number of
// songs adopted.
func (l *Library) Reconcile(ctx context.Context) (int, error) {
	diskIDs, err := l.store.IDs()
	if err != nil {
		return 0, err
	}

	existing, err := l.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.ID] = true
	}

	adopted := 0
	for _, id := range diskIDs {
		if known[id] {
			continue
		}

		createdAt, err := l.store.ModTime(id)
		if err != nil {
			l.log.Warn("skipping unreadable audio file", "id", id, "error", err)
			continue
		}

		song := &Song{
			ID:        id,
			URL:       urlPrefix + id + audioExt,
			CreatedAt: createdAt,
		}
		if err := l.repo.Create(ctx, song); err != nil {
			return adopted, fmt.Errorf("adopting song %s: %w", id, err)
		}
		adopted++
	}

	if adopted > 0 {
		l.log.Info("adopted orphan audio files", "count", adopted)
		l.enforceCap(ctx)
	}
	return adopted, nil
}

// enforceCap evicts the oldest songs beyond the capacity, audio files
// with the rows. Trim failures are logged, never fatal: the triggering
// save already succeeded.
func (l *Library) enforceCap(ctx context.Context) {
	if l.max < 1 {
		return
	}

	evicted, err := l.repo.TrimToCount(ctx, l.max)
	if err != nil {
		l.log.Warn("capacity trim failed", "error", err)
		return
	}
	for _, id := range evicted {
		if err := l.store.Remove(id); err != nil {
			l.log.Warn("failed deleting evicted audio", "id", id, "error", err)
		}
	}
	if len(evicted) > 0 {
		l.log.Info("evicted oldest songs", "count", len(evicted), "capacity", l.max)
	}
}
