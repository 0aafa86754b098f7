package songs

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the songs table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE songs (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			prompt TEXT,
			duration_ms INTEGER,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE INDEX idx_songs_created ON songs(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

// seedSong inserts a song with a specific creation time.
func seedSong(t *testing.T, repo *SQLiteRepository, id string, createdAt time.Time) {
	t.Helper()

	err := repo.Create(context.Background(), &Song{
		ID:        id,
		URL:       urlPrefix + id + audioExt,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("seeding song %s: %v", id, err)
	}
}

func TestRepositoryCreateAndList(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	err := repo.Create(ctx, &Song{
		ID:         "song-a",
		URL:        "/songs/files/song-a.mp3",
		Prompt:     strPtr("late night synthwave"),
		DurationMS: intPtr(3000),
		CreatedAt:  base,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Adoption-style row: no prompt or duration known.
	err = repo.Create(ctx, &Song{
		ID:        "song-b",
		URL:       "/songs/files/song-b.mp3",
		CreatedAt: base.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(list))
	}

	first := list[0]
	if first.ID != "song-a" {
		t.Errorf("first song = %s, want song-a (oldest first)", first.ID)
	}
	if first.Prompt == nil || *first.Prompt != "late night synthwave" {
		t.Errorf("prompt = %v, want %q", first.Prompt, "late night synthwave")
	}
	if first.DurationMS == nil || *first.DurationMS != 3000 {
		t.Errorf("duration_ms = %v, want 3000", first.DurationMS)
	}
	if !first.CreatedAt.Equal(base) {
		t.Errorf("created_at = %v, want %v", first.CreatedAt, base)
	}

	second := list[1]
	if second.Prompt != nil {
		t.Errorf("adopted song prompt = %v, want nil", *second.Prompt)
	}
	if second.DurationMS != nil {
		t.Errorf("adopted song duration = %v, want nil", *second.DurationMS)
	}
}

func TestRepositoryListEmpty(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d songs", len(list))
	}
}

func TestRepositoryTrimToCount(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		seedSong(t, repo, id, base.Add(time.Duration(i)*time.Minute))
	}

	evicted, err := repo.TrimToCount(ctx, 3)
	if err != nil {
		t.Fatalf("TrimToCount: %v", err)
	}

	sort.Strings(evicted)
	if len(evicted) != 2 || evicted[0] != "s1" || evicted[1] != "s2" {
		t.Errorf("evicted = %v, want [s1 s2]", evicted)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 songs after trim, got %d", len(list))
	}
	if list[0].ID != "s3" || list[2].ID != "s5" {
		t.Errorf("remaining songs = %v..%v, want s3..s5", list[0].ID, list[2].ID)
	}
}

func TestRepositoryTrimToCountSameSecond(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	// Identical created_at on every row: insertion order must decide.
	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"s1", "s2", "s3"} {
		seedSong(t, repo, id, at)
	}

	evicted, err := repo.TrimToCount(ctx, 2)
	if err != nil {
		t.Fatalf("TrimToCount: %v", err)
	}
	if len(evicted) != 1 || evicted[0] != "s1" {
		t.Errorf("evicted = %v, want [s1]", evicted)
	}
}

func TestRepositoryTrimToCountUnderCapacity(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	seedSong(t, repo, "only", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))

	evicted, err := repo.TrimToCount(ctx, 5)
	if err != nil {
		t.Fatalf("TrimToCount: %v", err)
	}
	if len(evicted) != 0 {
		t.Errorf("evicted = %v, want none", evicted)
	}
}

func TestRepositoryTrimToCountRejectsZero(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	if _, err := repo.TrimToCount(context.Background(), 0); err == nil {
		t.Error("expected error for max = 0")
	}
}
