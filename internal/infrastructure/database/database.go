package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// dirPermissions is the mode for a freshly created data directory.
	dirPermissions = 0750

	// filePermissions restricts the database file to its owner.
	filePermissions = 0600

	// connectionTimeout bounds the post-open connectivity probe.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long an idle connection is kept open.
	connMaxIdleTime = 30 * time.Minute
)

// Config mirrors the database section of config.yaml.
type Config struct {
	// Path is the SQLite file location. Its directory is created on
	// first open.
	Path string

	// WALMode enables write-ahead logging so reads proceed during
	// writes.
	WALMode bool

	// BusyTimeout is how long a statement waits on a locked database,
	// in seconds.
	BusyTimeout int
}

// dsn renders the connection string. Pragmas ride on the DSN with the
// mattn driver; the busy timeout is configured in seconds but the
// pragma takes milliseconds.
func dsn(cfg Config) string {
	s := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path, cfg.BusyTimeout*1000)
	if cfg.WALMode {
		s += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return s
}

// DB is the process-wide SQLite handle backing the song library and the
// event archive. It layers migrations, a health probe and lifecycle
// management over database/sql.
type DB struct {
	*sql.DB
	path string
}

// Open opens the SQLite database, creating the file and its directory
// when missing, and verifies it responds before handing it out.
func Open(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection
	// sidesteps lock contention entirely.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	db := &DB{DB: sqlDB, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// The file may not exist yet on a first run; permissions then apply
	// after the first write.
	_ = os.Chmod(cfg.Path, filePermissions)

	return db, nil
}

// Close releases the database connection. Call once at shutdown.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem location of the database file.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck probes the database with a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats exposes connection pool statistics for the stats endpoint.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext runs a statement that returns no rows, wrapping any
// failure with context.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// BeginTx starts a transaction. Use one for any multi-statement write,
// such as trimming the song library after an insert.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}
