// Package database opens padlink's SQLite store and migrates its
// schema.
//
// The database backs the song library metadata and the persistent
// device event archive; everything else in padlink is in-memory. The
// pool is capped at a single connection because SQLite allows one
// writer, and WAL mode keeps reads flowing during writes. The file is
// created owner read/write only.
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files live in the top-level migrations/ directory and are
// embedded into the binary; each has a .up.sql and a matching
// .down.sql, named YYYYMMDD_HHMMSS_description. Migrate applies the
// pending ones oldest first, each in its own transaction.
package database
