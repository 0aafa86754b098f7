// Package songs stores generated songs: audio files on disk plus
// metadata rows in SQLite.
//
// A song is saved as <id>.mp3 under the configured directory with a
// matching row carrying the prompt and duration it was generated from.
// The library holds at most max_count songs; saving beyond that evicts
// the oldest songs, rows and files both. At startup Reconcile adopts
// audio files found on disk without a row, so libraries written by
// older deployments keep their content.
//
// # Thread Safety
//
// Library methods are safe for concurrent use. Row consistency comes
// from SQLite; audio writes target unique uuid filenames so they never
// collide.
package songs
