// Package bridge connects the physical pad to the rest of the process.
//
// A Manager owns at most one serial connection at a time. Connect opens
// the device, clears stale buffered bytes and starts a reader loop;
// Disconnect atomically takes the handle back so no caller ever sees a
// half-closed port, then releases it through a staged close (settle,
// flush, settle, drop DTR/RTS, pause, close) that keeps Bluetooth SPP
// adapters from wedging.
//
// The reader loop re-reads the manager's handle before every blocking
// read instead of holding the lock across I/O, so a concurrent
// disconnect is observed within one read timeout. Each received line
// goes through the parser; recognised updates mutate the state store,
// derived press/release transitions are recorded into history, handed
// to the broadcast hub and, when configured, persisted to the event
// archive. Unparseable lines are skipped silently. The loop never
// panics and never outlives its connection.
package bridge
