// Package device holds the shared pad state and the events derived from it.
//
// The package is the hub between the serial reader (the only writer) and
// every client-facing consumer: HTTP polling handlers, the broadcast
// fan-out, the MQTT publisher and the telemetry writer all observe pad
// state through the types defined here.
//
// # Architecture
//
//	┌───────────────────────────────────────────────────────────────────┐
//	│                        Device state core                          │
//	│                                                                   │
//	│  ┌───────────────┐   ┌──────────────┐   ┌─────────────────────┐   │
//	│  │  StateStore   │   │   History    │   │      Archive        │   │
//	│  │  (state.go)   │   │ (history.go) │   │ (archive_sqlite.go) │   │
//	│  │               │   │              │   │                     │   │
//	│  │ • ButtonVector│   │ • ring buffer│   │ • device_events     │   │
//	│  │ • Orientation │   │ • read+clear │   │ • retention prune   │   │
//	│  │ • edge diffs  │   │              │   │                     │   │
//	│  └───────▲───────┘   └──────▲───────┘   └─────────▲───────────┘   │
//	└──────────│──────────────────│─────────────────────│───────────────┘
//	           │                  │                     │
//	      reader loop        reader loop          reader loop (optional)
//
// # Key Types
//
//   - ButtonVector: ordered 0/1 state per button index
//   - Orientation: pitch/roll degrees, nil until first observed
//   - Event: tagged press/release/snapshot variant with its wire shape
//   - StateStore: atomic snapshot/apply with edge reporting
//   - History: fixed-capacity ring buffer with atomic read-and-clear
//   - Archive: optional persistent event log backed by SQLite
//
// # Usage
//
//	store := device.NewStateStore()
//	history := device.NewHistory(200)
//
//	changes := store.ApplyState(device.ButtonVector{1, 0, 0, 0})
//	for _, c := range changes {
//	    ev := c.Event()
//	    history.Push(ev)
//	}
//
//	buttons, orientation := store.Snapshot()
//
// # Thread Safety
//
// StateStore and History are safe for concurrent use; each is guarded by
// its own mutex held only for the duration of the copy. Archive
// implementations must be safe for concurrent use.
package device
