package device

import "sync"

// StateStore holds the latest button vector and orientation reading.
//
// The reader loop is the only writer; any number of goroutines may read.
// All methods are atomic with respect to one another: a Snapshot never
// observes a partially applied vector. The lock is held only for the
// copy/compare, never across I/O.
type StateStore struct {
	mu          sync.Mutex
	buttons     ButtonVector
	orientation Orientation
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// ApplyState replaces the stored button vector with the observed one and
// returns the edge transitions relative to the previous vector.
//
// The stored vector never shrinks: when the device reports fewer buttons
// than previously seen, the missing indices are kept and read as 0,
// which Diff reports as releases. The input is cloned, so the caller may
// reuse its slice.
func (s *StateStore) ApplyState(next ButtonVector) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := next.Clone()
	if len(applied) < len(s.buttons) {
		grown := make(ButtonVector, len(s.buttons))
		copy(grown, applied)
		applied = grown
	}

	changes := Diff(s.buttons, applied)
	s.buttons = applied
	return changes
}

// RecordEvent folds a direct press/release event into the stored vector
// so later ApplyState diffs stay consistent with what clients were told.
// Snapshot events are ignored.
func (s *StateStore) RecordEvent(ev Event) {
	if ev.Type != EventPress && ev.Type != EventRelease {
		return
	}
	if ev.Button < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Button >= len(s.buttons) {
		grown := make(ButtonVector, ev.Button+1)
		copy(grown, s.buttons)
		s.buttons = grown
	}
	if ev.Type == EventPress {
		s.buttons[ev.Button] = 1
	} else {
		s.buttons[ev.Button] = 0
	}
}

// ApplyOrientation updates the fields present in the reading; a nil
// pitch or roll leaves the stored value untouched.
func (s *StateStore) ApplyOrientation(pitch, roll *float64) {
	if pitch == nil && roll == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pitch != nil {
		p := *pitch
		s.orientation.Pitch = &p
	}
	if roll != nil {
		r := *roll
		s.orientation.Roll = &r
	}
}

// Snapshot returns independent copies of the current button vector and
// orientation, taken in one critical section.
func (s *StateStore) Snapshot() (ButtonVector, Orientation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttons.Clone(), s.orientation.Clone()
}

// Buttons returns a copy of the current button vector.
func (s *StateStore) Buttons() ButtonVector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttons.Clone()
}

// Orientation returns a copy of the current orientation reading.
func (s *StateStore) Orientation() Orientation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orientation.Clone()
}
