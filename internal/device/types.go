package device

import (
	"encoding/json"
	"fmt"
)

// ButtonVector is the ordered pressed/released state of every button the
// pad has reported so far. Index is the button id, value is 1 (pressed)
// or 0 (released). A vector never shrinks within a session: once an
// index has been observed it keeps reporting, as 0, even when the device
// stops sending it.
type ButtonVector []int

// Clone returns an independent copy of the vector.
func (v ButtonVector) Clone() ButtonVector {
	if v == nil {
		return nil
	}
	out := make(ButtonVector, len(v))
	copy(out, v)
	return out
}

// At returns the value at index i, treating absent indices as 0.
func (v ButtonVector) At(i int) int {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}

// Orientation is the pad's tilt reading in degrees. Pitch and roll are
// independently nil until first observed; updates are last-value-wins.
type Orientation struct {
	Pitch *float64 `json:"pitch"`
	Roll  *float64 `json:"roll"`
}

// Clone returns an independent copy of the orientation.
func (o Orientation) Clone() Orientation {
	out := Orientation{}
	if o.Pitch != nil {
		p := *o.Pitch
		out.Pitch = &p
	}
	if o.Roll != nil {
		r := *o.Roll
		out.Roll = &r
	}
	return out
}

// EventType identifies the kind of a device event.
type EventType string

// Device event types.
const (
	EventPress    EventType = "PRESS"
	EventRelease  EventType = "RELEASE"
	EventSnapshot EventType = "SNAPSHOT"
)

// Event is one derived device event. Press and Release carry the button
// index; Snapshot carries the full button vector sent to a subscriber on
// attach. Events are immutable once created and delivered in FIFO order.
type Event struct {
	Type    EventType
	Button  int
	Buttons ButtonVector
}

// NewPress creates a press event for a button index.
func NewPress(button int) Event {
	return Event{Type: EventPress, Button: button}
}

// NewRelease creates a release event for a button index.
func NewRelease(button int) Event {
	return Event{Type: EventRelease, Button: button}
}

// NewSnapshot creates a snapshot event carrying the current vector.
// The vector is cloned so later state changes cannot mutate the event.
func NewSnapshot(buttons ButtonVector) Event {
	return Event{Type: EventSnapshot, Buttons: buttons.Clone()}
}

// MarshalJSON emits the wire shape clients consume: press/release events
// are {"type":...,"button":n}, snapshots are {"type":"SNAPSHOT","buttons":[...]}.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventPress, EventRelease:
		return json.Marshal(struct {
			Type   EventType `json:"type"`
			Button int       `json:"button"`
		}{Type: e.Type, Button: e.Button})
	case EventSnapshot:
		buttons := e.Buttons
		if buttons == nil {
			buttons = ButtonVector{}
		}
		return json.Marshal(struct {
			Type    EventType    `json:"type"`
			Buttons ButtonVector `json:"buttons"`
		}{Type: e.Type, Buttons: buttons})
	default:
		return nil, fmt.Errorf("device: unknown event type %q", e.Type)
	}
}
