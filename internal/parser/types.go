package parser

import "github.com/padworks/padlink/internal/device"

// Config controls optional parser behaviour.
type Config struct {
	// PulseEnabled turns a lone "1" into a press/release pulse pair on
	// PulseButton instead of a length-1 state update. A lone "0" remains
	// a state update either way.
	PulseEnabled bool

	// PulseButton is the button index pulse events are attributed to.
	PulseButton int
}

// Update is the structured content of one parsed line. Any combination
// of fields may be set: a JSON payload can carry button state and
// orientation together, while command forms carry only events.
type Update struct {
	// Buttons is the reported button state, nil when the line carried none.
	Buttons device.ButtonVector

	// Pitch and Roll are orientation angles in degrees, nil when absent.
	Pitch *float64
	Roll  *float64

	// Events are explicit press/release events, in emission order.
	Events []device.Event
}

// IsZero reports whether the update carries nothing.
func (u Update) IsZero() bool {
	return u.Buttons == nil && u.Pitch == nil && u.Roll == nil && len(u.Events) == 0
}

// HasOrientation reports whether at least one angle is present.
func (u Update) HasOrientation() bool {
	return u.Pitch != nil || u.Roll != nil
}
