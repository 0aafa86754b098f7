package mqtt

import "strconv"

// DefaultPrefix is the topic prefix used when the configured prefix is
// empty. All padlink topics live under a single configurable prefix so
// several instances can share one broker.
const DefaultPrefix = "padlink"

// Topics builds the padlink topic tree under a configured prefix.
// Using these helpers keeps topic naming consistent between the event
// publisher, the command subscribers and external integrations.
//
//	topics := mqtt.NewTopics("padlink")
//	topics.Event(3)        // "padlink/event/3"
//	topics.BridgeState()   // "padlink/bridge/state"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder. An empty prefix falls back to
// DefaultPrefix.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the effective topic prefix.
func (t Topics) Prefix() string {
	return t.prefix
}

// Event returns the topic for derived press/release events of a button.
//
// Example: padlink/event/3
func (t Topics) Event(button int) string {
	return t.prefix + "/event/" + strconv.Itoa(button)
}

// AllEvents returns a pattern matching every button's event topic.
//
// Pattern: padlink/event/+
func (t Topics) AllEvents() string {
	return t.prefix + "/event/+"
}

// BridgeState returns the topic carrying serial connection transitions.
// Messages are retained so late subscribers see the current state.
//
// Example: padlink/bridge/state
func (t Topics) BridgeState() string {
	return t.prefix + "/bridge/state"
}

// Availability returns the service availability topic. The LWT publishes
// "offline" here on an unexpected disconnect; "online" is published
// retained on every (re)connect.
//
// Example: padlink/bridge/availability
func (t Topics) Availability() string {
	return t.prefix + "/bridge/availability"
}

// CommandConnect returns the topic remote peers publish to in order to
// open the serial device. The payload is an optional {"port","baud"}
// object; an empty payload uses the configured defaults.
//
// Example: padlink/cmnd/connect
func (t Topics) CommandConnect() string {
	return t.prefix + "/cmnd/connect"
}

// CommandDisconnect returns the topic that triggers a serial disconnect.
//
// Example: padlink/cmnd/disconnect
func (t Topics) CommandDisconnect() string {
	return t.prefix + "/cmnd/disconnect"
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: padlink/cmnd/+
func (t Topics) AllCommands() string {
	return t.prefix + "/cmnd/+"
}
