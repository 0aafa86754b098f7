package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	topics := NewTopics("padlink")

	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name:     "Event",
			builder:  func() string { return topics.Event(3) },
			expected: "padlink/event/3",
		},
		{
			name:     "EventZero",
			builder:  func() string { return topics.Event(0) },
			expected: "padlink/event/0",
		},
		{
			name:     "AllEvents",
			builder:  topics.AllEvents,
			expected: "padlink/event/+",
		},
		{
			name:     "BridgeState",
			builder:  topics.BridgeState,
			expected: "padlink/bridge/state",
		},
		{
			name:     "Availability",
			builder:  topics.Availability,
			expected: "padlink/bridge/availability",
		},
		{
			name:     "CommandConnect",
			builder:  topics.CommandConnect,
			expected: "padlink/cmnd/connect",
		},
		{
			name:     "CommandDisconnect",
			builder:  topics.CommandDisconnect,
			expected: "padlink/cmnd/disconnect",
		},
		{
			name:     "AllCommands",
			builder:  topics.AllCommands,
			expected: "padlink/cmnd/+",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

func TestNewTopicsEmptyPrefix(t *testing.T) {
	topics := NewTopics("")

	if topics.Prefix() != DefaultPrefix {
		t.Errorf("Prefix() = %q, want %q", topics.Prefix(), DefaultPrefix)
	}
	if got := topics.BridgeState(); got != "padlink/bridge/state" {
		t.Errorf("BridgeState() = %q, want default prefix applied", got)
	}
}

func TestNewTopicsCustomPrefix(t *testing.T) {
	topics := NewTopics("workshop/pad2")

	if got := topics.Event(7); got != "workshop/pad2/event/7" {
		t.Errorf("Event(7) = %q, want custom prefix applied", got)
	}
}
