package device

import (
	"encoding/json"
	"testing"
)

func TestEvent_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "press",
			event: NewPress(2),
			want:  `{"type":"PRESS","button":2}`,
		},
		{
			name:  "release of button zero keeps the field",
			event: NewRelease(0),
			want:  `{"type":"RELEASE","button":0}`,
		},
		{
			name:  "snapshot",
			event: NewSnapshot(ButtonVector{1, 0, 1}),
			want:  `{"type":"SNAPSHOT","buttons":[1,0,1]}`,
		},
		{
			name:  "snapshot of empty state marshals an empty array",
			event: NewSnapshot(nil),
			want:  `{"type":"SNAPSHOT","buttons":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvent_MarshalJSON_UnknownType(t *testing.T) {
	if _, err := json.Marshal(Event{Type: "BOGUS"}); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestButtonVector_Clone(t *testing.T) {
	var nilVec ButtonVector
	if nilVec.Clone() != nil {
		t.Error("nil vector should clone to nil")
	}

	v := ButtonVector{1, 0, 1}
	c := v.Clone()
	c[0] = 0
	if v[0] != 1 {
		t.Error("clone shares backing array with original")
	}
}

func TestButtonVector_At(t *testing.T) {
	v := ButtonVector{1, 0}

	if got := v.At(0); got != 1 {
		t.Errorf("At(0) = %d, want 1", got)
	}
	if got := v.At(5); got != 0 {
		t.Errorf("At(5) = %d, want 0 for absent index", got)
	}
	if got := v.At(-1); got != 0 {
		t.Errorf("At(-1) = %d, want 0", got)
	}
}

func TestOrientation_Clone(t *testing.T) {
	pitch := 1.5
	o := Orientation{Pitch: &pitch}

	c := o.Clone()
	*c.Pitch = 99

	if *o.Pitch != 1.5 {
		t.Error("clone shares pitch pointer with original")
	}
	if c.Roll != nil {
		t.Error("unobserved roll should stay nil in the clone")
	}
}

func TestNewSnapshot_ClonesVector(t *testing.T) {
	v := ButtonVector{1, 1}
	ev := NewSnapshot(v)
	v[0] = 0

	if ev.Buttons[0] != 1 {
		t.Error("snapshot event observed later vector mutation")
	}
}
