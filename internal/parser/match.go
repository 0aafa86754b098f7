package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/padworks/padlink/internal/device"
)

// matchEventObject handles JSON objects naming an explicit event, such as
// {"type":"PRESS","button":2} or {"event":"RELEASE","button":0}. It only
// claims the line when the event keyword and a usable button index are
// both present, leaving every other object to matchStateObject.
func matchEventObject(line string) (Update, bool) {
	obj, ok := decodeObject(line)
	if !ok {
		return Update{}, false
	}
	kind, ok := eventKeyword(obj)
	if !ok {
		return Update{}, false
	}
	button, ok := buttonIndex(obj["button"])
	if !ok {
		return Update{}, false
	}
	ev := device.NewPress(button)
	if kind == device.EventRelease {
		ev = device.NewRelease(button)
	}
	return Update{Events: []device.Event{ev}}, true
}

// matchStateObject handles JSON objects carrying a button array and/or
// orientation angles, such as {"buttons":[1,0],"pitch":4.2,"roll":-1.5}.
// "b" is accepted as a short alias for "buttons". It claims every line
// that looks like a JSON object, so malformed or unrecognised objects
// reject terminally instead of falling through to the text matchers.
func matchStateObject(line string) (Update, bool) {
	if !strings.HasPrefix(line, "{") {
		return Update{}, false
	}
	obj, ok := decodeObject(line)
	if !ok {
		return Update{}, true
	}
	return Update{
		Buttons: buttonArray(obj),
		Pitch:   toDegrees(obj["pitch"]),
		Roll:    toDegrees(obj["roll"]),
	}, true
}

// commandPrefixes are the textual command keywords, longest first so
// that "PRESS 3" is not consumed by the bare "P" form.
var commandPrefixes = []struct {
	keyword string
	kind    device.EventType
}{
	{"PRESS", device.EventPress},
	{"RELEASE", device.EventRelease},
	{"P", device.EventPress},
	{"R", device.EventRelease},
}

// matchTextCommand handles the plain-text command forms PRESS <n>,
// RELEASE <n>, P<n> and R<n>. Keywords are case-insensitive and the
// index is a decimal button number.
func matchTextCommand(line string) (Update, bool) {
	upper := strings.ToUpper(line)
	for _, prefix := range commandPrefixes {
		rest, ok := strings.CutPrefix(upper, prefix.keyword)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if rest == "" || !allDigits(rest) {
			continue
		}
		button, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		ev := device.NewPress(button)
		if prefix.kind == device.EventRelease {
			ev = device.NewRelease(button)
		}
		return Update{Events: []device.Event{ev}}, true
	}
	return Update{}, false
}

// matchSingleBinary handles a lone "0" or "1" as a length-1 state
// update. With pulse mode enabled a lone "1" becomes a press/release
// pulse pair on the configured button instead; "0" stays a state update.
func (p *Parser) matchSingleBinary(line string) (Update, bool) {
	if line != "0" && line != "1" {
		return Update{}, false
	}
	if line == "1" && p.cfg.PulseEnabled {
		return Update{Events: []device.Event{
			device.NewPress(p.cfg.PulseButton),
			device.NewRelease(p.cfg.PulseButton),
		}}, true
	}
	value := 0
	if line == "1" {
		value = 1
	}
	return Update{Buttons: device.ButtonVector{value}}, true
}

// matchBinarySequence handles raw bit strings such as "0110" or
// "1 0 0 1". The line must contain only 0, 1 and whitespace, with at
// least two bits once whitespace is stripped.
func matchBinarySequence(line string) (Update, bool) {
	vec := make(device.ButtonVector, 0, len(line))
	for _, r := range line {
		switch {
		case r == '0':
			vec = append(vec, 0)
		case r == '1':
			vec = append(vec, 1)
		case unicode.IsSpace(r):
		default:
			return Update{}, false
		}
	}
	if len(vec) < 2 {
		return Update{}, false
	}
	return Update{Buttons: vec}, true
}

// allDigits reports whether s consists solely of ASCII digits. Signed
// forms that strconv.Atoi would accept, such as "-3", must not claim a
// command line.
func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// decodeObject unmarshals a line shaped like a JSON object. The boolean
// reports whether decoding succeeded.
func decodeObject(line string) (map[string]any, bool) {
	if !strings.HasPrefix(line, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// eventKeyword reads the event kind from the "type" or "event" field,
// case-insensitively. Only PRESS and RELEASE qualify.
func eventKeyword(obj map[string]any) (device.EventType, bool) {
	for _, key := range []string{"type", "event"} {
		s, ok := obj[key].(string)
		if !ok {
			continue
		}
		switch strings.ToUpper(s) {
		case string(device.EventPress):
			return device.EventPress, true
		case string(device.EventRelease):
			return device.EventRelease, true
		}
	}
	return "", false
}

// buttonIndex converts a decoded JSON value to a button index.
// Fractional and negative values are rejected.
func buttonIndex(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 0 {
		return 0, false
	}
	return int(f), true
}

// buttonArray extracts the "buttons" array, falling back to "b" when
// "buttons" is missing or empty. Elements are coerced truthy to 1 and
// falsy to 0; a non-array value yields no state update.
func buttonArray(obj map[string]any) device.ButtonVector {
	raw := obj["buttons"]
	if !truthy(raw) {
		raw = obj["b"]
	}
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return nil
	}
	vec := make(device.ButtonVector, len(arr))
	for i, el := range arr {
		if truthy(el) {
			vec[i] = 1
		}
	}
	return vec
}

// truthy mirrors the loose coercion pad firmware relies on: JSON false,
// 0, "", null and empty arrays or objects are falsy, everything else
// is truthy. Note the string "0" is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// toDegrees converts a decoded JSON value to an orientation angle.
// Numbers pass through, numeric strings are parsed and booleans map to
// 0/1. Anything else reads as absent rather than failing the line.
func toDegrees(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	case bool:
		f := 0.0
		if t {
			f = 1.0
		}
		return &f
	default:
		return nil
	}
}
