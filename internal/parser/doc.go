// Package parser converts raw lines from the pad's serial stream into
// structured updates.
//
// Pad firmware revisions speak several incompatible line formats, so the
// parser is an ordered chain of matchers over one trimmed line, first
// match wins:
//
//  1. JSON event object: {"type":"PRESS","button":2} (or "event" as the
//     key, "RELEASE" as the kind) produces a direct event.
//  2. JSON state object: {"buttons":[1,0,0],"pitch":4.2,"roll":-1.5}
//     produces button state and/or orientation. "b" is accepted as an
//     alias for "buttons"; array elements are coerced truthy/falsy.
//  3. Text command: PRESS <n>, RELEASE <n>, P<n> or R<n>, keyword
//     case-insensitive, produces a direct event.
//  4. A lone "0" or "1" produces a length-1 state update, or with pulse
//     mode enabled a press/release pulse pair for a lone "1".
//  5. A run of two or more 0/1 characters, whitespace tolerated,
//     produces a state update of that length.
//
// Anything else, including malformed JSON, produces no update. Parse
// never returns an error; the serial reader skips silent lines and
// moves on.
//
// Usage:
//
//	p := parser.New(parser.Config{})
//	upd, ok := p.Parse(`{"buttons":[0,1],"pitch":12.5}`)
//	if ok && upd.Buttons != nil {
//	    // apply state
//	}
package parser
