package device

// Change is one edge transition reported by Diff: the button index and
// the value it changed to.
type Change struct {
	Index int
	Value int
}

// Diff compares two consecutive button vectors and returns the indices
// whose value changed, in ascending index order. The comparison runs
// over the union of both lengths with absent positions read as 0, so a
// vector that grows reports presses for its new indices and a vector
// that shrinks reports releases for the indices it dropped.
//
// Diff is pure; it is the single source of truth for which events an
// ApplyState call emits.
func Diff(prev, next ButtonVector) []Change {
	n := len(prev)
	if len(next) > n {
		n = len(next)
	}

	var changes []Change
	for i := 0; i < n; i++ {
		if old, now := prev.At(i), next.At(i); old != now {
			changes = append(changes, Change{Index: i, Value: now})
		}
	}
	return changes
}

// Event converts a change into the corresponding device event.
func (c Change) Event() Event {
	if c.Value != 0 {
		return NewPress(c.Index)
	}
	return NewRelease(c.Index)
}
