package device

import "sync"

// DefaultHistoryCapacity is the event buffer size used when no explicit
// capacity is configured.
const DefaultHistoryCapacity = 200

// History is a fixed-capacity ring buffer of recent device events.
//
// Push evicts the oldest entry once the buffer is full. Read optionally
// clears the buffer inside the same critical section, so no event can
// slip in between the read and the clear. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	events   []Event
	start    int
	count    int
	capacity int
}

// NewHistory creates a history buffer holding up to capacity events.
// A capacity below 1 falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Push appends an event, evicting the oldest when the buffer is full.
func (h *History) Push(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count < h.capacity {
		h.events[(h.start+h.count)%h.capacity] = ev
		h.count++
		return
	}

	h.events[h.start] = ev
	h.start = (h.start + 1) % h.capacity
}

// Read returns the buffered events in arrival order. When clear is set
// the buffer is emptied as part of the same call.
func (h *History) Read(clear bool) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.events[(h.start+i)%h.capacity]
	}

	if clear {
		h.start = 0
		h.count = 0
	}
	return out
}

// Len returns the number of buffered events.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Capacity returns the configured maximum number of events.
func (h *History) Capacity() int {
	return h.capacity
}
