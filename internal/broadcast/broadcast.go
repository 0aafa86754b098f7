package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/padworks/padlink/internal/device"
	"github.com/padworks/padlink/internal/infrastructure/config"
	"github.com/padworks/padlink/internal/infrastructure/logging"
)

// Fallback capacities for zero-valued configuration.
const (
	defaultQueueSize        = 1000
	defaultSubscriberBuffer = 256
)

// Message is one event as handed to subscribers: the typed event plus
// its wire encoding, marshalled once for all recipients.
type Message struct {
	Event device.Event
	Data  []byte
}

// Subscriber is one registered consumer of the event stream. Events
// arrive on C in derivation order. The channel is closed when the
// subscriber is removed: explicitly via Unsubscribe, after a delivery
// failure, or at hub shutdown.
type Subscriber struct {
	// ID identifies the subscriber in logs.
	ID string

	// C receives events until the subscriber is removed.
	C <-chan Message

	ch chan Message
}

// SnapshotFunc supplies the current button vector for the snapshot
// event sent to each newly attached subscriber.
type SnapshotFunc func() device.ButtonVector

// Hub decouples the serial reader's event rate from subscriber I/O.
// The reader pushes events into a bounded queue; a single consumer
// drains the queue and fans each event out to every subscriber.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Push never blocks; overflow is shed and counted.
type Hub struct {
	cfg      config.BroadcastConfig
	snapshot SnapshotFunc
	logger   *logging.Logger

	queue chan device.Event
	drops atomic.Uint64

	mu     sync.RWMutex
	subs   map[string]*Subscriber
	closed bool

	startOnce sync.Once
	done      chan struct{}
}

// New creates a hub. The snapshot function must be non-nil; it is
// invoked on every Subscribe call.
func New(cfg config.BroadcastConfig, snapshot SnapshotFunc, logger *logging.Logger) *Hub {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SubscriberBuffer < 1 {
		cfg.SubscriberBuffer = defaultSubscriberBuffer
	}
	return &Hub{
		cfg:      cfg,
		snapshot: snapshot,
		logger:   logger,
		queue:    make(chan device.Event, cfg.QueueSize),
		subs:     make(map[string]*Subscriber),
		done:     make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Repeated calls are no-ops, so
// the consumer runs at most once per hub. The consumer exits when the
// context is cancelled or the hub is closed, disconnecting every
// subscriber on the way out.
func (h *Hub) Start(ctx context.Context) {
	h.startOnce.Do(func() {
		go h.run(ctx)
	})
}

func (h *Hub) run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case ev := <-h.queue:
			h.deliver(ev)
		}
	}
}

// Push enqueues an event for fan-out. It never blocks: when the queue
// is full the incoming event is dropped and counted, keeping the serial
// reader immune to slow subscribers.
func (h *Hub) Push(ev device.Event) {
	select {
	case h.queue <- ev:
	default:
		h.drops.Add(1)
	}
}

// Dropped returns the number of events shed due to a full queue.
func (h *Hub) Dropped() uint64 {
	return h.drops.Load()
}

// QueueDepth returns the number of events waiting in the hand-off queue.
func (h *Hub) QueueDepth() int {
	return len(h.queue)
}

// QueueCapacity returns the size of the hand-off queue.
func (h *Hub) QueueCapacity() int {
	return cap(h.queue)
}

// Subscribe registers a new subscriber and delivers a snapshot event
// carrying the current button vector, so the caller learns current
// state without waiting for the next transition. The snapshot is
// always the subscriber's first message and does not pass through the
// shared queue.
//
// Returns:
//   - *Subscriber: The attached subscriber; release it with Unsubscribe
//   - error: ErrClosed when the hub has shut down
func (h *Hub) Subscribe() (*Subscriber, error) {
	sub := &Subscriber{
		ID: uuid.New().String(),
		ch: make(chan Message, h.cfg.SubscriberBuffer),
	}
	sub.C = sub.ch

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	// Seed under the lock, before the map insert: deliver cannot see
	// the subscriber yet and a fresh buffer always has room for one
	// message, so no live event can land ahead of the snapshot.
	snap := device.NewSnapshot(h.snapshot())
	if data, err := json.Marshal(snap); err == nil {
		sub.ch <- Message{Event: snap, Data: data}
	}
	h.subs[sub.ID] = sub
	count := len(h.subs)
	h.mu.Unlock()

	h.logger.Debug("subscriber attached", "subscriber_id", sub.ID, "subscribers", count)
	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channel. The close
// happens inside the critical section that removes the map entry, so a
// concurrent Unsubscribe cannot double-close and a concurrent deliver
// (which sends under the read lock) can never race the close.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	_, existed := h.subs[sub.ID]
	if existed {
		delete(h.subs, sub.ID)
		close(sub.ch)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if existed {
		h.logger.Debug("subscriber detached", "subscriber_id", sub.ID, "subscribers", count)
	}
}

// Subscribers returns the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close shuts the hub down and disconnects all subscribers. Safe to
// call multiple times and regardless of whether Start ever ran.
func (h *Hub) Close() {
	h.mu.Lock()
	alreadyClosed := h.closed
	h.closed = true
	h.mu.Unlock()
	if alreadyClosed {
		return
	}
	close(h.done)
	h.closeAll()
}

// deliver fans one event out to every subscriber. The event is
// serialized once and sent non-blocking under the read lock, which
// never covers real I/O; channel closes take the write lock, so a send
// can never race a close. A subscriber whose buffer is full is removed
// rather than allowed to stall the stream.
func (h *Hub) deliver(ev device.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal event", "error", err, "type", ev.Type)
		return
	}
	msg := Message{Event: ev, Data: data}

	var stalled []*Subscriber
	h.mu.RLock()
	for _, sub := range h.subs {
		select {
		case sub.ch <- msg:
		default:
			stalled = append(stalled, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stalled {
		h.logger.Debug("dropping slow subscriber", "subscriber_id", sub.ID)
		h.Unsubscribe(sub)
	}
}

// closeAll detaches every subscriber and closes their channels so
// consumer goroutines can exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}
