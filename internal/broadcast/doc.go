// Package broadcast fans device events out to an arbitrary number of
// live subscribers without ever stalling the serial reader.
//
// The reader pushes events into a bounded queue with Push, which never
// blocks: when the queue is full the newest event is shed and counted
// rather than propagated as back-pressure. A single consumer goroutine,
// started once via Start, drains the queue, serializes each event one
// time and hands the bytes to every subscriber channel. Subscribers
// that stop draining are detached on the first failed delivery; the
// rest are unaffected.
//
// Each new subscriber immediately receives a SNAPSHOT event with the
// current button vector so it does not have to wait for the next
// physical button transition to learn the pad's state.
//
// Delivery order matches derivation order per subscriber. No ordering
// is guaranteed across subscribers beyond that.
package broadcast
