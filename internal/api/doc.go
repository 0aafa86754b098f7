// Package api provides the HTTP REST API and WebSocket push server for
// padlink.
//
// This package provides:
//   - REST endpoints for serial device control (ports, connect,
//     disconnect, status) and pad state reads (buttons, orientation,
//     events, archive)
//   - A WebSocket endpoint streaming derived events in real time,
//     snapshot first
//   - The songs library surface (multipart upload, listing, audio
//     file serving)
//   - The tile layout generator
//   - Proxied upstream services (weather, placeholder feeds, generic
//     proxy, keyword generation, music composition streaming)
//   - System info and pipeline diagnostics
//   - Middleware stack (request ID, logging, recovery, CORS, body
//     size limits)
//
// # Architecture
//
// The server sits between browser frontends and the serial bridge.
// Control requests call straight into the bridge manager; reads come
// from the in-memory state store and history; the WebSocket endpoint
// attaches a subscription to the broadcast hub, which delivers a
// pre-marshalled snapshot frame followed by live press/release frames.
//
// # Lifecycle
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Close drains in-flight HTTP requests and tears down WebSocket
// connections, which graceful shutdown cannot reach once hijacked.
//
// # Error Responses
//
// Failures serialise as {"error":{"code","message"}} with stable
// machine-readable codes. Domain sentinels map onto statuses: a connect
// attempt while connected reports success=false at 200 (not an error),
// a missing upstream API key is 400, an upstream failure is 502.
//
// # Thread Safety
//
// All handlers are safe for concurrent use; shared state lives in the
// injected components, each with its own locking.
package api
