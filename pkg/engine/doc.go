// Package engine defines the contract of the underlying UDP networking engine
// consumed by pkg/transport, plus the pieces shared by its implementations
// (quic, mem): event values, delivery methods, the pending-event queue and the
// peer id pool.
//
// Key concepts:
// - Engine: owns one socket; listens and/or connects; produces Events
// - Event: one processed network occurrence, returned by value from PollEvent
// - Peer: an established remote endpoint with a small integer PeerID
// - ConnectionRequest: an inbound connect attempt awaiting Accept/Reject
//
// Engines do their I/O on background goroutines and queue events; PollEvent
// never blocks.
package engine
