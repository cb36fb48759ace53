// Package transport adapts an event-driven engine.Engine to a pull-based,
// per-tick polling API for game networking code.
//
// Key concepts:
// - Transport: owns at most one engine at a time, in either the client or
//   the server role
// - GetNextMessage: pops engine events until one is relevant to the caller
//   (Connected, Disconnected or Data) and returns it; everything else is
//   consumed internally
// - Channels: integer ids 0..3 mapped onto the engine's delivery methods
// - Admission: the server accepts a connection request only while the engine
//   holds fewer peers than maxConnections
// - Observer: structured sink receiving every bridged event, admission
//   decision and send
//
// A Transport is not safe for concurrent use. All calls return immediately;
// nothing blocks waiting for the network.
package transport
