package engine

import "net"

// PeerID identifies a connected peer within one engine. Ids are small,
// assigned lowest-free-first and reused after the peer goes away.
type PeerID int

// Peer is an established remote endpoint.
type Peer interface {
    ID() PeerID
    RemoteAddr() net.Addr
    // Send queues data for delivery using method. Reliable-ordered data may be
    // buffered until Flush.
    Send(data []byte, method DeliveryMethod) error
    // Flush pushes any buffered outgoing data to the socket.
    Flush() error
}

// ConnectionRequest is an inbound connection attempt. Exactly one of Accept or
// Reject takes effect; later calls return ErrRequestHandled.
type ConnectionRequest interface {
    RemoteAddr() net.Addr
    Accept() (Peer, error)
    Reject() error
}

// Engine is the callback-free view of the networking engine.
type Engine interface {
    // Listen binds address:port and starts accepting connection requests.
    Listen(address string, port int) error
    // Connect starts a connection attempt. The outcome is reported later as a
    // Connected, Disconnected or Error event.
    Connect(address string, port int) error
    // PollEvent returns the next pending event, or false when none is pending.
    PollEvent() (Event, bool)
    // PeerCount counts peers accepted or connected and not yet gone.
    PeerCount() int
    // DisconnectPeer closes p. A Disconnected event with reason
    // DisconnectPeerCalled is queued.
    DisconnectPeer(p Peer) error
    // SendDiscoveryRequest sends data to address:port; an empty address means
    // the IPv4 limited broadcast address.
    SendDiscoveryRequest(data []byte, address string, port int) error
    // SendDiscoveryResponse answers a discovery request from addr.
    SendDiscoveryResponse(data []byte, addr net.Addr) error
    LocalAddr() net.Addr
    // Stop closes every peer and the socket and drops pending events.
    Stop() error
}

// Factory allocates a fresh, unstarted Engine.
type Factory func() Engine
