package engine

import "net"

// EventKind tags an Event.
type EventKind int

const (
    KindNone EventKind = iota
    KindConnected
    KindDisconnected
    KindReceive
    KindError
    KindDiscoveryRequest
    KindDiscoveryResponse
    KindConnectionRequest
)

func (k EventKind) String() string {
    switch k {
    case KindConnected:
        return "connected"
    case KindDisconnected:
        return "disconnected"
    case KindReceive:
        return "receive"
    case KindError:
        return "error"
    case KindDiscoveryRequest:
        return "discovery-request"
    case KindDiscoveryResponse:
        return "discovery-response"
    case KindConnectionRequest:
        return "connection-request"
    default:
        return "none"
    }
}

// Event is one processed network occurrence. Which fields are set depends on
// Kind:
//   - Connected: Peer
//   - Disconnected: Peer, Reason
//   - Receive: Peer, Data, Method
//   - Error: RemoteAddr, Err
//   - DiscoveryRequest/DiscoveryResponse: RemoteAddr, Data
//   - ConnectionRequest: RemoteAddr, Request
//
// Data is owned by the receiver of the event.
type Event struct {
    Kind       EventKind
    Peer       Peer
    Data       []byte
    Method     DeliveryMethod
    Reason     DisconnectReason
    RemoteAddr net.Addr
    Err        error
    Request    ConnectionRequest
}

// PeerID returns the id of the event's peer, or -1 when there is none.
func (e Event) PeerID() PeerID {
    if e.Peer == nil { return -1 }
    return e.Peer.ID()
}
