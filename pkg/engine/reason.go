package engine

// DisconnectReason explains a Disconnected event.
type DisconnectReason int

const (
    ReasonConnectionFailed DisconnectReason = iota
    ReasonTimeout
    ReasonRemoteConnectionClose
    ReasonDisconnectPeerCalled
    ReasonConnectionRejected
    ReasonInvalidProtocol
)

func (r DisconnectReason) String() string {
    switch r {
    case ReasonConnectionFailed:
        return "connection-failed"
    case ReasonTimeout:
        return "timeout"
    case ReasonRemoteConnectionClose:
        return "remote-connection-close"
    case ReasonDisconnectPeerCalled:
        return "disconnect-peer-called"
    case ReasonConnectionRejected:
        return "connection-rejected"
    case ReasonInvalidProtocol:
        return "invalid-protocol"
    default:
        return "unknown"
    }
}
