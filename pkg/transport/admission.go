package transport

import (
    "go.uber.org/zap"

    "pollnet/pkg/engine"
)

// Decision is the admission outcome for a connection request.
type Decision int

const (
    Accept Decision = iota
    Reject
)

func (d Decision) String() string {
    if d == Accept { return "accept" }
    return "reject"
}

// Admit accepts while currentPeers is below maxConnections.
func Admit(currentPeers, maxConnections int) Decision {
    if currentPeers < maxConnections { return Accept }
    return Reject
}

// admit decides req synchronously. The engine counts a peer as soon as it is
// accepted, before its Connected event is polled, so back-to-back requests
// see each other.
func (t *Transport) admit(req engine.ConnectionRequest) {
    if req == nil { return }
    if t.role != RoleServer || !t.active {
        t.obs.OnAdmission(Reject, req.RemoteAddr(), 0, 0)
        _ = req.Reject()
        return
    }
    current := t.eng.PeerCount()
    d := Admit(current, t.maxConnections)
    t.obs.OnAdmission(d, req.RemoteAddr(), current, t.maxConnections)
    if d == Reject {
        if err := req.Reject(); err != nil { t.log.Debug("reject", zap.Error(err)) }
        return
    }
    if _, err := req.Accept(); err != nil {
        t.log.Warn("accept failed", zap.Stringer("raddr", req.RemoteAddr()), zap.Error(err))
    }
}
