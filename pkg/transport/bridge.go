package transport

import (
    "pollnet/pkg/engine"
)

// bridge applies one engine event to the transport state and translates it.
// It reports false for events the caller never sees.
func (t *Transport) bridge(ev engine.Event) (Message, bool) {
    t.obs.OnEvent(t.role, ev)
    id := int(ev.PeerID())
    switch ev.Kind {
    case engine.KindReceive:
        return Message{Event: EventData, ConnectionID: id, Data: ev.Data}, true
    case engine.KindConnected:
        t.peers.Add(ev.Peer)
        t.obs.OnPeerCount(t.role, t.peers.Len())
        if t.role == RoleClient { t.connected = true }
        return Message{Event: EventConnected, ConnectionID: id}, true
    case engine.KindDisconnected:
        if t.peers.Remove(ev.Peer) { t.obs.OnPeerCount(t.role, t.peers.Len()) }
        if t.role == RoleClient { t.connected = false }
        return Message{Event: EventDisconnected, ConnectionID: id}, true
    case engine.KindError:
        if t.role == RoleClient { t.connected = false }
    case engine.KindConnectionRequest:
        t.admit(ev.Request)
    case engine.KindDiscoveryRequest:
        t.answerDiscovery(ev)
    }
    return Message{}, false
}
