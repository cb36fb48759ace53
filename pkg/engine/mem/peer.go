package mem

import (
    "net"

    "pollnet/pkg/engine"
)

// Peer is one side of a mem connection. Reliable-ordered sends are held
// until Flush; the other methods are delivered at once.
type Peer struct {
    e      *Engine
    id     engine.PeerID
    raddr  Addr
    remote *Peer
    closed bool // guarded by e.mu

    pending [][]byte // guarded by e.mu
}

var _ engine.Peer = (*Peer)(nil)

func (p *Peer) ID() engine.PeerID { return p.id }
func (p *Peer) RemoteAddr() net.Addr { return p.raddr }

func (p *Peer) link() *Peer {
    p.e.mu.Lock()
    defer p.e.mu.Unlock()
    return p.remote
}

func (p *Peer) Send(data []byte, method engine.DeliveryMethod) error {
    if !method.Valid() { return engine.ErrUnknownMethod }
    p.e.mu.Lock()
    if p.closed {
        p.e.mu.Unlock()
        return engine.ErrPeerClosed
    }
    buf := append([]byte(nil), data...)
    if method == engine.ReliableOrdered {
        p.pending = append(p.pending, buf)
        p.e.mu.Unlock()
        return nil
    }
    remote := p.remote
    p.e.mu.Unlock()
    if remote == nil { return engine.ErrPeerClosed }
    remote.deliver(buf, method)
    return nil
}

func (p *Peer) Flush() error {
    p.e.mu.Lock()
    if p.closed {
        p.e.mu.Unlock()
        return engine.ErrPeerClosed
    }
    pending, remote := p.pending, p.remote
    p.pending = nil
    p.e.mu.Unlock()
    if remote == nil { return nil }
    for _, b := range pending { remote.deliver(b, engine.ReliableOrdered) }
    return nil
}

func (p *Peer) deliver(data []byte, method engine.DeliveryMethod) {
    p.e.mu.Lock()
    closed := p.closed
    p.e.mu.Unlock()
    if closed { return }
    p.e.queue.Push(engine.Event{Kind: engine.KindReceive, Peer: p, Data: data, Method: method})
}
