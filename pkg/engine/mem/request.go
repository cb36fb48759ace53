package mem

import (
    "net"
    "sync"

    "pollnet/pkg/engine"
)

type request struct {
    srv, cli *Engine
    raddr    Addr

    once sync.Once
}

var _ engine.ConnectionRequest = (*request)(nil)

func (r *request) RemoteAddr() net.Addr { return r.raddr }

func (r *request) claim() bool {
    first := false
    r.once.Do(func() { first = true })
    return first
}

// Accept links a peer on each engine and queues Connected on both.
func (r *request) Accept() (engine.Peer, error) {
    if !r.claim() { return nil, engine.ErrRequestHandled }
    sp, err := r.srv.addPeer(r.raddr)
    if err != nil { return nil, err }
    cp, err := r.cli.addPeer(r.srv.LocalAddr().(Addr))
    if err != nil {
        r.srv.discard(sp)
        return nil, err
    }
    r.srv.mu.Lock()
    sp.remote = cp
    r.srv.mu.Unlock()
    r.cli.mu.Lock()
    cp.remote = sp
    r.cli.mu.Unlock()
    r.srv.queue.Push(engine.Event{Kind: engine.KindConnected, Peer: sp})
    r.cli.queue.Push(engine.Event{Kind: engine.KindConnected, Peer: cp})
    return sp, nil
}

// Reject queues Disconnected(ConnectionRejected) on the requesting engine.
func (r *request) Reject() error {
    if !r.claim() { return engine.ErrRequestHandled }
    p := &Peer{e: r.cli, id: r.cli.ids.Acquire(), raddr: r.srv.LocalAddr().(Addr), closed: true}
    r.cli.queue.Push(engine.Event{Kind: engine.KindDisconnected, Peer: p, Reason: engine.ReasonConnectionRejected})
    r.cli.ids.Release(p.id)
    return nil
}
