package quic

import (
    "net"
    "sync/atomic"

    quicgo "github.com/quic-go/quic-go"
    "go.uber.org/zap"

    "pollnet/pkg/engine"
)

// request is a connection whose hello passed the key check and now waits for
// the admission decision.
type request struct {
    e       *Engine
    conn    quicgo.Connection
    ctrl    *frameStream
    handled atomic.Bool
}

var _ engine.ConnectionRequest = (*request)(nil)

func (r *request) RemoteAddr() net.Addr { return r.conn.RemoteAddr() }

// Accept registers the peer, sends the verdict and queues Connected.
func (r *request) Accept() (engine.Peer, error) {
    if !r.handled.CompareAndSwap(false, true) { return nil, engine.ErrRequestHandled }
    if err := r.conn.Context().Err(); err != nil { return nil, engine.ErrPeerClosed }
    p, err := r.e.addPeer(r.conn, r.ctrl)
    if err != nil {
        _ = r.conn.CloseWithError(codeShutdown, "engine stopped")
        return nil, err
    }
    body, err := r.e.opts.Codec.Marshal(verdict{Accepted: true, PeerID: int(p.id)})
    if err == nil { err = r.ctrl.write(frameVerdict, body) }
    if err == nil { err = r.ctrl.flush() }
    if err != nil {
        r.e.discardPeer(p)
        _ = r.conn.CloseWithError(codeProtocol, "verdict failed")
        return nil, err
    }
    r.e.log.Debug("connection accepted", zap.Int("peer", int(p.id)), zap.Stringer("raddr", r.conn.RemoteAddr()))
    r.e.queue.Push(engine.Event{Kind: engine.KindConnected, Peer: p})
    r.e.startPeer(p)
    return p, nil
}

// Reject closes the connection with codeRejected; the client observes a
// Disconnected event with ReasonConnectionRejected.
func (r *request) Reject() error {
    if !r.handled.CompareAndSwap(false, true) { return engine.ErrRequestHandled }
    r.e.log.Debug("connection rejected", zap.Stringer("raddr", r.conn.RemoteAddr()))
    return r.conn.CloseWithError(codeRejected, "connection rejected")
}
