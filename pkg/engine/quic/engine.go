// Package quic implements engine.Engine on top of quic-go.
//
// A single UDP socket carries the QUIC connections of either role plus raw
// discovery packets. Each connection opens one bidirectional control stream
// for the hello/verdict handshake and reliable-ordered data; the other
// delivery methods use unidirectional streams and RFC 9221 datagrams.
package quic

import (
    "context"
    "errors"
    "fmt"
    "net"
    "strconv"
    "sync"
    "time"

    quicgo "github.com/quic-go/quic-go"
    "go.uber.org/multierr"
    "go.uber.org/zap"
    "golang.org/x/sync/errgroup"

    "pollnet/pkg/engine"
)

// Engine is a QUIC backed engine.Engine. It is single use: once stopped it
// cannot be started again.
type Engine struct {
    opts     Options
    log      *zap.Logger
    quicConf *quicgo.Config

    mu          sync.Mutex
    stopped     bool
    discovering bool
    udp         *net.UDPConn
    tr          *quicgo.Transport
    ln          *quicgo.Listener
    peers       map[engine.PeerID]*peer

    ctx    context.Context
    cancel context.CancelFunc
    group  errgroup.Group

    ids   engine.IDPool
    queue engine.Queue
}

var _ engine.Engine = (*Engine)(nil)

func New(opts Options) *Engine {
    opts = opts.withDefaults()
    ctx, cancel := context.WithCancel(context.Background())
    return &Engine{
        opts: opts,
        log:  opts.Logger.With(zap.String("engine", "quic")),
        quicConf: &quicgo.Config{
            HandshakeIdleTimeout:  opts.HandshakeTimeout,
            MaxIdleTimeout:        opts.IdleTimeout,
            KeepAlivePeriod:       opts.KeepAlive,
            EnableDatagrams:       true,
            MaxIncomingStreams:    16,
            MaxIncomingUniStreams: 1024,
        },
        peers:  make(map[engine.PeerID]*peer),
        ctx:    ctx,
        cancel: cancel,
    }
}

// Factory returns an engine.Factory producing engines configured with opts.
func Factory(opts Options) engine.Factory {
    return func() engine.Engine { return New(opts) }
}

func (e *Engine) network() string {
    if e.opts.Discovery { return "udp4" }
    return "udp"
}

func (e *Engine) bind(address string, port int) (*quicgo.Transport, error) {
    e.mu.Lock()
    defer e.mu.Unlock()
    if e.stopped { return nil, engine.ErrStopped }
    if e.udp != nil { return nil, engine.ErrAlreadyStarted }
    return e.bindLocked(address, port)
}

func (e *Engine) bindLocked(address string, port int) (*quicgo.Transport, error) {
    laddr, err := net.ResolveUDPAddr(e.network(), net.JoinHostPort(address, strconv.Itoa(port)))
    if err != nil { return nil, fmt.Errorf("resolve %s:%d: %w", address, port, err) }
    udp, err := net.ListenUDP(e.network(), laddr)
    if err != nil { return nil, fmt.Errorf("bind %s: %w", laddr, err) }
    if e.opts.Discovery {
        if err := enableBroadcast(udp); err != nil {
            e.log.Warn("broadcast unavailable", zap.Error(err))
        }
    }
    e.udp = udp
    e.tr = &quicgo.Transport{Conn: udp}
    e.log.Debug("socket bound", zap.Stringer("laddr", udp.LocalAddr()))
    return e.tr, nil
}

// unbind releases the socket after a failed Listen.
func (e *Engine) unbind() {
    e.mu.Lock()
    tr, udp := e.tr, e.udp
    e.tr, e.udp = nil, nil
    e.mu.Unlock()
    if tr != nil { _ = tr.Close() }
    if udp != nil { _ = udp.Close() }
}

func (e *Engine) Listen(address string, port int) error {
    tr, err := e.bind(address, port)
    if err != nil { return err }
    tlsConf, err := serverTLSConfig()
    if err != nil {
        e.unbind()
        return fmt.Errorf("server tls: %w", err)
    }
    ln, err := tr.Listen(tlsConf, e.quicConf)
    if err != nil {
        e.unbind()
        return fmt.Errorf("listen: %w", err)
    }
    e.mu.Lock()
    e.ln = ln
    e.mu.Unlock()
    e.log.Info("listening", zap.Stringer("laddr", ln.Addr()))
    e.group.Go(func() error { return e.acceptLoop(ln) })
    e.startDiscovery(tr)
    return nil
}

func (e *Engine) Connect(address string, port int) error {
    e.mu.Lock()
    if e.stopped {
        e.mu.Unlock()
        return engine.ErrStopped
    }
    tr := e.tr
    if tr == nil {
        var err error
        if tr, err = e.bindLocked("", 0); err != nil {
            e.mu.Unlock()
            return err
        }
    }
    e.mu.Unlock()

    raddr, err := net.ResolveUDPAddr(e.network(), net.JoinHostPort(address, strconv.Itoa(port)))
    if err != nil { return fmt.Errorf("resolve %s:%d: %w", address, port, err) }
    e.log.Debug("connecting", zap.Stringer("raddr", raddr))
    e.group.Go(func() error { e.dial(tr, raddr); return nil })
    e.startDiscovery(tr)
    return nil
}

func (e *Engine) dial(tr *quicgo.Transport, raddr *net.UDPAddr) {
    ctx, cancel := context.WithTimeout(e.ctx, e.opts.HandshakeTimeout)
    defer cancel()
    conn, err := tr.Dial(ctx, raddr, clientTLSConfig(), e.quicConf)
    if err != nil {
        if e.isStopped() { return }
        e.log.Debug("dial failed", zap.Stringer("raddr", raddr), zap.Error(err))
        e.queue.Push(engine.Event{Kind: engine.KindError, RemoteAddr: raddr, Err: fmt.Errorf("dial %s: %w", raddr, err)})
        return
    }
    ctrl, err := e.clientHello(ctx, conn)
    if err != nil {
        reason := reasonFor(err)
        if reason == engine.ReasonInvalidProtocol {
            _ = conn.CloseWithError(codeProtocol, "bad verdict")
        } else {
            _ = conn.CloseWithError(codeDisconnect, "")
        }
        if e.isStopped() { return }
        e.log.Debug("handshake failed", zap.Stringer("raddr", raddr), zap.Stringer("reason", reason), zap.Error(err))
        e.detachedDisconnect(conn, reason)
        return
    }
    p, err := e.addPeer(conn, ctrl)
    if err != nil {
        _ = conn.CloseWithError(codeShutdown, "engine stopped")
        return
    }
    e.log.Debug("connected", zap.Int("peer", int(p.id)), zap.Stringer("raddr", raddr))
    e.queue.Push(engine.Event{Kind: engine.KindConnected, Peer: p})
    e.startPeer(p)
}

// clientHello opens the control stream, sends the hello and waits for the
// verdict.
func (e *Engine) clientHello(ctx context.Context, conn quicgo.Connection) (*frameStream, error) {
    s, err := conn.OpenStreamSync(ctx)
    if err != nil { return nil, err }
    ctrl := newFrameStream(s, e.opts.MaxMessageSize)
    body, err := e.opts.Codec.Marshal(hello{Version: protocolVersion, Key: e.opts.ConnectKey})
    if err != nil { return nil, err }
    if err := ctrl.write(frameHello, body); err != nil { return nil, err }
    if err := ctrl.flush(); err != nil { return nil, err }

    if dl, ok := ctx.Deadline(); ok { _ = s.SetReadDeadline(dl) }
    typ, body, err := ctrl.read()
    if err != nil { return nil, err }
    _ = s.SetReadDeadline(time.Time{})
    if typ != frameVerdict { return nil, fmt.Errorf("%w: frame %d before verdict", errProtocol, typ) }
    var v verdict
    if err := e.opts.Codec.Unmarshal(body, &v); err != nil { return nil, fmt.Errorf("%w: verdict: %v", errProtocol, err) }
    if !v.Accepted { return nil, errRejected }
    return ctrl, nil
}

// detachedDisconnect reports a connection that never became a peer. The id
// is taken only for the lifetime of the event.
func (e *Engine) detachedDisconnect(conn quicgo.Connection, reason engine.DisconnectReason) {
    p := &peer{e: e, id: e.ids.Acquire(), conn: conn}
    p.closed.Store(true)
    e.queue.Push(engine.Event{Kind: engine.KindDisconnected, Peer: p, Reason: reason})
    e.ids.Release(p.id)
}

func (e *Engine) acceptLoop(ln *quicgo.Listener) error {
    for {
        conn, err := ln.Accept(e.ctx)
        if err != nil {
            if e.ctx.Err() != nil || ignoreClosed(err) == nil { return nil }
            e.log.Warn("accept", zap.Error(err))
            e.queue.Push(engine.Event{Kind: engine.KindError, RemoteAddr: ln.Addr(), Err: fmt.Errorf("accept: %w", err)})
            return nil
        }
        e.group.Go(func() error { e.handshake(conn); return nil })
    }
}

// handshake reads the client's hello and turns a valid one into a
// ConnectionRequest event. Requests not answered within the handshake
// timeout are rejected.
func (e *Engine) handshake(conn quicgo.Connection) {
    ctx, cancel := context.WithTimeout(e.ctx, e.opts.HandshakeTimeout)
    defer cancel()
    s, err := conn.AcceptStream(ctx)
    if err != nil {
        _ = conn.CloseWithError(codeProtocol, "no control stream")
        return
    }
    ctrl := newFrameStream(s, e.opts.MaxMessageSize)
    if dl, ok := ctx.Deadline(); ok { _ = s.SetReadDeadline(dl) }
    typ, body, err := ctrl.read()
    if err != nil || typ != frameHello {
        e.log.Debug("no hello", zap.Stringer("raddr", conn.RemoteAddr()), zap.Error(err))
        _ = conn.CloseWithError(codeProtocol, "expected hello")
        return
    }
    _ = s.SetReadDeadline(time.Time{})
    var h hello
    if err := e.opts.Codec.Unmarshal(body, &h); err != nil || h.Version != protocolVersion {
        e.log.Debug("bad hello", zap.Stringer("raddr", conn.RemoteAddr()), zap.Error(err))
        _ = conn.CloseWithError(codeProtocol, "bad hello")
        return
    }
    if h.Key != e.opts.ConnectKey {
        e.log.Info("connect key mismatch", zap.Stringer("raddr", conn.RemoteAddr()))
        _ = conn.CloseWithError(codeInvalidKey, "invalid connect key")
        return
    }
    if e.isStopped() {
        _ = conn.CloseWithError(codeShutdown, "engine stopped")
        return
    }
    r := &request{e: e, conn: conn, ctrl: ctrl}
    time.AfterFunc(e.opts.HandshakeTimeout, func() {
        if r.handled.CompareAndSwap(false, true) {
            _ = conn.CloseWithError(codeRejected, "request expired")
        }
    })
    e.queue.Push(engine.Event{Kind: engine.KindConnectionRequest, RemoteAddr: conn.RemoteAddr(), Request: r})
}

func (e *Engine) addPeer(conn quicgo.Connection, ctrl *frameStream) (*peer, error) {
    e.mu.Lock()
    defer e.mu.Unlock()
    if e.stopped { return nil, engine.ErrStopped }
    p := &peer{e: e, id: e.ids.Acquire(), conn: conn, ctrl: ctrl}
    e.peers[p.id] = p
    return p, nil
}

// discardPeer undoes addPeer for a peer whose Connected event was never
// queued.
func (e *Engine) discardPeer(p *peer) {
    p.once.Do(func() {
        p.closed.Store(true)
        e.mu.Lock()
        if cur, ok := e.peers[p.id]; ok && cur == p { delete(e.peers, p.id) }
        e.mu.Unlock()
        e.ids.Release(p.id)
    })
}

func (e *Engine) startPeer(p *peer) {
    ctx := p.conn.Context()
    e.group.Go(func() error { p.readControl(); return nil })
    e.group.Go(func() error { p.readUni(ctx); return nil })
    e.group.Go(func() error { p.readDatagrams(ctx); return nil })
    e.group.Go(func() error {
        <-ctx.Done()
        e.dropPeer(p, reasonFor(context.Cause(ctx)))
        return nil
    })
}

// dropPeer queues the single Disconnected event of p. The id goes back to the
// pool only after the event is queued so a reused id is never observed before
// the disconnect of its previous owner.
func (e *Engine) dropPeer(p *peer, reason engine.DisconnectReason) {
    p.once.Do(func() {
        p.closed.Store(true)
        e.mu.Lock()
        if cur, ok := e.peers[p.id]; ok && cur == p { delete(e.peers, p.id) }
        e.mu.Unlock()
        e.log.Debug("peer disconnected", zap.Int("peer", int(p.id)), zap.Stringer("reason", reason))
        e.queue.Push(engine.Event{Kind: engine.KindDisconnected, Peer: p, Reason: reason})
        e.ids.Release(p.id)
    })
}

func (e *Engine) DisconnectPeer(p engine.Peer) error {
    qp, ok := p.(*peer)
    if !ok || qp.e != e || qp.closed.Load() { return engine.ErrPeerNotFound }
    e.dropPeer(qp, engine.ReasonDisconnectPeerCalled)
    return ignoreClosed(qp.conn.CloseWithError(codeDisconnect, "disconnect"))
}

func (e *Engine) PollEvent() (engine.Event, bool) { return e.queue.Pop() }

func (e *Engine) PeerCount() int {
    e.mu.Lock()
    defer e.mu.Unlock()
    return len(e.peers)
}

func (e *Engine) LocalAddr() net.Addr {
    e.mu.Lock()
    defer e.mu.Unlock()
    if e.udp == nil { return nil }
    return e.udp.LocalAddr()
}

func (e *Engine) isStopped() bool {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.stopped
}

func (e *Engine) transport() *quicgo.Transport {
    e.mu.Lock()
    defer e.mu.Unlock()
    if e.stopped { return nil }
    return e.tr
}

func (e *Engine) startDiscovery(tr *quicgo.Transport) {
    if !e.opts.Discovery { return }
    e.mu.Lock()
    if e.discovering || e.stopped {
        e.mu.Unlock()
        return
    }
    e.discovering = true
    e.mu.Unlock()
    // quic-go drops non-QUIC packets until the first ReadNonQUICPacket call,
    // so register the reader before Listen/Connect return.
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    _, _, _ = tr.ReadNonQUICPacket(ctx, nil)
    e.group.Go(func() error { return e.discoveryLoop(tr) })
}

func (e *Engine) discoveryLoop(tr *quicgo.Transport) error {
    buf := make([]byte, 1500)
    for {
        n, addr, err := tr.ReadNonQUICPacket(e.ctx, buf)
        if err != nil { return nil }
        kind, payload, ok := parseDiscovery(buf[:n])
        if !ok { continue }
        e.queue.Push(engine.Event{Kind: kind, RemoteAddr: addr, Data: payload})
    }
}

func (e *Engine) SendDiscoveryRequest(data []byte, address string, port int) error {
    tr := e.transport()
    if tr == nil { return engine.ErrNotStarted }
    if discoveryHeader+len(data) > maxDiscoverySize { return engine.ErrMessageTooLarge }
    if address == "" { address = net.IPv4bcast.String() }
    raddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(address, strconv.Itoa(port)))
    if err != nil { return fmt.Errorf("resolve %s:%d: %w", address, port, err) }
    _, err = tr.WriteTo(encodeDiscovery(discoveryRequest, data), raddr)
    return err
}

func (e *Engine) SendDiscoveryResponse(data []byte, addr net.Addr) error {
    tr := e.transport()
    if tr == nil { return engine.ErrNotStarted }
    if addr == nil { return errors.New("quic: discovery response needs an address") }
    if discoveryHeader+len(data) > maxDiscoverySize { return engine.ErrMessageTooLarge }
    _, err := tr.WriteTo(encodeDiscovery(discoveryResponse, data), addr)
    return err
}

// Stop closes every peer with a shutdown code, then the listener and the
// socket, and waits for the engine goroutines. Pending events are dropped
// and no Disconnected events are queued for the closed peers.
func (e *Engine) Stop() error {
    e.mu.Lock()
    if e.stopped {
        e.mu.Unlock()
        return nil
    }
    e.stopped = true
    peers := make([]*peer, 0, len(e.peers))
    for _, p := range e.peers { peers = append(peers, p) }
    e.peers = make(map[engine.PeerID]*peer)
    ln, tr, udp := e.ln, e.tr, e.udp
    e.mu.Unlock()

    var err error
    for _, p := range peers {
        p.once.Do(func() { p.closed.Store(true) })
        err = multierr.Append(err, ignoreClosed(p.conn.CloseWithError(codeShutdown, "shutdown")))
    }
    e.queue.Close()
    if ln != nil { err = multierr.Append(err, ignoreClosed(ln.Close())) }
    if tr != nil { err = multierr.Append(err, ignoreClosed(tr.Close())) }
    if udp != nil { err = multierr.Append(err, ignoreClosed(udp.Close())) }
    e.cancel()
    _ = e.group.Wait()
    e.log.Debug("stopped", zap.Int("peers", len(peers)))
    return err
}
