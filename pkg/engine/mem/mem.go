// Package mem is an in-process engine.Engine. Engines attached to the same
// Network reach each other by "address:port" names without touching a socket.
// Every operation takes effect synchronously, which makes event order
// deterministic in tests.
package mem

import (
    "errors"
    "fmt"
    "net"
    "strconv"
    "sync"

    "pollnet/pkg/engine"
)

var (
    ErrAddrInUse = errors.New("mem: address already in use")
)

const firstEphemeralPort = 40000

// Network links mem engines.
type Network struct {
    mu      sync.Mutex
    engines map[string]*Engine
    next    int
}

func NewNetwork() *Network { return &Network{engines: make(map[string]*Engine), next: firstEphemeralPort} }

// Factory returns an engine.Factory whose engines attach to n.
func (n *Network) Factory() engine.Factory {
    return func() engine.Engine { return New(n) }
}

func (n *Network) register(e *Engine, address string, port int) (Addr, error) {
    n.mu.Lock()
    defer n.mu.Unlock()
    if address == "" { address = "0.0.0.0" }
    if port == 0 {
        port = n.next
        n.next++
    }
    a := Addr{Host: address, Port: port}
    if _, ok := n.engines[a.String()]; ok { return Addr{}, fmt.Errorf("%w: %s", ErrAddrInUse, a) }
    n.engines[a.String()] = e
    return a, nil
}

func (n *Network) unregister(a Addr) {
    n.mu.Lock()
    delete(n.engines, a.String())
    n.mu.Unlock()
}

func (n *Network) lookup(name string) *Engine {
    n.mu.Lock()
    defer n.mu.Unlock()
    return n.engines[name]
}

// listenersOn returns the listening engines bound to port, for broadcasts.
func (n *Network) listenersOn(port int) []*Engine {
    n.mu.Lock()
    all := make([]*Engine, 0, len(n.engines))
    for _, e := range n.engines { all = append(all, e) }
    n.mu.Unlock()

    var out []*Engine
    for _, e := range all {
        e.mu.Lock()
        ok := e.listening && !e.stopped && e.addr.Port == port
        e.mu.Unlock()
        if ok { out = append(out, e) }
    }
    return out
}

// Addr is the net.Addr of a mem engine.
type Addr struct {
    Host string
    Port int
}

func (a Addr) Network() string { return "mem" }
func (a Addr) String() string  { return net.JoinHostPort(a.Host, strconv.Itoa(a.Port)) }

// Engine is one endpoint on a Network.
type Engine struct {
    net *Network

    mu        sync.Mutex
    bound     bool
    listening bool
    stopped   bool
    addr      Addr
    peers     map[engine.PeerID]*Peer

    ids   engine.IDPool
    queue engine.Queue
}

var _ engine.Engine = (*Engine)(nil)

func New(n *Network) *Engine {
    return &Engine{net: n, peers: make(map[engine.PeerID]*Peer)}
}

func (e *Engine) isListening() bool {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.listening && !e.stopped
}

func (e *Engine) bind(address string, port int) error {
    if e.stopped { return engine.ErrStopped }
    if e.bound { return engine.ErrAlreadyStarted }
    a, err := e.net.register(e, address, port)
    if err != nil { return err }
    e.addr, e.bound = a, true
    return nil
}

func (e *Engine) Listen(address string, port int) error {
    e.mu.Lock()
    defer e.mu.Unlock()
    if err := e.bind(address, port); err != nil { return err }
    e.listening = true
    return nil
}

// Connect queues a ConnectionRequest on the engine bound to address:port, or
// an Error event on e when nothing listens there.
func (e *Engine) Connect(address string, port int) error {
    e.mu.Lock()
    if !e.bound {
        if err := e.bind("client", 0); err != nil {
            e.mu.Unlock()
            return err
        }
    } else if e.stopped {
        e.mu.Unlock()
        return engine.ErrStopped
    }
    local := e.addr
    e.mu.Unlock()

    target := Addr{Host: address, Port: port}
    srv := e.net.lookup(target.String())
    if srv == nil || !srv.isListening() {
        e.queue.Push(engine.Event{Kind: engine.KindError, RemoteAddr: target, Err: fmt.Errorf("dial %s: connection refused", target)})
        return nil
    }
    srv.queue.Push(engine.Event{
        Kind:       engine.KindConnectionRequest,
        RemoteAddr: local,
        Request:    &request{srv: srv, cli: e, raddr: local},
    })
    return nil
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
    if !e.bound { return nil }
    return e.addr
}

// Inject queues ev as if the engine had produced it.
func (e *Engine) Inject(ev engine.Event) { e.queue.Push(ev) }

// Pending returns the number of queued events.
func (e *Engine) Pending() int { return e.queue.Len() }

func (e *Engine) addPeer(remote Addr) (*Peer, error) {
    e.mu.Lock()
    defer e.mu.Unlock()
    if e.stopped { return nil, engine.ErrStopped }
    p := &Peer{e: e, id: e.ids.Acquire(), raddr: remote}
    e.peers[p.id] = p
    return p, nil
}

// discard removes p without queueing an event.
func (e *Engine) discard(p *Peer) {
    e.mu.Lock()
    if cur, ok := e.peers[p.id]; ok && cur == p {
        delete(e.peers, p.id)
        p.closed = true
    }
    e.mu.Unlock()
    e.ids.Release(p.id)
}

// drop queues the single Disconnected event of p and releases its id.
func (e *Engine) drop(p *Peer, reason engine.DisconnectReason) bool {
    e.mu.Lock()
    cur, ok := e.peers[p.id]
    if !ok || cur != p {
        e.mu.Unlock()
        return false
    }
    delete(e.peers, p.id)
    p.closed = true
    e.mu.Unlock()
    e.queue.Push(engine.Event{Kind: engine.KindDisconnected, Peer: p, Reason: reason})
    e.ids.Release(p.id)
    return true
}

func (e *Engine) DisconnectPeer(p engine.Peer) error {
    mp, ok := p.(*Peer)
    if !ok || mp.e != e { return engine.ErrPeerNotFound }
    remote := mp.link()
    if !e.drop(mp, engine.ReasonDisconnectPeerCalled) { return engine.ErrPeerNotFound }
    if remote != nil { remote.e.drop(remote, engine.ReasonRemoteConnectionClose) }
    return nil
}

func (e *Engine) SendDiscoveryRequest(data []byte, address string, port int) error {
    e.mu.Lock()
    if !e.bound || e.stopped {
        e.mu.Unlock()
        return engine.ErrNotStarted
    }
    from := e.addr
    e.mu.Unlock()

    var targets []*Engine
    if address == "" {
        targets = e.net.listenersOn(port)
    } else if t := e.net.lookup(Addr{Host: address, Port: port}.String()); t != nil {
        targets = []*Engine{t}
    }
    for _, t := range targets {
        if t == e { continue }
        t.queue.Push(engine.Event{Kind: engine.KindDiscoveryRequest, RemoteAddr: from, Data: append([]byte(nil), data...)})
    }
    return nil
}

func (e *Engine) SendDiscoveryResponse(data []byte, addr net.Addr) error {
    e.mu.Lock()
    if !e.bound || e.stopped {
        e.mu.Unlock()
        return engine.ErrNotStarted
    }
    from := e.addr
    e.mu.Unlock()
    if addr == nil { return errors.New("mem: discovery response needs an address") }
    if t := e.net.lookup(addr.String()); t != nil {
        t.queue.Push(engine.Event{Kind: engine.KindDiscoveryResponse, RemoteAddr: from, Data: append([]byte(nil), data...)})
    }
    return nil
}

// Stop closes every peer (remote ends observe RemoteConnectionClose), drops
// pending events and releases the address.
func (e *Engine) Stop() error {
    e.mu.Lock()
    if e.stopped {
        e.mu.Unlock()
        return nil
    }
    e.stopped = true
    peers := make([]*Peer, 0, len(e.peers))
    for _, p := range e.peers {
        p.closed = true
        peers = append(peers, p)
    }
    e.peers = make(map[engine.PeerID]*Peer)
    bound, addr := e.bound, e.addr
    e.mu.Unlock()

    for _, p := range peers {
        if remote := p.link(); remote != nil { remote.e.drop(remote, engine.ReasonRemoteConnectionClose) }
    }
    e.queue.Close()
    if bound { e.net.unregister(addr) }
    return nil
}
