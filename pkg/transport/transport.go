package transport

import (
    "errors"
    "net"

    "go.uber.org/zap"

    "pollnet/pkg/codec"
    "pollnet/pkg/engine"
)

// EventType is the externally visible kind of a Message.
type EventType int

const (
    EventConnected EventType = iota
    EventData
    EventDisconnected
)

func (t EventType) String() string {
    switch t {
    case EventConnected:
        return "connected"
    case EventData:
        return "data"
    case EventDisconnected:
        return "disconnected"
    default:
        return "unknown"
    }
}

// Message is one polled event. Data is set for EventData only and belongs
// to the caller.
type Message struct {
    Event        EventType
    ConnectionID int
    Data         []byte
}

// Role is the mode a Transport currently runs in.
type Role int

const (
    RoleNone Role = iota
    RoleClient
    RoleServer
)

func (r Role) String() string {
    switch r {
    case RoleClient:
        return "client"
    case RoleServer:
        return "server"
    default:
        return "none"
    }
}

// Layer is the polling transport contract consumed by the game framework.
type Layer interface {
    ClientConnect(address string, port int) error
    ClientConnected() bool
    ClientDisconnect() error
    ClientGetNextMessage() (Message, bool)
    ClientSend(channelID int, data []byte) error

    ServerStart(address string, port, maxConnections int) error
    ServerStartWebsockets(address string, port, maxConnections int) error
    ServerStop() error
    ServerActive() bool
    ServerGetNextMessage() (Message, bool)
    ServerSend(connectionID, channelID int, data []byte) error
    ServerDisconnect(connectionID int) error
    GetConnectionInfo(connectionID int) (string, bool)

    Shutdown() error
}

// Options configures a Transport.
type Options struct {
    // Engine allocates a fresh engine on every ClientConnect/ServerStart.
    Engine engine.Factory
    // Observer receives bridged events; nil logs through Logger.
    Observer Observer
    Logger   *zap.Logger
    // AnswerDiscovery makes a server reply to discovery requests with its
    // ServerInfo.
    AnswerDiscovery bool
    // ServerName is advertised in ServerInfo.
    ServerName string
    // Codec encodes ServerInfo; defaults to CBOR.
    Codec codec.Codec
}

// Transport implements Layer on top of an engine.Engine.
type Transport struct {
    opts Options
    log  *zap.Logger
    obs  Observer

    eng            engine.Engine
    role           Role
    active         bool // server bound
    connected      bool // client saw Connected
    port           int
    maxConnections int
    peers          *Registry
}

var _ Layer = (*Transport)(nil)

func New(opts Options) (*Transport, error) {
    if opts.Engine == nil { return nil, errors.New("transport: engine factory is required") }
    if opts.Logger == nil { opts.Logger = zap.L() }
    if opts.Observer == nil { opts.Observer = NewLogObserver(opts.Logger) }
    if opts.Codec == nil { opts.Codec = codec.Default() }
    return &Transport{
        opts:  opts,
        log:   opts.Logger,
        obs:   opts.Observer,
        peers: NewRegistry(),
    }, nil
}

// Role reports the running role.
func (t *Transport) Role() Role { return t.role }

// LocalAddr returns the bound address of the current engine, or nil.
func (t *Transport) LocalAddr() net.Addr {
    if t.eng == nil { return nil }
    return t.eng.LocalAddr()
}

// Peers returns the connected peer ids in ascending order.
func (t *Transport) Peers() []int {
    all := t.peers.All()
    out := make([]int, len(all))
    for i, p := range all { out[i] = int(p.ID()) }
    return out
}

// Shutdown stops whichever role is running. It is a no-op when idle.
func (t *Transport) Shutdown() error {
    if t.eng == nil { return nil }
    return t.stop()
}

// stop releases the engine and clears all role state.
func (t *Transport) stop() error {
    eng, role := t.eng, t.role
    t.eng = nil
    t.role = RoleNone
    t.active = false
    t.connected = false
    t.port = 0
    t.maxConnections = 0
    hadPeers := t.peers.Len() > 0
    t.peers.Reset()
    if hadPeers { t.obs.OnPeerCount(role, 0) }
    if eng == nil { return nil }
    t.log.Info("transport stopped", zap.Stringer("role", role))
    return eng.Stop()
}
