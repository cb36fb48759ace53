package transport

import (
    "fmt"
    "net"

    "go.uber.org/zap"

    "pollnet/pkg/codec"
    "pollnet/pkg/engine"
)

// ServerInfo is the discovery response payload of a server.
type ServerInfo struct {
    Name           string `cbor:"name" json:"name"`
    Port           int    `cbor:"port" json:"port"`
    Peers          int    `cbor:"peers" json:"peers"`
    MaxConnections int    `cbor:"max" json:"max"`
}

func (t *Transport) answerDiscovery(ev engine.Event) {
    if !t.opts.AnswerDiscovery || !t.ServerActive() || ev.RemoteAddr == nil { return }
    info := ServerInfo{
        Name:           t.opts.ServerName,
        Port:           t.port,
        Peers:          t.eng.PeerCount(),
        MaxConnections: t.maxConnections,
    }
    if a, ok := t.eng.LocalAddr().(*net.UDPAddr); ok { info.Port = a.Port }
    b, err := t.opts.Codec.Marshal(info)
    if err == nil { err = t.eng.SendDiscoveryResponse(b, ev.RemoteAddr) }
    if err != nil {
        t.log.Debug("discovery response", zap.Stringer("raddr", ev.RemoteAddr), zap.Error(err))
    }
}

// Found is one discovery answer.
type Found struct {
    Addr net.Addr
    Info ServerInfo
}

// Probe broadcasts discovery requests and collects server answers. It owns
// its own engine, separate from any Transport.
type Probe struct {
    eng   engine.Engine
    codec codec.Codec
}

// NewProbe binds an engine from factory on an ephemeral port.
func NewProbe(factory engine.Factory, c codec.Codec) (*Probe, error) {
    if c == nil { c = codec.Default() }
    eng := factory()
    if err := eng.Listen("", 0); err != nil {
        _ = eng.Stop()
        return nil, fmt.Errorf("probe: %w", err)
    }
    return &Probe{eng: eng, codec: c}, nil
}

// Send asks servers at address:port to identify; an empty address
// broadcasts.
func (p *Probe) Send(address string, port int) error {
    return p.eng.SendDiscoveryRequest(nil, address, port)
}

// Poll returns the next decodable answer, or false when none is pending.
func (p *Probe) Poll() (Found, bool) {
    for {
        ev, ok := p.eng.PollEvent()
        if !ok { return Found{}, false }
        if ev.Kind != engine.KindDiscoveryResponse { continue }
        var info ServerInfo
        if err := p.codec.Unmarshal(ev.Data, &info); err != nil { continue }
        return Found{Addr: ev.RemoteAddr, Info: info}, true
    }
}

func (p *Probe) Close() error { return p.eng.Stop() }
