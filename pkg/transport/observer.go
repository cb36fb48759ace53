package transport

import (
    "net"

    "go.uber.org/zap"

    "pollnet/pkg/engine"
)

// Observer is a structured sink for what the transport does. Calls happen on
// the polling goroutine and must not block.
type Observer interface {
    // OnEvent is called for every engine event the transport consumes.
    OnEvent(role Role, ev engine.Event)
    // OnAdmission is called for every connection request.
    OnAdmission(d Decision, remote net.Addr, current, max int)
    // OnSend is called after every send attempt that reached a peer.
    OnSend(role Role, method engine.DeliveryMethod, size int, err error)
    // OnPeerCount reports the number of connected peers after it changed.
    OnPeerCount(role Role, n int)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) OnEvent(Role, engine.Event)                     {}
func (NopObserver) OnAdmission(Decision, net.Addr, int, int)       {}
func (NopObserver) OnSend(Role, engine.DeliveryMethod, int, error) {}
func (NopObserver) OnPeerCount(Role, int)                          {}

// MultiObserver fans out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnEvent(role Role, ev engine.Event) {
    for _, o := range m { o.OnEvent(role, ev) }
}

func (m MultiObserver) OnAdmission(d Decision, remote net.Addr, current, max int) {
    for _, o := range m { o.OnAdmission(d, remote, current, max) }
}

func (m MultiObserver) OnSend(role Role, method engine.DeliveryMethod, size int, err error) {
    for _, o := range m { o.OnSend(role, method, size, err) }
}

func (m MultiObserver) OnPeerCount(role Role, n int) {
    for _, o := range m { o.OnPeerCount(role, n) }
}

// LogObserver writes events to a zap logger: traffic at debug, lifecycle
// and admission at info, errors at warn.
type LogObserver struct{ log *zap.Logger }

func NewLogObserver(l *zap.Logger) *LogObserver {
    if l == nil { l = zap.L() }
    return &LogObserver{log: l}
}

func (o *LogObserver) OnEvent(role Role, ev engine.Event) {
    fields := []zap.Field{zap.Stringer("role", role), zap.Stringer("kind", ev.Kind)}
    if ev.Peer != nil { fields = append(fields, zap.Int("peer", int(ev.PeerID()))) }
    if ev.RemoteAddr != nil { fields = append(fields, zap.Stringer("raddr", ev.RemoteAddr)) }
    switch ev.Kind {
    case engine.KindReceive:
        o.log.Debug("received", append(fields, zap.Int("bytes", len(ev.Data)), zap.Stringer("method", ev.Method))...)
    case engine.KindConnected:
        o.log.Info("peer connected", fields...)
    case engine.KindDisconnected:
        o.log.Info("peer disconnected", append(fields, zap.Stringer("reason", ev.Reason))...)
    case engine.KindError:
        o.log.Warn("network error", append(fields, zap.Error(ev.Err))...)
    default:
        o.log.Debug("engine event", fields...)
    }
}

func (o *LogObserver) OnAdmission(d Decision, remote net.Addr, current, max int) {
    o.log.Info("connection request",
        zap.Stringer("decision", d),
        zap.Stringer("raddr", remote),
        zap.Int("peers", current),
        zap.Int("max", max))
}

func (o *LogObserver) OnSend(role Role, method engine.DeliveryMethod, size int, err error) {
    if err != nil {
        o.log.Warn("send failed", zap.Stringer("role", role), zap.Stringer("method", method), zap.Int("bytes", size), zap.Error(err))
        return
    }
    o.log.Debug("sent", zap.Stringer("role", role), zap.Stringer("method", method), zap.Int("bytes", size))
}

func (o *LogObserver) OnPeerCount(role Role, n int) {
    o.log.Debug("peer count", zap.Stringer("role", role), zap.Int("peers", n))
}
