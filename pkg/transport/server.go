package transport

import (
    "fmt"

    "go.uber.org/zap"

    "pollnet/pkg/engine"
)

// ServerStart allocates an engine and binds address:port. The server is
// active only if the bind succeeds; on failure the Transport stays idle.
func (t *Transport) ServerStart(address string, port, maxConnections int) error {
    if t.eng != nil {
        t.log.Warn("server start while active", zap.Stringer("role", t.role))
        return ErrAlreadyActive
    }
    if maxConnections < 0 { maxConnections = 0 }
    eng := t.opts.Engine()
    if err := eng.Listen(address, port); err != nil {
        _ = eng.Stop()
        return fmt.Errorf("server start %s:%d: %w", address, port, err)
    }
    t.eng = eng
    t.role = RoleServer
    t.active = true
    t.port = port
    t.maxConnections = maxConnections
    t.log.Info("server started",
        zap.String("address", address),
        zap.Int("port", port),
        zap.Int("max_connections", maxConnections),
        zap.Stringer("laddr", eng.LocalAddr()))
    return nil
}

// ServerStartWebsockets is not supported.
func (t *Transport) ServerStartWebsockets(address string, port, maxConnections int) error {
    return fmt.Errorf("%w: websocket server", ErrUnimplemented)
}

// ServerStop stops the server. It is a no-op unless the server role is
// running.
func (t *Transport) ServerStop() error {
    if t.role != RoleServer { return nil }
    return t.stop()
}

func (t *Transport) ServerActive() bool { return t.role == RoleServer && t.active }

// ServerSend sends data to connectionID on channelID and flushes.
func (t *Transport) ServerSend(connectionID, channelID int, data []byte) error {
    method, ok := DeliveryModeFor(channelID)
    if !ok { return fmt.Errorf("%w: %d", ErrInvalidChannel, channelID) }
    p := t.peers.Get(engine.PeerID(connectionID))
    if p == nil || !t.ServerActive() { return fmt.Errorf("%w: %d", ErrPeerNotFound, connectionID) }
    return t.send(p, method, data)
}

// ServerDisconnect closes connectionID. Its Disconnected message is still
// delivered by ServerGetNextMessage.
func (t *Transport) ServerDisconnect(connectionID int) error {
    p := t.peers.Get(engine.PeerID(connectionID))
    if p == nil || !t.ServerActive() { return fmt.Errorf("%w: %d", ErrPeerNotFound, connectionID) }
    if err := t.eng.DisconnectPeer(p); err != nil {
        return fmt.Errorf("disconnect %d: %w", connectionID, err)
    }
    if t.peers.Remove(p) { t.obs.OnPeerCount(t.role, t.peers.Len()) }
    return nil
}

// GetConnectionInfo returns the remote address of connectionID.
func (t *Transport) GetConnectionInfo(connectionID int) (string, bool) {
    p := t.peers.Get(engine.PeerID(connectionID))
    if p == nil { return "", false }
    addr := p.RemoteAddr()
    if addr == nil { return "", false }
    return addr.String(), true
}

func (t *Transport) send(p engine.Peer, method engine.DeliveryMethod, data []byte) error {
    err := p.Send(data, method)
    if err == nil { err = p.Flush() }
    t.obs.OnSend(t.role, method, len(data), err)
    if err != nil { return fmt.Errorf("send to %d: %w", p.ID(), err) }
    return nil
}
