package transport

import (
    "fmt"

    "go.uber.org/zap"
)

// ClientConnect allocates an engine on an ephemeral port and starts
// connecting to address:port. ClientConnected turns true once the Connected
// message has been polled.
func (t *Transport) ClientConnect(address string, port int) error {
    if t.eng != nil {
        t.log.Warn("client connect while active", zap.Stringer("role", t.role))
        return ErrAlreadyActive
    }
    eng := t.opts.Engine()
    if err := eng.Connect(address, port); err != nil {
        _ = eng.Stop()
        return fmt.Errorf("client connect %s:%d: %w", address, port, err)
    }
    t.eng = eng
    t.role = RoleClient
    t.connected = false
    t.port = port
    t.log.Info("client connecting", zap.String("address", address), zap.Int("port", port))
    return nil
}

func (t *Transport) ClientConnected() bool { return t.role == RoleClient && t.connected }

// ClientDisconnect stops the client. It is a no-op unless the client role
// is running.
func (t *Transport) ClientDisconnect() error {
    if t.role != RoleClient { return nil }
    return t.stop()
}

// ClientSend sends data to the server on channelID and flushes.
func (t *Transport) ClientSend(channelID int, data []byte) error {
    method, ok := DeliveryModeFor(channelID)
    if !ok { return fmt.Errorf("%w: %d", ErrInvalidChannel, channelID) }
    if t.role != RoleClient || !t.connected { return ErrNotConnected }
    p := t.peers.First()
    if p == nil { return ErrNotConnected }
    return t.send(p, method, data)
}
