package quic

import (
    "context"
    "encoding/binary"
    "errors"
    "fmt"
    "io"
    "net"
    "sync"
    "sync/atomic"

    quicgo "github.com/quic-go/quic-go"

    "pollnet/pkg/engine"
)

// peer is one established QUIC connection.
//
// Delivery methods map onto QUIC as follows:
//   - ReliableOrdered: data frames on the bidirectional control stream
//   - ReliableUnordered: one unidirectional stream per message
//   - Sequenced: datagram [method][seq u16 LE][payload], stale ones dropped
//   - Unreliable: datagram [method][payload]
type peer struct {
    e    *Engine
    id   engine.PeerID
    conn quicgo.Connection
    ctrl *frameStream

    sendSeq atomic.Uint32
    recvSeq seqFilter

    closed atomic.Bool
    once   sync.Once
}

var _ engine.Peer = (*peer)(nil)

func (p *peer) ID() engine.PeerID { return p.id }
func (p *peer) RemoteAddr() net.Addr { return p.conn.RemoteAddr() }

func (p *peer) Send(data []byte, method engine.DeliveryMethod) error {
    if p.closed.Load() { return engine.ErrPeerClosed }
    if max := p.e.opts.MaxMessageSize; len(data) > max {
        return fmt.Errorf("%w: %d > %d bytes", engine.ErrMessageTooLarge, len(data), max)
    }
    switch method {
    case engine.ReliableOrdered:
        return p.ctrl.write(frameData, data)
    case engine.ReliableUnordered:
        s, err := p.conn.OpenUniStream()
        if err != nil { return fmt.Errorf("open stream: %w", err) }
        if _, err := s.Write(data); err != nil {
            s.CancelWrite(0)
            return err
        }
        return s.Close()
    case engine.Sequenced:
        buf := make([]byte, 3+len(data))
        buf[0] = byte(method)
        binary.LittleEndian.PutUint16(buf[1:3], uint16(p.sendSeq.Add(1)))
        copy(buf[3:], data)
        return p.sendDatagram(buf)
    case engine.Unreliable:
        buf := make([]byte, 1+len(data))
        buf[0] = byte(method)
        copy(buf[1:], data)
        return p.sendDatagram(buf)
    default:
        return engine.ErrUnknownMethod
    }
}

// sendDatagram reports datagrams above the path's DATAGRAM frame limit as
// engine.ErrMessageTooLarge.
func (p *peer) sendDatagram(b []byte) error {
    err := p.conn.SendDatagram(b)
    var tooLarge *quicgo.DatagramTooLargeError
    if errors.As(err, &tooLarge) {
        return fmt.Errorf("%w: datagram %d > %d bytes", engine.ErrMessageTooLarge, len(b), tooLarge.MaxDatagramPayloadSize)
    }
    return err
}

func (p *peer) Flush() error {
    if p.closed.Load() { return engine.ErrPeerClosed }
    return p.ctrl.flush()
}

func (p *peer) deliver(data []byte, method engine.DeliveryMethod) {
    p.e.queue.Push(engine.Event{Kind: engine.KindReceive, Peer: p, Data: data, Method: method})
}

func (p *peer) readControl() {
    for {
        typ, body, err := p.ctrl.read()
        if err != nil {
            if err == errFrameSize {
                _ = p.conn.CloseWithError(codeProtocol, "oversized frame")
                p.e.dropPeer(p, engine.ReasonInvalidProtocol)
            }
            return
        }
        if typ == frameData { p.deliver(body, engine.ReliableOrdered) }
        // other frame types are ignored after the handshake
    }
}

func (p *peer) readUni(ctx context.Context) {
    for {
        rs, err := p.conn.AcceptUniStream(ctx)
        if err != nil { return }
        p.e.group.Go(func() error { p.readUniMessage(rs); return nil })
    }
}

func (p *peer) readUniMessage(rs quicgo.ReceiveStream) {
    max := p.e.opts.MaxMessageSize
    data, err := io.ReadAll(io.LimitReader(rs, int64(max)+1))
    if err != nil { return }
    if len(data) > max {
        rs.CancelRead(streamCodeTooLarge)
        return
    }
    p.deliver(data, engine.ReliableUnordered)
}

func (p *peer) readDatagrams(ctx context.Context) {
    for {
        b, err := p.conn.ReceiveDatagram(ctx)
        if err != nil { return }
        if data, method, ok := p.parseDatagram(b); ok {
            p.deliver(data, method)
        }
    }
}

func (p *peer) parseDatagram(b []byte) ([]byte, engine.DeliveryMethod, bool) {
    if len(b) < 1 { return nil, 0, false }
    switch method := engine.DeliveryMethod(b[0]); method {
    case engine.Sequenced:
        if len(b) < 3 { return nil, 0, false }
        if !p.recvSeq.accept(binary.LittleEndian.Uint16(b[1:3])) { return nil, 0, false }
        return append([]byte(nil), b[3:]...), method, true
    case engine.Unreliable:
        return append([]byte(nil), b[1:]...), method, true
    default:
        return nil, 0, false
    }
}
