package quic

import (
    "context"
    "errors"
    "net"

    quicgo "github.com/quic-go/quic-go"

    "pollnet/pkg/engine"
)

// Application close codes.
const (
    codeDisconnect quicgo.ApplicationErrorCode = 0x10
    codeRejected   quicgo.ApplicationErrorCode = 0x11
    codeInvalidKey quicgo.ApplicationErrorCode = 0x12
    codeProtocol   quicgo.ApplicationErrorCode = 0x13
    codeShutdown   quicgo.ApplicationErrorCode = 0x14
)

const streamCodeTooLarge quicgo.StreamErrorCode = 0x20

var (
    errRejected = errors.New("quic: connection rejected")
    errProtocol = errors.New("quic: protocol violation")
)

// reasonFor maps the error that ended a connection (or its handshake) to a
// disconnect reason.
func reasonFor(err error) engine.DisconnectReason {
    if errors.Is(err, errRejected) { return engine.ReasonConnectionRejected }
    if errors.Is(err, errProtocol) || errors.Is(err, errFrameSize) { return engine.ReasonInvalidProtocol }

    var appErr *quicgo.ApplicationError
    if errors.As(err, &appErr) {
        if !appErr.Remote { return engine.ReasonDisconnectPeerCalled }
        switch appErr.ErrorCode {
        case codeRejected, codeInvalidKey:
            return engine.ReasonConnectionRejected
        case codeProtocol:
            return engine.ReasonInvalidProtocol
        default:
            return engine.ReasonRemoteConnectionClose
        }
    }
    var idleErr *quicgo.IdleTimeoutError
    if errors.As(err, &idleErr) { return engine.ReasonTimeout }
    var hsErr *quicgo.HandshakeTimeoutError
    if errors.As(err, &hsErr) { return engine.ReasonTimeout }
    if errors.Is(err, context.DeadlineExceeded) { return engine.ReasonTimeout }
    var netErr net.Error
    if errors.As(err, &netErr) && netErr.Timeout() { return engine.ReasonTimeout }
    return engine.ReasonConnectionFailed
}

// ignoreClosed drops "use of closed network connection" style errors from
// teardown paths.
func ignoreClosed(err error) error {
    if err == nil || errors.Is(err, net.ErrClosed) || errors.Is(err, quicgo.ErrServerClosed) { return nil }
    return err
}
