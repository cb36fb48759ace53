package quic

import (
    "context"
    "errors"
    "fmt"
    "testing"

    quicgo "github.com/quic-go/quic-go"
    "github.com/stretchr/testify/assert"

    "pollnet/pkg/engine"
)

func TestReasonFor(t *testing.T) {
    cases := []struct {
        name string
        err  error
        want engine.DisconnectReason
    }{
        {"rejected", errRejected, engine.ReasonConnectionRejected},
        {"protocol", fmt.Errorf("%w: x", errProtocol), engine.ReasonInvalidProtocol},
        {"frame size", errFrameSize, engine.ReasonInvalidProtocol},
        {"remote reject", &quicgo.ApplicationError{Remote: true, ErrorCode: codeRejected}, engine.ReasonConnectionRejected},
        {"remote key", &quicgo.ApplicationError{Remote: true, ErrorCode: codeInvalidKey}, engine.ReasonConnectionRejected},
        {"remote protocol", &quicgo.ApplicationError{Remote: true, ErrorCode: codeProtocol}, engine.ReasonInvalidProtocol},
        {"remote close", &quicgo.ApplicationError{Remote: true, ErrorCode: codeDisconnect}, engine.ReasonRemoteConnectionClose},
        {"remote shutdown", &quicgo.ApplicationError{Remote: true, ErrorCode: codeShutdown}, engine.ReasonRemoteConnectionClose},
        {"local close", &quicgo.ApplicationError{ErrorCode: codeDisconnect}, engine.ReasonDisconnectPeerCalled},
        {"idle", &quicgo.IdleTimeoutError{}, engine.ReasonTimeout},
        {"handshake", &quicgo.HandshakeTimeoutError{}, engine.ReasonTimeout},
        {"deadline", context.DeadlineExceeded, engine.ReasonTimeout},
        {"other", errors.New("boom"), engine.ReasonConnectionFailed},
    }
    for _, c := range cases {
        assert.Equal(t, c.want, reasonFor(c.err), c.name)
    }
}
