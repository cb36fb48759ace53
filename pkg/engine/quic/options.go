package quic

import (
    "time"

    "go.uber.org/zap"

    "pollnet/pkg/codec"
)

// Options tunes the QUIC engine.
type Options struct {
    // ConnectKey must match between client and server; mismatching hellos are
    // closed before they surface as connection requests.
    ConnectKey string
    // HandshakeTimeout bounds dialing plus the hello/verdict exchange.
    HandshakeTimeout time.Duration
    // IdleTimeout closes a connection without traffic (keep-alives included).
    IdleTimeout time.Duration
    // KeepAlive is the keep-alive ping period; 0 disables.
    KeepAlive time.Duration
    // MaxMessageSize caps one application message on any delivery method.
    // Sequenced and Unreliable messages travel in single DATAGRAM frames and
    // are further limited by the path (about 1200 bytes); larger ones fail
    // with engine.ErrMessageTooLarge.
    MaxMessageSize int
    // Codec encodes control frames. Both ends must agree.
    Codec codec.Codec
    // Discovery enables reading discovery packets and SO_BROADCAST.
    Discovery bool
    Logger *zap.Logger
}

const (
    defaultConnectKey       = "ck"
    defaultHandshakeTimeout = 5 * time.Second
    defaultIdleTimeout      = 10 * time.Second
    defaultKeepAlive        = 2 * time.Second
    defaultMaxMessageSize   = 64 * 1024
    minMaxMessageSize       = 1024
)

func (o Options) withDefaults() Options {
    if o.ConnectKey == "" { o.ConnectKey = defaultConnectKey }
    if o.HandshakeTimeout <= 0 { o.HandshakeTimeout = defaultHandshakeTimeout }
    if o.IdleTimeout <= 0 { o.IdleTimeout = defaultIdleTimeout }
    if o.KeepAlive < 0 { o.KeepAlive = 0 }
    if o.MaxMessageSize <= 0 { o.MaxMessageSize = defaultMaxMessageSize }
    if o.MaxMessageSize < minMaxMessageSize { o.MaxMessageSize = minMaxMessageSize }
    if o.Codec == nil { o.Codec = codec.Default() }
    if o.Logger == nil { o.Logger = zap.L() }
    return o
}
