package config

import "time"

// EngineConfig tunes the QUIC engine shared by both roles.
type EngineConfig struct {
    // ConnectKey must match between client and server.
    ConnectKey         string `mapstructure:"connect_key"`
    HandshakeTimeoutMS int    `mapstructure:"handshake_timeout_ms"`
    IdleTimeoutMS      int    `mapstructure:"idle_timeout_ms"`
    KeepAliveMS        int    `mapstructure:"keepalive_ms"`
    MaxMessageSize     int    `mapstructure:"max_message_size"`
    // ControlCodec encodes handshake frames and discovery payloads: cbor or json.
    ControlCodec string `mapstructure:"control_codec"`
    // Discovery enables answering and sending LAN discovery packets.
    Discovery bool `mapstructure:"discovery"`
}

func (e EngineConfig) HandshakeTimeout() time.Duration { return ms(e.HandshakeTimeoutMS) }
func (e EngineConfig) IdleTimeout() time.Duration      { return ms(e.IdleTimeoutMS) }
func (e EngineConfig) KeepAlive() time.Duration        { return ms(e.KeepAliveMS) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
