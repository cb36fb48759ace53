package quic

import (
    "pollnet/pkg/engine"
)

// Discovery packets share the QUIC socket. Their first byte keeps the QUIC
// fixed bit (0x40) clear so quic-go hands them to ReadNonQUICPacket.
//
//  0      kind (0x01 request, 0x02 response)
//  1 ..2  magic 'P''N'
//  3 ..   payload
const (
    discoveryRequest  byte = 0x01
    discoveryResponse byte = 0x02
    discoveryHeader        = 3
    maxDiscoverySize       = 1200
)

func encodeDiscovery(kind byte, payload []byte) []byte {
    out := make([]byte, discoveryHeader+len(payload))
    out[0] = kind
    out[1], out[2] = 'P', 'N'
    copy(out[discoveryHeader:], payload)
    return out
}

// parseDiscovery returns the event kind and a copy of the payload.
func parseDiscovery(pkt []byte) (engine.EventKind, []byte, bool) {
    if len(pkt) < discoveryHeader || pkt[1] != 'P' || pkt[2] != 'N' { return engine.KindNone, nil, false }
    var kind engine.EventKind
    switch pkt[0] {
    case discoveryRequest:
        kind = engine.KindDiscoveryRequest
    case discoveryResponse:
        kind = engine.KindDiscoveryResponse
    default:
        return engine.KindNone, nil, false
    }
    return kind, append([]byte(nil), pkt[discoveryHeader:]...), true
}
