package codec

import (
    cbor "github.com/fxamacker/cbor/v2"
)

type cborCodec struct {
    enc cbor.EncMode
    dec cbor.DecMode
}

// CBOR returns a codec using core deterministic encoding (RFC 8949 4.2).
// Decoding rejects duplicate map keys and caps nesting and container sizes;
// every payload it sees comes off the wire.
func CBOR() (Codec, error) {
    em, err := cbor.CoreDetEncOptions().EncMode()
    if err != nil { return nil, err }
    dm, err := cbor.DecOptions{
        DupMapKey:        cbor.DupMapKeyEnforcedAPF,
        MaxNestedLevels:  8,
        MaxArrayElements: 256,
        MaxMapPairs:      64,
    }.DecMode()
    if err != nil { return nil, err }
    return cborCodec{enc: em, dec: dm}, nil
}

func (c cborCodec) Name() string                       { return "cbor" }
func (c cborCodec) ContentType() string                { return "application/cbor" }
func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }
