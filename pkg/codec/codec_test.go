package codec

import (
    "testing"
)

type frame struct {
    Version uint8  `cbor:"v" json:"v"`
    Key     string `cbor:"k" json:"k"`
}

func TestJSONCodec(t *testing.T) {
    c := JSON()
    b, err := c.Marshal(frame{Version: 1, Key: "ck"})
    if err != nil { t.Fatalf("marshal: %v", err) }
    var out frame
    if err := c.Unmarshal(b, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
    if out.Version != 1 || out.Key != "ck" {
        t.Fatalf("roundtrip mismatch: %#v", out)
    }
}

func TestCBORCodecDeterministic(t *testing.T) {
    c, err := CBOR()
    if err != nil { t.Fatalf("new cbor: %v", err) }
    in := map[string]any{"port": 9000, "max": 2, "peers": 1}
    a, err := c.Marshal(in)
    if err != nil { t.Fatalf("marshal: %v", err) }
    b, err := c.Marshal(in)
    if err != nil { t.Fatalf("marshal: %v", err) }
    if string(a) != string(b) {
        t.Fatalf("canonical encoding differs between runs")
    }
    var out frame
    fb, _ := c.Marshal(frame{Version: 2, Key: "x"})
    if err := c.Unmarshal(fb, &out); err != nil { t.Fatalf("unmarshal: %v", err) }
    if out.Version != 2 || out.Key != "x" { t.Fatalf("roundtrip mismatch: %#v", out) }
}

func TestRegistryLookup(t *testing.T) {
    r, err := NewRegistry()
    if err != nil { t.Fatalf("registry: %v", err) }
    for _, key := range []string{"cbor", "CBOR ", "application/cbor"} {
        if c := r.Get(key); c == nil || c.Name() != "cbor" {
            t.Fatalf("Get(%q) = %v", key, c)
        }
    }
    if c := r.Get("application/json"); c == nil || c.Name() != "json" {
        t.Fatalf("json lookup failed")
    }
    if _, err := ByName("yaml"); err == nil {
        t.Fatalf("expected error for unknown codec")
    }
}

func TestCBORRejectsDuplicateKeys(t *testing.T) {
    c, err := CBOR()
    if err != nil { t.Fatalf("new cbor: %v", err) }
    // {"k": "a", "k": "b"}
    dup := []byte{0xa2, 0x61, 'k', 0x61, 'a', 0x61, 'k', 0x61, 'b'}
    var out frame
    if err := c.Unmarshal(dup, &out); err == nil {
        t.Fatalf("duplicate map key accepted: %#v", out)
    }
}
