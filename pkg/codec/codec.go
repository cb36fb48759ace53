// Package codec provides the marshaling used for engine control frames and
// discovery payloads.
package codec

import (
    "fmt"
    "strings"
)

// Codec defines a simple interface for marshaling typed messages.
// Implementations should be deterministic and safe for cross-node exchange.
type Codec interface {
    Name() string
    ContentType() string
    Marshal(v any) ([]byte, error)
    Unmarshal(data []byte, v any) error
}

// Registry maps codec names and content types to codecs.
type Registry struct { byKey map[string]Codec }

// NewRegistry constructs a registry preloaded with the built-in codecs.
func NewRegistry() (*Registry, error) {
    r := &Registry{byKey: make(map[string]Codec)}
    r.Register(JSON())
    c, err := CBOR()
    if err != nil { return nil, err }
    r.Register(c)
    return r, nil
}

// Register adds a codec under both its name and content type.
func (r *Registry) Register(c Codec) {
    r.byKey[c.Name()] = c
    r.byKey[c.ContentType()] = c
}

// Get returns a codec by name or content type, or nil.
func (r *Registry) Get(key string) Codec { return r.byKey[strings.ToLower(strings.TrimSpace(key))] }

// ByName resolves one of the built-in codec names ("cbor", "json").
func ByName(name string) (Codec, error) {
    r, err := NewRegistry()
    if err != nil { return nil, err }
    if c := r.Get(name); c != nil { return c, nil }
    return nil, fmt.Errorf("codec: unknown codec %q", name)
}

// Default returns the CBOR codec, or JSON if the CBOR modes cannot be built.
func Default() Codec {
    if c, err := CBOR(); err == nil { return c }
    return JSON()
}
