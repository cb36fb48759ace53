package transport

import (
    "net"
    "testing"

    "pollnet/pkg/engine"
)

type stubPeer struct{ id engine.PeerID }

func (p *stubPeer) ID() engine.PeerID                            { return p.id }
func (p *stubPeer) RemoteAddr() net.Addr                         { return nil }
func (p *stubPeer) Send([]byte, engine.DeliveryMethod) error     { return nil }
func (p *stubPeer) Flush() error                                 { return nil }

func TestRegistryAddGetAll(t *testing.T) {
    r := NewRegistry()
    r.Add(&stubPeer{id: 3})
    r.Add(&stubPeer{id: 1})
    r.Add(&stubPeer{id: 2})
    if r.Len() != 3 { t.Fatalf("len=%d", r.Len()) }
    all := r.All()
    for i, p := range all {
        if int(p.ID()) != i+1 { t.Fatalf("All not sorted: %v at %d", p.ID(), i) }
    }
    if r.Get(2) == nil || r.Get(9) != nil { t.Fatalf("Get mismatch") }
    if r.First().ID() != 1 { t.Fatalf("First=%v", r.First().ID()) }
}

func TestRegistryRemoveIsIdentityChecked(t *testing.T) {
    r := NewRegistry()
    old := &stubPeer{id: 0}
    r.Add(old)
    newer := &stubPeer{id: 0}
    r.Add(newer)
    if r.Remove(old) { t.Fatalf("removing a stale peer must not evict the new owner") }
    if r.Get(0) != newer { t.Fatalf("new owner lost") }
    if !r.Remove(newer) { t.Fatalf("remove newer") }
    if r.Remove(newer) { t.Fatalf("second remove should report false") }
    r.Add(&stubPeer{id: 5})
    r.Reset()
    if r.Len() != 0 || r.First() != nil { t.Fatalf("reset") }
}
