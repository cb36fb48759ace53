package transport

import (
    "sort"
    "sync"

    "pollnet/pkg/engine"
)

// Registry tracks connected peers by id. Entries are added on Connected and
// evicted on Disconnected; an eviction only removes the exact peer it names,
// so a reused id never loses its newer owner.
type Registry struct {
    mu    sync.RWMutex
    peers map[engine.PeerID]engine.Peer
}

func NewRegistry() *Registry { return &Registry{peers: make(map[engine.PeerID]engine.Peer)} }

// Add registers p, replacing any previous peer with the same id.
func (r *Registry) Add(p engine.Peer) {
    if p == nil { return }
    r.mu.Lock()
    defer r.mu.Unlock()
    r.peers[p.ID()] = p
}

// Remove evicts p. It reports whether p was registered.
func (r *Registry) Remove(p engine.Peer) bool {
    if p == nil { return false }
    r.mu.Lock()
    defer r.mu.Unlock()
    if cur, ok := r.peers[p.ID()]; ok && cur == p {
        delete(r.peers, p.ID())
        return true
    }
    return false
}

// Get returns the peer with id, or nil.
func (r *Registry) Get(id engine.PeerID) engine.Peer {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return r.peers[id]
}

// All returns the registered peers ordered by id.
func (r *Registry) All() []engine.Peer {
    r.mu.RLock()
    out := make([]engine.Peer, 0, len(r.peers))
    for _, p := range r.peers { out = append(out, p) }
    r.mu.RUnlock()
    sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
    return out
}

// First returns the registered peer with the lowest id, or nil.
func (r *Registry) First() engine.Peer {
    if all := r.All(); len(all) > 0 { return all[0] }
    return nil
}

func (r *Registry) Len() int {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return len(r.peers)
}

// Reset drops every entry.
func (r *Registry) Reset() {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.peers = make(map[engine.PeerID]engine.Peer)
}
