package engine

import (
    "sort"
    "sync"
)

// IDPool hands out PeerIDs lowest-free-first.
type IDPool struct {
    mu   sync.Mutex
    next PeerID
    free []PeerID // sorted ascending
}

// Acquire returns the lowest id not currently in use.
func (p *IDPool) Acquire() PeerID {
    p.mu.Lock()
    defer p.mu.Unlock()
    if len(p.free) > 0 {
        id := p.free[0]
        p.free = p.free[1:]
        return id
    }
    id := p.next
    p.next++
    return id
}

// Release returns id to the pool. Releasing an id twice is ignored.
func (p *IDPool) Release(id PeerID) {
    p.mu.Lock()
    defer p.mu.Unlock()
    if id < 0 || id >= p.next { return }
    i := sort.Search(len(p.free), func(i int) bool { return p.free[i] >= id })
    if i < len(p.free) && p.free[i] == id { return }
    p.free = append(p.free, 0)
    copy(p.free[i+1:], p.free[i:])
    p.free[i] = id
}
