package engine

import "sync"

// Queue is an unbounded FIFO of pending events. Engine goroutines Push;
// the polling goroutine Pops.
type Queue struct {
    mu     sync.Mutex
    items  []Event
    head   int
    closed bool
}

// Push appends ev. Events pushed after Close are dropped.
func (q *Queue) Push(ev Event) {
    q.mu.Lock()
    defer q.mu.Unlock()
    if q.closed { return }
    q.items = append(q.items, ev)
}

// Pop removes and returns the oldest event.
func (q *Queue) Pop() (Event, bool) {
    q.mu.Lock()
    defer q.mu.Unlock()
    if q.head >= len(q.items) { return Event{}, false }
    ev := q.items[q.head]
    q.items[q.head] = Event{}
    q.head++
    // compact once the consumed prefix dominates
    if q.head > 64 && q.head*2 >= len(q.items) {
        n := copy(q.items, q.items[q.head:])
        for i := n; i < len(q.items); i++ { q.items[i] = Event{} }
        q.items = q.items[:n]
        q.head = 0
    }
    return ev, true
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
    q.mu.Lock()
    defer q.mu.Unlock()
    return len(q.items) - q.head
}

// Close drops pending events and makes later Pushes no-ops.
func (q *Queue) Close() {
    q.mu.Lock()
    defer q.mu.Unlock()
    q.closed = true
    q.items = nil
    q.head = 0
}
