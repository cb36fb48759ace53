package quic

// seqFilter drops sequenced datagrams that are not newer than the newest one
// seen, comparing 16-bit sequence numbers with wraparound. Used by a single
// reader goroutine.
type seqFilter struct {
    last uint16
    seen bool
}

func (f *seqFilter) accept(seq uint16) bool {
    if !f.seen {
        f.seen = true
        f.last = seq
        return true
    }
    if int16(seq-f.last) <= 0 { return false }
    f.last = seq
    return true
}
