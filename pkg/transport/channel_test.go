package transport

import (
    "testing"

    "pollnet/pkg/engine"
)

func TestDeliveryModeFor(t *testing.T) {
    want := map[int]engine.DeliveryMethod{
        0: engine.ReliableOrdered,
        1: engine.ReliableUnordered,
        2: engine.Sequenced,
        3: engine.Unreliable,
    }
    for ch, m := range want {
        got, ok := DeliveryModeFor(ch)
        if !ok || got != m { t.Fatalf("channel %d: got %v,%v want %v", ch, got, ok, m) }
    }
    for _, ch := range []int{-1, 4, 100} {
        if _, ok := DeliveryModeFor(ch); ok { t.Fatalf("channel %d should be unmapped", ch) }
    }
}

func TestAdmit(t *testing.T) {
    cases := []struct {
        current, max int
        want         Decision
    }{
        {0, 2, Accept},
        {1, 2, Accept},
        {2, 2, Reject},
        {3, 2, Reject},
        {0, 0, Reject},
    }
    for _, c := range cases {
        if got := Admit(c.current, c.max); got != c.want {
            t.Fatalf("Admit(%d,%d)=%v want %v", c.current, c.max, got, c.want)
        }
    }
}
