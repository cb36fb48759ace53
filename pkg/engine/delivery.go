package engine

// DeliveryMethod is the reliability/ordering guarantee of one message.
type DeliveryMethod uint8

const (
    // ReliableOrdered: delivered exactly once, in send order.
    ReliableOrdered DeliveryMethod = iota
    // ReliableUnordered: delivered exactly once, any order.
    ReliableUnordered
    // Sequenced: may be lost; stale messages (older than the newest seen) are dropped.
    Sequenced
    // Unreliable: may be lost, duplicated by the network layer or reordered.
    Unreliable
)

func (m DeliveryMethod) String() string {
    switch m {
    case ReliableOrdered:
        return "reliable-ordered"
    case ReliableUnordered:
        return "reliable-unordered"
    case Sequenced:
        return "sequenced"
    case Unreliable:
        return "unreliable"
    default:
        return "unknown"
    }
}

// Valid reports whether m is one of the four known methods.
func (m DeliveryMethod) Valid() bool { return m <= Unreliable }
