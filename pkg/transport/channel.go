package transport

import "pollnet/pkg/engine"

// Channel ids understood by ClientSend and ServerSend.
const (
    ChannelReliableOrdered   = 0
    ChannelReliableUnordered = 1
    ChannelSequenced         = 2
    ChannelUnreliable        = 3
)

var channelModes = [...]engine.DeliveryMethod{
    ChannelReliableOrdered:   engine.ReliableOrdered,
    ChannelReliableUnordered: engine.ReliableUnordered,
    ChannelSequenced:         engine.Sequenced,
    ChannelUnreliable:        engine.Unreliable,
}

// DeliveryModeFor maps a channel id to its delivery method. Ids outside
// 0..3 are not mapped.
func DeliveryModeFor(channelID int) (engine.DeliveryMethod, bool) {
    if channelID < 0 || channelID >= len(channelModes) { return 0, false }
    return channelModes[channelID], true
}
