package transport

// next pops engine events until one translates into a Message or the engine
// has nothing pending. Every popped event is consumed.
func (t *Transport) next() (Message, bool) {
    for {
        ev, ok := t.eng.PollEvent()
        if !ok { return Message{}, false }
        if msg, ok := t.bridge(ev); ok { return msg, true }
    }
}

// ClientGetNextMessage returns the next client event, or false when nothing
// is pending or the client is not started.
func (t *Transport) ClientGetNextMessage() (Message, bool) {
    if t.eng == nil || t.role != RoleClient { return Message{}, false }
    return t.next()
}

// ServerGetNextMessage returns the next server event tagged with its
// connection id, or false when nothing is pending or the server is not
// active.
func (t *Transport) ServerGetNextMessage() (Message, bool) {
    if !t.active || t.role != RoleServer { return Message{}, false }
    return t.next()
}
