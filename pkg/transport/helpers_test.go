package transport

import (
    "net"
    "testing"

    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "pollnet/pkg/engine"
    "pollnet/pkg/engine/mem"
)

// memHarness hands out mem engines on one network and remembers them so
// tests can inject events.
type memHarness struct {
    net     *mem.Network
    engines []*mem.Engine
}

func newMemHarness() *memHarness { return &memHarness{net: mem.NewNetwork()} }

func (h *memHarness) factory() engine.Factory {
    return func() engine.Engine {
        e := mem.New(h.net)
        h.engines = append(h.engines, e)
        return e
    }
}

func (h *memHarness) last() *mem.Engine { return h.engines[len(h.engines)-1] }

func (h *memHarness) transport(t *testing.T, obs Observer) *Transport {
    t.Helper()
    tr, err := New(Options{Engine: h.factory(), Observer: obs, Logger: zap.NewNop()})
    require.NoError(t, err)
    t.Cleanup(func() { _ = tr.Shutdown() })
    return tr
}

type admission struct {
    decision Decision
    current  int
    max      int
}

// recorder is an Observer keeping everything it sees.
type recorder struct {
    events     []engine.Event
    admissions []admission
    sends      []error
    peerCounts []int
}

func (r *recorder) OnEvent(_ Role, ev engine.Event) { r.events = append(r.events, ev) }
func (r *recorder) OnAdmission(d Decision, _ net.Addr, current, max int) {
    r.admissions = append(r.admissions, admission{d, current, max})
}
func (r *recorder) OnSend(_ Role, _ engine.DeliveryMethod, _ int, err error) { r.sends = append(r.sends, err) }

func (r *recorder) OnPeerCount(_ Role, n int) { r.peerCounts = append(r.peerCounts, n) }

func (r *recorder) kinds() []engine.EventKind {
    out := make([]engine.EventKind, len(r.events))
    for i, ev := range r.events { out[i] = ev.Kind }
    return out
}

func mustServerMsg(t *testing.T, tr *Transport, want EventType) Message {
    t.Helper()
    msg, ok := tr.ServerGetNextMessage()
    require.True(t, ok, "expected server %s", want)
    require.Equal(t, want, msg.Event)
    return msg
}

func mustClientMsg(t *testing.T, tr *Transport, want EventType) Message {
    t.Helper()
    msg, ok := tr.ClientGetNextMessage()
    require.True(t, ok, "expected client %s", want)
    require.Equal(t, want, msg.Event)
    return msg
}

// connectClient connects a new client transport to srv on the mem network
// and drives both sides until the client is connected.
func connectClient(t *testing.T, h *memHarness, srv *Transport, port int) (*Transport, int) {
    t.Helper()
    cli := h.transport(t, nil)
    require.NoError(t, cli.ClientConnect("127.0.0.1", port))
    msg := mustServerMsg(t, srv, EventConnected)
    mustClientMsg(t, cli, EventConnected)
    require.True(t, cli.ClientConnected())
    return cli, msg.ConnectionID
}
