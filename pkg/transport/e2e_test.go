package transport

import (
    "net"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    enginequic "pollnet/pkg/engine/quic"
)

func quicTransport(t *testing.T) *Transport {
    t.Helper()
    tr, err := New(Options{
        Engine: enginequic.Factory(enginequic.Options{
            HandshakeTimeout: 3 * time.Second,
            IdleTimeout:      5 * time.Second,
            Logger:           zap.NewNop(),
        }),
        Logger: zap.NewNop(),
    })
    require.NoError(t, err)
    t.Cleanup(func() { _ = tr.Shutdown() })
    return tr
}

// eventually calls step until it reports true, polling every few
// milliseconds for up to five seconds.
func eventually(t *testing.T, what string, step func() bool) {
    t.Helper()
    deadline := time.Now().Add(5 * time.Second)
    for time.Now().Before(deadline) {
        if step() { return }
        time.Sleep(2 * time.Millisecond)
    }
    t.Fatalf("timed out: %s", what)
}

// nextServer polls srv until a message arrives, also ticking the given
// clients so their handshakes progress.
func nextServer(t *testing.T, srv *Transport, clients ...*Transport) Message {
    t.Helper()
    var got Message
    eventually(t, "server message", func() bool {
        for _, c := range clients {
            if c.ClientConnected() { continue }
            if msg, ok := c.ClientGetNextMessage(); ok && msg.Event != EventConnected {
                t.Fatalf("unexpected client message %v", msg.Event)
            }
        }
        msg, ok := srv.ServerGetNextMessage()
        got = msg
        return ok
    })
    return got
}

func nextClient(t *testing.T, cli *Transport, srv *Transport) Message {
    t.Helper()
    var got Message
    eventually(t, "client message", func() bool {
        msg, ok := cli.ClientGetNextMessage()
        got = msg
        if !ok && srv != nil { srv.ServerGetNextMessage() }
        return ok
    })
    return got
}

func serverPort(t *testing.T, srv *Transport) int {
    t.Helper()
    addr, ok := srv.LocalAddr().(*net.UDPAddr)
    require.True(t, ok)
    return addr.Port
}

func TestQUICEndToEnd(t *testing.T) {
    srv := quicTransport(t)
    require.NoError(t, srv.ServerStart("0.0.0.0", 0, 2))
    port := serverPort(t, srv)

    a := quicTransport(t)
    require.NoError(t, a.ClientConnect("127.0.0.1", port))
    msg := nextServer(t, srv)
    require.Equal(t, EventConnected, msg.Event)
    c1 := msg.ConnectionID
    require.Equal(t, EventConnected, nextClient(t, a, nil).Event)
    require.True(t, a.ClientConnected())

    require.NoError(t, a.ClientSend(0, []byte{1, 2, 3}))
    msg = nextServer(t, srv)
    assert.Equal(t, EventData, msg.Event)
    assert.Equal(t, c1, msg.ConnectionID)
    assert.Equal(t, []byte{1, 2, 3}, msg.Data)

    b := quicTransport(t)
    require.NoError(t, b.ClientConnect("127.0.0.1", port))
    msg = nextServer(t, srv)
    require.Equal(t, EventConnected, msg.Event)
    assert.NotEqual(t, c1, msg.ConnectionID)
    require.Equal(t, EventConnected, nextClient(t, b, nil).Event)

    c := quicTransport(t)
    require.NoError(t, c.ClientConnect("127.0.0.1", port))
    msg = nextClient(t, c, srv)
    assert.Equal(t, EventDisconnected, msg.Event)
    assert.False(t, c.ClientConnected())
    assert.Len(t, srv.Peers(), 2)
    assert.True(t, a.ClientConnected())
    assert.True(t, b.ClientConnected())
}

func TestQUICAllChannelsByteIdentical(t *testing.T) {
    srv := quicTransport(t)
    require.NoError(t, srv.ServerStart("127.0.0.1", 0, 4))
    cli := quicTransport(t)
    require.NoError(t, cli.ClientConnect("127.0.0.1", serverPort(t, srv)))
    id := nextServer(t, srv).ConnectionID
    require.Equal(t, EventConnected, nextClient(t, cli, nil).Event)

    for ch := 0; ch < 4; ch++ {
        payload := make([]byte, 512)
        for i := range payload { payload[i] = byte(i*7 + ch) }

        require.NoError(t, cli.ClientSend(ch, payload))
        msg := nextServer(t, srv)
        require.Equal(t, EventData, msg.Event, "channel %d", ch)
        assert.Equal(t, payload, msg.Data, "channel %d to server", ch)

        require.NoError(t, srv.ServerSend(id, ch, payload))
        msg = nextClient(t, cli, nil)
        require.Equal(t, EventData, msg.Event, "channel %d", ch)
        assert.Equal(t, payload, msg.Data, "channel %d to client", ch)
    }
}

func TestQUICServerDisconnect(t *testing.T) {
    srv := quicTransport(t)
    require.NoError(t, srv.ServerStart("127.0.0.1", 0, 4))
    cli := quicTransport(t)
    require.NoError(t, cli.ClientConnect("127.0.0.1", serverPort(t, srv)))
    id := nextServer(t, srv).ConnectionID
    require.Equal(t, EventConnected, nextClient(t, cli, nil).Event)

    addr, ok := srv.GetConnectionInfo(id)
    require.True(t, ok)
    assert.Contains(t, addr, "127.0.0.1:")

    require.NoError(t, srv.ServerDisconnect(id))
    require.ErrorIs(t, srv.ServerDisconnect(id), ErrPeerNotFound)
    msg := nextServer(t, srv)
    assert.Equal(t, EventDisconnected, msg.Event)
    assert.Equal(t, id, msg.ConnectionID)

    msg = nextClient(t, cli, nil)
    assert.Equal(t, EventDisconnected, msg.Event)
    assert.False(t, cli.ClientConnected())
}

func TestQUICBindFailure(t *testing.T) {
    first := quicTransport(t)
    require.NoError(t, first.ServerStart("127.0.0.1", 0, 1))
    second := quicTransport(t)
    require.Error(t, second.ServerStart("127.0.0.1", serverPort(t, first), 1))
    assert.False(t, second.ServerActive())
}

func TestQUICDiscoveryAnswer(t *testing.T) {
    opts := enginequic.Options{
        HandshakeTimeout: 3 * time.Second,
        IdleTimeout:      5 * time.Second,
        Discovery:        true,
        Logger:           zap.NewNop(),
    }
    srv, err := New(Options{
        Engine:          enginequic.Factory(opts),
        Logger:          zap.NewNop(),
        AnswerDiscovery: true,
        ServerName:      "arena",
    })
    require.NoError(t, err)
    t.Cleanup(func() { _ = srv.Shutdown() })
    require.NoError(t, srv.ServerStart("127.0.0.1", 0, 3))
    port := serverPort(t, srv)

    probe, err := NewProbe(enginequic.Factory(opts), nil)
    require.NoError(t, err)
    t.Cleanup(func() { _ = probe.Close() })
    require.NoError(t, probe.Send("127.0.0.1", port))

    var found Found
    eventually(t, "discovery answer", func() bool {
        _, _ = srv.ServerGetNextMessage()
        f, ok := probe.Poll()
        found = f
        return ok
    })
    assert.Equal(t, ServerInfo{Name: "arena", Port: port, Peers: 0, MaxConnections: 3}, found.Info)
    addr, ok := found.Addr.(*net.UDPAddr)
    require.True(t, ok)
    assert.Equal(t, port, addr.Port)
}
