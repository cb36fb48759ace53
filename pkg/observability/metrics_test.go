package observability

import (
    "errors"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/prometheus/client_golang/prometheus/testutil"

    "pollnet/pkg/engine"
    "pollnet/pkg/transport"
)

func TestMetricsObserver(t *testing.T) {
    m := NewMetrics()
    m.OnEvent(transport.RoleServer, engine.Event{Kind: engine.KindReceive, Data: []byte("abcd"), Method: engine.Sequenced})
    m.OnEvent(transport.RoleServer, engine.Event{Kind: engine.KindReceive, Data: []byte("ef"), Method: engine.Sequenced})
    m.OnEvent(transport.RoleServer, engine.Event{Kind: engine.KindDisconnected, Reason: engine.ReasonTimeout})
    m.OnAdmission(transport.Accept, nil, 0, 2)
    m.OnAdmission(transport.Reject, nil, 2, 2)
    m.OnAdmission(transport.Reject, nil, 2, 2)
    m.OnSend(transport.RoleClient, engine.ReliableOrdered, 10, nil)
    m.OnSend(transport.RoleClient, engine.ReliableOrdered, 10, errors.New("closed"))
    m.OnPeerCount(transport.RoleServer, 3)

    if got := testutil.ToFloat64(m.received.WithLabelValues("server", "sequenced")); got != 2 { t.Fatalf("received=%v", got) }
    if got := testutil.ToFloat64(m.recvBytes.WithLabelValues("server")); got != 6 { t.Fatalf("bytes=%v", got) }
    if got := testutil.ToFloat64(m.disconnect.WithLabelValues("server", "timeout")); got != 1 { t.Fatalf("disconnects=%v", got) }
    if got := testutil.ToFloat64(m.admissions.WithLabelValues("reject")); got != 2 { t.Fatalf("rejects=%v", got) }
    if got := testutil.ToFloat64(m.sent.WithLabelValues("client", "reliable-ordered")); got != 1 { t.Fatalf("sent=%v", got) }
    if got := testutil.ToFloat64(m.sendErrors.WithLabelValues("client", "reliable-ordered")); got != 1 { t.Fatalf("send errors=%v", got) }
    if got := testutil.ToFloat64(m.peers.WithLabelValues("server")); got != 3 { t.Fatalf("peers=%v", got) }
}

func TestMetricsHandler(t *testing.T) {
    m := NewMetrics()
    m.OnAdmission(transport.Accept, nil, 0, 1)
    rec := httptest.NewRecorder()
    m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
    if rec.Code != 200 { t.Fatalf("status=%d", rec.Code) }
    if !strings.Contains(rec.Body.String(), `pollnet_admissions_total{decision="accept"} 1`) {
        t.Fatalf("missing admission counter:\n%s", rec.Body.String())
    }
}
