package observability

import (
    "net"
    "net/http"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "pollnet/pkg/engine"
    "pollnet/pkg/transport"
)

// Metrics is a transport.Observer exporting Prometheus counters on its own
// registry.
type Metrics struct {
    reg *prometheus.Registry

    events     *prometheus.CounterVec
    received   *prometheus.CounterVec
    recvBytes  *prometheus.CounterVec
    disconnect *prometheus.CounterVec
    admissions *prometheus.CounterVec
    sent       *prometheus.CounterVec
    sentBytes  *prometheus.CounterVec
    sendErrors *prometheus.CounterVec
    peers      *prometheus.GaugeVec
}

var _ transport.Observer = (*Metrics)(nil)

func NewMetrics() *Metrics {
    m := &Metrics{
        reg: prometheus.NewRegistry(),
        events: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "events_total", Help: "Engine events consumed by the transport.",
        }, []string{"role", "kind"}),
        received: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "messages_received_total", Help: "Data messages received.",
        }, []string{"role", "method"}),
        recvBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "received_bytes_total", Help: "Payload bytes received.",
        }, []string{"role"}),
        disconnect: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "disconnects_total", Help: "Disconnects by reason.",
        }, []string{"role", "reason"}),
        admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "admissions_total", Help: "Connection requests by decision.",
        }, []string{"decision"}),
        sent: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "messages_sent_total", Help: "Messages sent.",
        }, []string{"role", "method"}),
        sentBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "sent_bytes_total", Help: "Payload bytes sent.",
        }, []string{"role"}),
        sendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: "pollnet", Name: "send_errors_total", Help: "Failed sends.",
        }, []string{"role", "method"}),
        peers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace: "pollnet", Name: "peers", Help: "Connected peers known to the transport.",
        }, []string{"role"}),
    }
    m.reg.MustRegister(m.events, m.received, m.recvBytes, m.disconnect, m.admissions,
        m.sent, m.sentBytes, m.sendErrors, m.peers)
    return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
    return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) OnEvent(role transport.Role, ev engine.Event) {
    r := role.String()
    m.events.WithLabelValues(r, ev.Kind.String()).Inc()
    switch ev.Kind {
    case engine.KindReceive:
        m.received.WithLabelValues(r, ev.Method.String()).Inc()
        m.recvBytes.WithLabelValues(r).Add(float64(len(ev.Data)))
    case engine.KindDisconnected:
        m.disconnect.WithLabelValues(r, ev.Reason.String()).Inc()
    }
}

func (m *Metrics) OnPeerCount(role transport.Role, n int) {
    m.peers.WithLabelValues(role.String()).Set(float64(n))
}

func (m *Metrics) OnAdmission(d transport.Decision, _ net.Addr, _, _ int) {
    m.admissions.WithLabelValues(d.String()).Inc()
}

func (m *Metrics) OnSend(role transport.Role, method engine.DeliveryMethod, size int, err error) {
    r := role.String()
    if err != nil {
        m.sendErrors.WithLabelValues(r, method.String()).Inc()
        return
    }
    m.sent.WithLabelValues(r, method.String()).Inc()
    m.sentBytes.WithLabelValues(r).Add(float64(size))
}
