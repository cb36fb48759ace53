package main

import (
    "context"
    "errors"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/spf13/pflag"
    "go.uber.org/zap"

    "pollnet/pkg/codec"
    "pollnet/pkg/config"
    "pollnet/pkg/engine"
    enginequic "pollnet/pkg/engine/quic"
    "pollnet/pkg/observability"
    "pollnet/pkg/transport"
)

type app struct {
    cfg     *config.Config
    log     *zap.Logger
    codec   codec.Codec
    metrics *observability.Metrics
    http    *http.Server
}

// setup loads the configuration, applies flag overrides and builds the
// logger and metrics.
func setup(opts Options, flags *pflag.FlagSet) (*app, error) {
    cfg, err := config.Load(opts.ConfigPath)
    if err != nil { return nil, fmt.Errorf("failed to load config: %w", err) }
    applyFlags(cfg, opts, flags)

    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil { return nil, fmt.Errorf("failed to setup logger: %w", err) }

    c, err := codec.ByName(cfg.Engine.ControlCodec)
    if err != nil { return nil, err }

    a := &app{cfg: cfg, log: logger, codec: c}
    zap.L().Info("pollnet-node started", zap.String("app", cfg.AppName))
    zap.L().Debug("effective configuration", zap.Any("config", cfg))
    if cfg.Metrics.Enable { a.startMetrics() }
    return a, nil
}

func applyFlags(cfg *config.Config, opts Options, flags *pflag.FlagSet) {
    changed := func(name string) bool { return flags.Lookup(name) != nil && flags.Changed(name) }
    if changed("address") {
        cfg.Server.Address = opts.Address
        cfg.Client.Address = opts.Address
    }
    if changed("port") {
        cfg.Server.Port = opts.Port
        cfg.Client.Port = opts.Port
    }
    if changed("max-connections") { cfg.Server.MaxConnections = opts.MaxConnections }
    if changed("channel") { cfg.Client.Channel = opts.Channel }
}

func (a *app) startMetrics() {
    a.metrics = observability.NewMetrics()
    mux := http.NewServeMux()
    mux.Handle("/metrics", a.metrics.Handler())
    a.http = &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
    go func() {
        if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            zap.L().Warn("metrics server", zap.Error(err))
        }
    }()
    zap.L().Info("metrics listening", zap.String("addr", a.cfg.Metrics.Listen))
}

func (a *app) close() {
    if a.http != nil {
        ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
        _ = a.http.Shutdown(ctx)
        cancel()
    }
    _ = a.log.Sync()
}

func (a *app) engineFactory(discovery bool) engine.Factory {
    e := a.cfg.Engine
    return enginequic.Factory(enginequic.Options{
        ConnectKey:       e.ConnectKey,
        HandshakeTimeout: e.HandshakeTimeout(),
        IdleTimeout:      e.IdleTimeout(),
        KeepAlive:        e.KeepAlive(),
        MaxMessageSize:   e.MaxMessageSize,
        Codec:            a.codec,
        Discovery:        discovery || e.Discovery,
        Logger:           a.log,
    })
}

func (a *app) newTransport(discovery bool) (*transport.Transport, error) {
    var obs transport.Observer = transport.NewLogObserver(a.log)
    if a.metrics != nil { obs = transport.MultiObserver{obs, a.metrics} }
    return transport.New(transport.Options{
        Engine:          a.engineFactory(discovery),
        Observer:        obs,
        Logger:          a.log,
        AnswerDiscovery: a.cfg.Server.AnswerDiscovery,
        ServerName:      a.cfg.Server.Name,
        Codec:           a.codec,
    })
}

func (a *app) runServer(ctx context.Context) error {
    s := a.cfg.Server
    tr, err := a.newTransport(s.AnswerDiscovery)
    if err != nil { return err }
    if err := tr.ServerStart(s.Address, s.Port, s.MaxConnections); err != nil { return err }
    defer func() { _ = tr.Shutdown() }()

    ticker := time.NewTicker(a.cfg.TickInterval())
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            zap.L().Info("server shutting down")
            return nil
        case <-ticker.C:
        }
        for {
            msg, ok := tr.ServerGetNextMessage()
            if !ok { break }
            switch msg.Event {
            case transport.EventConnected:
                addr, _ := tr.GetConnectionInfo(msg.ConnectionID)
                zap.L().Info("client joined", zap.Int("conn", msg.ConnectionID), zap.String("addr", addr))
            case transport.EventData:
                if err := tr.ServerSend(msg.ConnectionID, transport.ChannelReliableOrdered, msg.Data); err != nil {
                    zap.L().Warn("echo failed", zap.Int("conn", msg.ConnectionID), zap.Error(err))
                }
            case transport.EventDisconnected:
                zap.L().Info("client left", zap.Int("conn", msg.ConnectionID))
            }
        }
    }
}

func (a *app) runClient(ctx context.Context, payload []byte) error {
    c := a.cfg.Client
    tr, err := a.newTransport(false)
    if err != nil { return err }
    if err := tr.ClientConnect(c.Address, c.Port); err != nil { return err }
    defer func() { _ = tr.ClientDisconnect() }()

    ticker := time.NewTicker(a.cfg.TickInterval())
    defer ticker.Stop()
    interval := c.SendInterval()
    if interval <= 0 { interval = time.Second }
    var lastSend time.Time
    for {
        select {
        case <-ctx.Done():
            return nil
        case <-ticker.C:
        }
        for {
            msg, ok := tr.ClientGetNextMessage()
            if !ok { break }
            switch msg.Event {
            case transport.EventConnected:
                zap.L().Info("connected", zap.String("server", fmt.Sprintf("%s:%d", c.Address, c.Port)))
            case transport.EventData:
                zap.L().Info("echo", zap.ByteString("data", msg.Data))
            case transport.EventDisconnected:
                return errors.New("disconnected from server")
            }
        }
        if tr.ClientConnected() && time.Since(lastSend) >= interval {
            if err := tr.ClientSend(c.Channel, payload); err != nil {
                zap.L().Warn("send failed", zap.Error(err))
            }
            lastSend = time.Now()
        }
    }
}

// runDiscover probes address:port (broadcast when address is empty) and
// prints every answer until timeout.
func (a *app) runDiscover(ctx context.Context, out io.Writer, address string, port int, timeout time.Duration) error {
    probe, err := transport.NewProbe(a.engineFactory(true), a.codec)
    if err != nil { return err }
    defer probe.Close()
    if err := probe.Send(address, port); err != nil { return err }

    if timeout <= 0 { timeout = 2 * time.Second }
    deadline := time.NewTimer(timeout)
    defer deadline.Stop()
    ticker := time.NewTicker(a.cfg.TickInterval())
    defer ticker.Stop()
    found := 0
    for {
        select {
        case <-ctx.Done():
            return nil
        case <-deadline.C:
            if found == 0 { fmt.Fprintln(out, "no servers found") }
            return nil
        case <-ticker.C:
        }
        for {
            f, ok := probe.Poll()
            if !ok { break }
            found++
            fmt.Fprintf(out, "%s\t%s\t%d/%d\n", f.Addr, f.Info.Name, f.Info.Peers, f.Info.MaxConnections)
        }
    }
}
