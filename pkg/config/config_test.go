package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"
)

func writeConfig(t *testing.T, body string) string {
    t.Helper()
    p := filepath.Join(t.TempDir(), "pollnet.yaml")
    if err := os.WriteFile(p, []byte(body), 0o644); err != nil { t.Fatalf("write: %v", err) }
    return p
}

func TestLoadDefaults(t *testing.T) {
    cfg, err := Load(writeConfig(t, "app_name: test\n"))
    if err != nil { t.Fatalf("load: %v", err) }
    def := Default()
    if cfg.AppName != "test" { t.Fatalf("app_name=%q", cfg.AppName) }
    if cfg.Server.Port != def.Server.Port || cfg.Server.MaxConnections != def.Server.MaxConnections {
        t.Fatalf("server defaults not applied: %+v", cfg.Server)
    }
    if cfg.Engine.ConnectKey != "ck" { t.Fatalf("connect_key=%q", cfg.Engine.ConnectKey) }
    if cfg.TickInterval() != time.Second/60 { t.Fatalf("tick=%v", cfg.TickInterval()) }
}

func TestLoadFile(t *testing.T) {
    p := writeConfig(t, `
tick_rate_hz: 20
server:
  port: 7000
  max_connections: 2
  answer_discovery: true
client:
  channel: 3
engine:
  connect_key: secret
  handshake_timeout_ms: 1500
  control_codec: JSON
`)
    cfg, err := Load(p)
    if err != nil { t.Fatalf("load: %v", err) }
    if cfg.Server.Port != 7000 || cfg.Server.MaxConnections != 2 || !cfg.Server.AnswerDiscovery {
        t.Fatalf("server=%+v", cfg.Server)
    }
    if cfg.Client.Channel != 3 { t.Fatalf("client.channel=%d", cfg.Client.Channel) }
    if cfg.Engine.ConnectKey != "secret" { t.Fatalf("connect_key=%q", cfg.Engine.ConnectKey) }
    if cfg.Engine.HandshakeTimeout() != 1500*time.Millisecond { t.Fatalf("handshake=%v", cfg.Engine.HandshakeTimeout()) }
    if cfg.Engine.ControlCodec != "json" { t.Fatalf("codec=%q", cfg.Engine.ControlCodec) }
    if cfg.TickInterval() != 50*time.Millisecond { t.Fatalf("tick=%v", cfg.TickInterval()) }
}

func TestLoadEnvOverride(t *testing.T) {
    t.Setenv("POLLNET_SERVER_MAX_CONNECTIONS", "32")
    cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
    if err != nil { t.Fatalf("load: %v", err) }
    if cfg.Server.MaxConnections != 32 { t.Fatalf("max_connections=%d", cfg.Server.MaxConnections) }
    if cfg.Log.Level != "debug" { t.Fatalf("level=%q", cfg.Log.Level) }
}

func TestValidate(t *testing.T) {
    bad := []string{
        "log:\n  level: loud\n",
        "tick_rate_hz: 0\n",
        "server:\n  port: 70000\n",
        "client:\n  channel: 4\n",
        "engine:\n  control_codec: xml\n",
    }
    for _, body := range bad {
        if _, err := Load(writeConfig(t, body)); err == nil {
            t.Fatalf("expected error for %q", body)
        }
    }
}
