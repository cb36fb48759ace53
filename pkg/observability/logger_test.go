package observability

import (
    "os"
    "path/filepath"
    "strings"
    "testing"

    "go.uber.org/zap"

    "pollnet/pkg/config"
)

func TestSetupLoggerFileOutput(t *testing.T) {
    prev := zap.L()
    defer zap.ReplaceGlobals(prev)

    out := filepath.Join(t.TempDir(), "logs", "node.log")
    lg, err := SetupLogger(config.LogConfig{Level: "warn", Format: "json", Outputs: []string{out}})
    if err != nil { t.Fatalf("setup: %v", err) }
    lg.Info("hidden")
    lg.Warn("visible", zap.Int("peer", 3))
    _ = lg.Sync()

    b, err := os.ReadFile(out)
    if err != nil { t.Fatalf("read: %v", err) }
    s := string(b)
    if strings.Contains(s, "hidden") { t.Fatalf("info line written at warn level: %s", s) }
    if !strings.Contains(s, `"msg":"visible"`) || !strings.Contains(s, `"peer":3`) { t.Fatalf("unexpected log: %s", s) }
    if zap.L() != lg { t.Fatalf("global logger not replaced") }
}
