// Package observability builds the process logger and exports transport
// metrics.
package observability

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/natefinch/lumberjack.v2"

    "pollnet/pkg/config"
)

// SetupLogger builds a zap.Logger writing to every configured output, sets it
// as the global logger and redirects the stdlib log package. The caller
// should defer logger.Sync().
func SetupLogger(c config.LogConfig) (*zap.Logger, error) {
    level, err := parseLevel(c.Level)
    if err != nil { return nil, err }
    atom := zap.NewAtomicLevelAt(level)

    encoder := newEncoder(c)
    outputs := c.Outputs
    if len(outputs) == 0 { outputs = []string{"stdout"} }

    cores := make([]zapcore.Core, 0, len(outputs))
    for _, out := range outputs {
        cores = append(cores, zapcore.NewCore(encoder, openOutput(out, c), atom))
    }

    opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}
    if c.Development { opts = append(opts, zap.Development()) }

    logger := zap.New(zapcore.NewTee(cores...), opts...)
    zap.ReplaceGlobals(logger)
    _, _ = zap.RedirectStdLogAt(logger, zap.InfoLevel)
    return logger, nil
}

func parseLevel(s string) (zapcore.Level, error) {
    s = strings.ToLower(strings.TrimSpace(s))
    switch s {
    case "":
        return zap.InfoLevel, nil
    case "warning":
        s = "warn"
    }
    lvl, err := zapcore.ParseLevel(s)
    if err != nil { return zap.InfoLevel, fmt.Errorf("log level: %w", err) }
    return lvl, nil
}

func newEncoder(c config.LogConfig) zapcore.Encoder {
    var cfg zapcore.EncoderConfig
    if c.Development {
        cfg = zap.NewDevelopmentEncoderConfig()
    } else {
        cfg = zap.NewProductionEncoderConfig()
        cfg.EncodeTime = zapcore.ISO8601TimeEncoder
    }
    if strings.EqualFold(c.Format, "json") { return zapcore.NewJSONEncoder(cfg) }
    if c.Development { cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder }
    return zapcore.NewConsoleEncoder(cfg)
}

// openOutput maps stdout/stderr to the process streams and anything else to a
// file, rotated by lumberjack when rotation is enabled. Files that cannot be
// opened fall back to stderr.
func openOutput(out string, c config.LogConfig) zapcore.WriteSyncer {
    switch strings.ToLower(out) {
    case "stdout":
        return zapcore.Lock(os.Stdout)
    case "stderr":
        return zapcore.Lock(os.Stderr)
    }
    if c.Rotation.Enable {
        name := out
        if f := strings.TrimSpace(c.Rotation.Filename); f != "" { name = f }
        return zapcore.AddSync(&lumberjack.Logger{
            Filename:   name,
            MaxSize:    atLeast(c.Rotation.MaxSizeMB, 10),
            MaxBackups: atLeast(c.Rotation.MaxBackups, 1),
            MaxAge:     atLeast(c.Rotation.MaxAgeDays, 7),
            Compress:   c.Rotation.Compress,
        })
    }
    if dir := filepath.Dir(out); dir != "." {
        _ = os.MkdirAll(dir, 0o755)
    }
    f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
    if err != nil {
        fmt.Fprintf(os.Stderr, "log output %s: %v; using stderr\n", out, err)
        return zapcore.Lock(os.Stderr)
    }
    return zapcore.AddSync(f)
}

func atLeast(v, min int) int {
    if v < min { return min }
    return v
}
