package config

import (
    "fmt"
    "strings"
)

// LogConfig selects the process logger's level, encoding and sinks.
type LogConfig struct {
    // debug, info, warn or error
    Level string `mapstructure:"level"`
    // console or json
    Format string `mapstructure:"format"`
    // stdout, stderr or a file path per entry
    Outputs     []string       `mapstructure:"outputs"`
    Rotation    RotationConfig `mapstructure:"rotation"`
    Development bool           `mapstructure:"development"`
}

// RotationConfig applies to file outputs only.
type RotationConfig struct {
    Enable bool `mapstructure:"enable"`
    // Filename overrides the output path when set.
    Filename   string `mapstructure:"filename"`
    MaxSizeMB  int    `mapstructure:"max_size_mb"`
    MaxBackups int    `mapstructure:"max_backups"`
    MaxAgeDays int    `mapstructure:"max_age_days"`
    Compress   bool   `mapstructure:"compress"`
}

func (l *LogConfig) normalize() error {
    switch lvl := strings.ToLower(strings.TrimSpace(l.Level)); lvl {
    case "debug", "info", "warn", "warning", "error":
        l.Level = lvl
    default:
        return fmt.Errorf("invalid log.level: %q", l.Level)
    }
    if l.Format == "" { l.Format = "console" }
    if len(l.Outputs) == 0 { l.Outputs = []string{"stdout"} }
    return nil
}
