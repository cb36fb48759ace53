// Package config loads pollnet-node settings from YAML and POLLNET_*
// environment variables.
package config

import (
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/spf13/viper"
)

// Config is everything pollnet-node reads at startup.
type Config struct {
    AppName string `mapstructure:"app_name"`
    // TickRateHz is how often the node polls its transport.
    TickRateHz int `mapstructure:"tick_rate_hz"`

    Log     LogConfig     `mapstructure:"log"`
    Server  ServerConfig  `mapstructure:"server"`
    Client  ClientConfig  `mapstructure:"client"`
    Engine  EngineConfig  `mapstructure:"engine"`
    Metrics MetricsConfig `mapstructure:"metrics"`
}

func Default() *Config {
    return &Config{
        AppName:    "pollnet-node",
        TickRateHz: 60,
        Log: LogConfig{
            Level:       "info",
            Format:      "console",
            Outputs:     []string{"stdout"},
            Development: true,
            Rotation: RotationConfig{
                Filename:   "logs/pollnet.log",
                MaxSizeMB:  50,
                MaxBackups: 3,
                MaxAgeDays: 28,
                Compress:   true,
            },
        },
        Server: ServerConfig{
            Address:        "0.0.0.0",
            Port:           9000,
            MaxConnections: 16,
            Name:           "pollnet",
        },
        Client: ClientConfig{
            Address:        "127.0.0.1",
            Port:           9000,
            SendIntervalMS: 1000,
        },
        Engine: EngineConfig{
            ConnectKey:         "ck",
            HandshakeTimeoutMS: 5000,
            IdleTimeoutMS:      10000,
            KeepAliveMS:        2000,
            MaxMessageSize:     64 * 1024,
            ControlCodec:       "cbor",
        },
        Metrics: MetricsConfig{Listen: ":9100"},
    }
}

// defaultKeys lists every key viper must know about for env-only overrides
// to reach the struct.
func defaultKeys(c *Config) map[string]any {
    return map[string]any{
        "app_name":                    c.AppName,
        "tick_rate_hz":                c.TickRateHz,
        "log.level":                   c.Log.Level,
        "log.format":                  c.Log.Format,
        "log.outputs":                 c.Log.Outputs,
        "log.development":             c.Log.Development,
        "log.rotation.enable":         c.Log.Rotation.Enable,
        "log.rotation.filename":       c.Log.Rotation.Filename,
        "log.rotation.max_size_mb":    c.Log.Rotation.MaxSizeMB,
        "log.rotation.max_backups":    c.Log.Rotation.MaxBackups,
        "log.rotation.max_age_days":   c.Log.Rotation.MaxAgeDays,
        "log.rotation.compress":       c.Log.Rotation.Compress,
        "server.address":              c.Server.Address,
        "server.port":                 c.Server.Port,
        "server.max_connections":      c.Server.MaxConnections,
        "server.answer_discovery":     c.Server.AnswerDiscovery,
        "server.name":                 c.Server.Name,
        "client.address":              c.Client.Address,
        "client.port":                 c.Client.Port,
        "client.send_interval_ms":     c.Client.SendIntervalMS,
        "client.channel":              c.Client.Channel,
        "engine.connect_key":          c.Engine.ConnectKey,
        "engine.handshake_timeout_ms": c.Engine.HandshakeTimeoutMS,
        "engine.idle_timeout_ms":      c.Engine.IdleTimeoutMS,
        "engine.keepalive_ms":         c.Engine.KeepAliveMS,
        "engine.max_message_size":     c.Engine.MaxMessageSize,
        "engine.control_codec":        c.Engine.ControlCodec,
        "engine.discovery":            c.Engine.Discovery,
        "metrics.enable":              c.Metrics.Enable,
        "metrics.listen":              c.Metrics.Listen,
    }
}

// Load builds a Config from defaults, then the YAML file at path (or
// $POLLNET_CONFIG, or pollnet.yaml in ., ./configs and ~/.pollnet), then
// POLLNET_* variables, e.g. POLLNET_SERVER_MAX_CONNECTIONS=32. A missing
// file is not an error.
func Load(path string) (*Config, error) {
    cfg := Default()

    v := viper.New()
    v.SetConfigType("yaml")
    v.SetEnvPrefix("POLLNET")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
    v.AutomaticEnv()
    for k, val := range defaultKeys(cfg) { v.SetDefault(k, val) }

    if path == "" { path = os.Getenv("POLLNET_CONFIG") }
    if path != "" {
        v.SetConfigFile(path)
    } else {
        v.SetConfigName("pollnet")
        v.AddConfigPath(".")
        v.AddConfigPath("./configs")
        if home, err := os.UserHomeDir(); err == nil {
            v.AddConfigPath(filepath.Join(home, ".pollnet"))
        }
    }

    if err := v.ReadInConfig(); err != nil {
        var notFound viper.ConfigFileNotFoundError
        if !errors.As(err, &notFound) { return nil, fmt.Errorf("read config: %w", err) }
    }
    if err := v.Unmarshal(cfg); err != nil { return nil, fmt.Errorf("decode config: %w", err) }
    if err := cfg.validate(); err != nil { return nil, err }
    return cfg, nil
}

func (c *Config) validate() error {
    if err := c.Log.normalize(); err != nil { return err }
    if c.TickRateHz <= 0 || c.TickRateHz > 1000 {
        return fmt.Errorf("invalid tick_rate_hz: %d", c.TickRateHz)
    }
    if !validPort(c.Server.Port) { return fmt.Errorf("invalid server.port: %d", c.Server.Port) }
    if !validPort(c.Client.Port) { return fmt.Errorf("invalid client.port: %d", c.Client.Port) }
    if c.Server.MaxConnections < 0 {
        return fmt.Errorf("invalid server.max_connections: %d", c.Server.MaxConnections)
    }
    if c.Client.Channel < 0 || c.Client.Channel > 3 {
        return fmt.Errorf("invalid client.channel: %d", c.Client.Channel)
    }
    switch codec := strings.ToLower(strings.TrimSpace(c.Engine.ControlCodec)); codec {
    case "":
        c.Engine.ControlCodec = "cbor"
    case "cbor", "json":
        c.Engine.ControlCodec = codec
    default:
        return fmt.Errorf("invalid engine.control_codec: %q", c.Engine.ControlCodec)
    }
    return nil
}

func validPort(p int) bool { return p >= 0 && p <= 65535 }

// TickInterval is the polling period derived from TickRateHz.
func (c *Config) TickInterval() time.Duration {
    if c.TickRateHz <= 0 { return time.Second / 60 }
    return time.Second / time.Duration(c.TickRateHz)
}

// MustLoad panics if Load fails.
func MustLoad(path string) *Config {
    cfg, err := Load(path)
    if err != nil { panic(err) }
    return cfg
}
