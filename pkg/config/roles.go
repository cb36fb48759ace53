package config

import "time"

// ServerConfig describes the server role.
// Example YAML:
// server:
//   address: "0.0.0.0"
//   port: 9000
//   max_connections: 16
//   answer_discovery: true
//   name: "arena-1"
type ServerConfig struct {
    Address         string `mapstructure:"address"`
    Port            int    `mapstructure:"port"`
    MaxConnections  int    `mapstructure:"max_connections"`
    AnswerDiscovery bool   `mapstructure:"answer_discovery"`
    Name            string `mapstructure:"name"`
}

// ClientConfig describes the client role.
type ClientConfig struct {
    Address        string `mapstructure:"address"`
    Port           int    `mapstructure:"port"`
    SendIntervalMS int    `mapstructure:"send_interval_ms"`
    // Channel used for the periodic payload (0..3).
    Channel int `mapstructure:"channel"`
}

func (c ClientConfig) SendInterval() time.Duration { return ms(c.SendIntervalMS) }

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
    Enable bool   `mapstructure:"enable"`
    Listen string `mapstructure:"listen"`
}
