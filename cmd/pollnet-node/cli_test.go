package main

import (
    "testing"

    "pollnet/pkg/config"
)

func TestRootCommands(t *testing.T) {
    root := newRootCmd()
    for _, name := range []string{"server", "client", "discover"} {
        cmd, _, err := root.Find([]string{name})
        if err != nil || cmd.Name() != name { t.Fatalf("missing subcommand %q: %v", name, err) }
    }
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
    root := newRootCmd()
    serverCmd, _, err := root.Find([]string{"server"})
    if err != nil { t.Fatalf("find: %v", err) }
    if err := serverCmd.Flags().Parse([]string{"--port", "7100"}); err != nil { t.Fatalf("parse: %v", err) }

    cfg := config.Default()
    applyFlags(cfg, Options{Port: 7100, Address: "ignored", MaxConnections: 99}, serverCmd.Flags())
    if cfg.Server.Port != 7100 || cfg.Client.Port != 7100 { t.Fatalf("port not applied: %d/%d", cfg.Server.Port, cfg.Client.Port) }
    if cfg.Server.Address != config.Default().Server.Address { t.Fatalf("unchanged address overridden: %q", cfg.Server.Address) }
    if cfg.Server.MaxConnections != config.Default().Server.MaxConnections { t.Fatalf("unchanged max-connections overridden") }
}
