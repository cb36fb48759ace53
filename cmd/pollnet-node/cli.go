package main

import (
    "time"

    "github.com/spf13/cobra"
)

// Options holds CLI options shared by the subcommands. Flags that are set
// override the loaded configuration.
type Options struct {
    ConfigPath     string
    Address        string
    Port           int
    MaxConnections int
    Channel        int
    Message        string
    Timeout        time.Duration
}

func newRootCmd() *cobra.Command {
    var opts Options
    root := &cobra.Command{
        Use:           "pollnet-node",
        Short:         "Run a pollnet server, client or LAN discovery probe",
        SilenceUsage:  true,
        SilenceErrors: true,
    }
    root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")

    serverCmd := &cobra.Command{
        Use:   "server",
        Short: "Accept clients and echo their data back on channel 0",
        RunE: func(cmd *cobra.Command, args []string) error {
            a, err := setup(opts, cmd.Flags())
            if err != nil { return err }
            defer a.close()
            return a.runServer(cmd.Context())
        },
    }
    serverCmd.Flags().StringVar(&opts.Address, "address", "", "Bind address")
    serverCmd.Flags().IntVar(&opts.Port, "port", 0, "Bind port")
    serverCmd.Flags().IntVar(&opts.MaxConnections, "max-connections", 0, "Maximum concurrent clients")

    clientCmd := &cobra.Command{
        Use:   "client",
        Short: "Connect to a server and send a payload periodically",
        RunE: func(cmd *cobra.Command, args []string) error {
            a, err := setup(opts, cmd.Flags())
            if err != nil { return err }
            defer a.close()
            return a.runClient(cmd.Context(), []byte(opts.Message))
        },
    }
    clientCmd.Flags().StringVar(&opts.Address, "address", "", "Server address")
    clientCmd.Flags().IntVar(&opts.Port, "port", 0, "Server port")
    clientCmd.Flags().IntVar(&opts.Channel, "channel", 0, "Channel id (0..3)")
    clientCmd.Flags().StringVar(&opts.Message, "message", "ping", "Payload to send")

    discoverCmd := &cobra.Command{
        Use:   "discover",
        Short: "Broadcast a discovery request and list answering servers",
        RunE: func(cmd *cobra.Command, args []string) error {
            a, err := setup(opts, cmd.Flags())
            if err != nil { return err }
            defer a.close()
            port := a.cfg.Server.Port
            if cmd.Flags().Changed("port") { port = opts.Port }
            return a.runDiscover(cmd.Context(), cmd.OutOrStdout(), opts.Address, port, opts.Timeout)
        },
    }
    discoverCmd.Flags().StringVar(&opts.Address, "address", "", "Target address (default: broadcast)")
    discoverCmd.Flags().IntVar(&opts.Port, "port", 0, "Server port to probe")
    discoverCmd.Flags().DurationVar(&opts.Timeout, "timeout", 2*time.Second, "How long to wait for answers")

    root.AddCommand(serverCmd, clientCmd, discoverCmd)
    return root
}
