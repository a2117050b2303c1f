package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studyflow/internal/cli"
	"github.com/at-ishikawa/studyflow/internal/server"
)

func newStatusCommand() *cobra.Command {
	var (
		serverURL string
		wait      bool
		attempts  uint
		timeout   time.Duration
	)

	command := &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running studyflow server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				serverURL = "http://" + cfg.Server.Addr()
			}

			client := server.NewHealthClient(serverURL, timeout)
			defer client.Close()
			printer := cli.NewPrinter(cmd.OutOrStdout())

			if wait {
				health, err := client.WaitReady(cmd.Context(), attempts, 200*time.Millisecond)
				if health.State != "" {
					if printErr := printer.Health(health); printErr != nil {
						return printErr
					}
				}
				return err
			}

			health, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printer.Health(health)
		},
	}
	command.Flags().StringVar(&serverURL, "server", "", "server base URL (default from config)")
	command.Flags().BoolVar(&wait, "wait", false, "poll until storage is ready")
	command.Flags().UintVar(&attempts, "attempts", 10, "polls before giving up with --wait")
	command.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "timeout of each request")
	return command
}
