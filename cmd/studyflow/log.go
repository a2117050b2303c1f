package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studyflow/internal/bootstrap"
	"github.com/at-ishikawa/studyflow/internal/cli"
	"github.com/at-ishikawa/studyflow/internal/command"
	"github.com/at-ishikawa/studyflow/internal/database"
	"github.com/at-ishikawa/studyflow/internal/server"
)

func newLogCommand() *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Study log commands",
	}
	logCmd.AddCommand(newLogAddCommand())
	return logCmd
}

func newLogAddCommand() *cobra.Command {
	var (
		req       command.AddStudyLogRequest
		serverURL string
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record one study session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL != "" {
				client := server.NewStudyLogClient(http.DefaultClient, serverURL)
				if _, err := client.AddStudyLog(cmd.Context(), &req); err != nil {
					return fmt.Errorf("client.AddStudyLog() > %w", err)
				}
				return cli.NewPrinter(cmd.OutOrStdout()).StudyLogAdded(req.Subject)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			migrations, err := database.DefaultMigrations()
			if err != nil {
				return fmt.Errorf("database.DefaultMigrations() > %w", err)
			}
			handle, err := database.Initialize(cmd.Context(), cfg.Database, migrations)
			if err != nil {
				return err
			}
			gate := bootstrap.ReadyGate(handle)
			defer gate.Close(cmd.Context())

			addStudyLog, err := command.NewAddStudyLog(gate, cfg.Database.CommandTimeout)
			if err != nil {
				return fmt.Errorf("command.NewAddStudyLog() > %w", err)
			}
			if err := addStudyLog.Execute(cmd.Context(), req); err != nil {
				return err
			}
			return cli.NewPrinter(cmd.OutOrStdout()).StudyLogAdded(req.Subject)
		},
	}

	flags := addCmd.Flags()
	flags.StringVar(&req.Mode, "mode", "", "study mode, e.g. pomodoro")
	flags.StringVar(&req.Subject, "subject", "", "subject studied")
	flags.StringVar(&req.Topic, "topic", "", "topic within the subject")
	flags.Int64Var(&req.FocusDurationSeconds, "focus", 0, "focused time in seconds")
	flags.Int64Var(&req.BreakDurationSeconds, "break", 0, "break time in seconds")
	flags.Int64Var(&req.BreakCount, "breaks", 0, "number of breaks")
	flags.StringVar(&serverURL, "server", "", "send to a running server instead of writing the database directly")
	return addCmd
}
