package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studyflow/internal/bootstrap"
	"github.com/at-ishikawa/studyflow/internal/command"
	"github.com/at-ishikawa/studyflow/internal/config"
	"github.com/at-ishikawa/studyflow/internal/database"
	"github.com/at-ishikawa/studyflow/internal/logging"
	"github.com/at-ishikawa/studyflow/internal/server"
	"github.com/at-ishikawa/studyflow/internal/version"
)

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "studyflow-server",
		Short:         "Studyflow backend serving the desktop shell",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), debugMode)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, debugMode bool) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	logCloser, err := logging.Setup(cfg.Logging, debugMode)
	if err != nil {
		return fmt.Errorf("logging.Setup() > %w", err)
	}
	app.AddShutdownHook("logger", func(ctx context.Context) error {
		return logCloser.Close()
	})

	gate := startStorage(ctx, cfg.Database)
	app.AddShutdownHook("storage", gate.Close)

	addStudyLog, err := command.NewAddStudyLog(gate, cfg.Database.CommandTimeout)
	if err != nil {
		return fmt.Errorf("command.NewAddStudyLog() > %w", err)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: server.NewHTTPHandler(addStudyLog, gate, server.Options{
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			Version:        version.String(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook("http", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "addr", srv.Addr, "version", version.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// startStorage initializes the database in the background. The server
// answers requests meanwhile; commands wait on the returned gate.
func startStorage(ctx context.Context, cfg config.DatabaseConfig) *bootstrap.StorageGate {
	gate := bootstrap.NewStorageGate()
	gate.Start(ctx, func(ctx context.Context) (*database.Handle, error) {
		migrations, err := database.DefaultMigrations()
		if err != nil {
			return nil, fmt.Errorf("database.DefaultMigrations() > %w", err)
		}
		return database.Initialize(ctx, cfg, migrations)
	})
	return gate
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
