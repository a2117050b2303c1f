package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/studyflow/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		force         bool
		dataDirectory string
	)

	command := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("os.UserHomeDir() > %w", err)
				}
				path = filepath.Join(home, ".config", config.AppName, "config.yml")
			}
			if dataDirectory == "" {
				dataDirectory = config.DefaultDataDirectory()
			}

			if err := writeDefaultConfig(path, dataDirectory, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	command.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	command.Flags().StringVar(&dataDirectory, "data-dir", "", "data directory to write into the config")
	return command
}

func writeDefaultConfig(path, dataDirectory string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Stat(%s) > %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(config.DefaultYAML(dataDirectory))); err != nil {
		return fmt.Errorf("atomic.WriteFile(%s) > %w", path, err)
	}
	return nil
}
