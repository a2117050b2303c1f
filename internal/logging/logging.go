// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/at-ishikawa/studyflow/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a text logger. When cfg.File is set, records go to a rotating
// file instead of stdout. The returned closer releases the file.
func New(cfg config.LoggingConfig, debugMode bool, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
	}
	if debugMode {
		level = slog.LevelDebug
	}

	var (
		w      io.Writer = stdout
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		rotating, err := newRotatingWriter(cfg)
		if err != nil {
			return nil, nil, err
		}
		w, closer = rotating, rotating
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	return logger, closer, nil
}

// Setup installs the logger from New as the slog default.
func Setup(cfg config.LoggingConfig, debugMode bool) (io.Closer, error) {
	logger, closer, err := New(cfg, debugMode, os.Stdout)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

func newRotatingWriter(cfg config.LoggingConfig) (*lumberjack.Logger, error) {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 5
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}, nil
}
