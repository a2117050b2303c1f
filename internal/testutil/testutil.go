// Package testutil provides shared test helpers for config files and
// migrated SQLite databases.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studyflow/internal/config"
	"github.com/at-ishikawa/studyflow/internal/database"
)

// DatabaseConfig returns a database config rooted in a fresh temp directory.
func DatabaseConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		DataDirectory:    filepath.Join(t.TempDir(), "data"),
		FileName:         config.DefaultFileName,
		MaxOpenConns:     database.DefaultMaxOpenConns,
		BusyTimeoutMs:    5000,
		MigrationTimeout: 30 * time.Second,
		CommandTimeout:   5 * time.Second,
	}
}

// InitializeStorage creates a migrated database with a pool of maxOpenConns
// connections and closes it when the test ends.
func InitializeStorage(t *testing.T, maxOpenConns int) *database.Handle {
	t.Helper()
	cfg := DatabaseConfig(t)
	cfg.MaxOpenConns = maxOpenConns

	migrations, err := database.DefaultMigrations()
	require.NoError(t, err)
	handle, err := database.Initialize(context.Background(), cfg, migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })
	return handle
}

// SetupTestConfig writes a config file whose data directory lives under
// tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	cfgPath := filepath.Join(tmpDir, "config.yml")
	content := config.DefaultYAML(filepath.Join(tmpDir, "data"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}
