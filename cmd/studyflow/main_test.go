package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/studyflow/internal/bootstrap"
	"github.com/at-ishikawa/studyflow/internal/command"
	"github.com/at-ishikawa/studyflow/internal/config"
	"github.com/at-ishikawa/studyflow/internal/database"
	"github.com/at-ishikawa/studyflow/internal/server"
	"github.com/at-ishikawa/studyflow/internal/testutil"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func countStudyLogs(t *testing.T, path string) int {
	t.Helper()
	db, err := sqlx.Open(database.DriverName, path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM study_logs`))
	return count
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantDebug bool
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantDebug: true,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantDebug: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, setupLogger(tt.debugMode))
			logger := slog.Default()
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "studyflow", cmd.Use)
	for _, name := range []string{"migrate", "log", "status", "config", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestMigrateCommand(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	dbPath := filepath.Join(tmpDir, "data", config.DefaultFileName)

	out, err := runCommand(t, "--config", cfgPath, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")
	assert.NotContains(t, out, "applied ")
	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "status must not create the database")

	out, err = runCommand(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 2 migration(s) to "+dbPath)

	out, err = runCommand(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	out, err = runCommand(t, "--config", cfgPath, "migrate", "status", "--format", "yaml")
	require.NoError(t, err)
	var statuses []database.MigrationStatus
	require.NoError(t, yaml.Unmarshal([]byte(out), &statuses))
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.True(t, s.Applied)
		assert.NotEmpty(t, s.AppliedAt)
	}
}

func TestMigrateStatusCommand_KeepsJournalMode(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	dbPath := filepath.Join(tmpDir, "data", config.DefaultFileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(dbPath), 0o700))

	db, err := sqlx.Open(database.DriverName, dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runCommand(t, "--config", cfgPath, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")

	db, err = sqlx.Open(database.DriverName, dbPath)
	require.NoError(t, err)
	defer db.Close()
	var journalMode string
	require.NoError(t, db.Get(&journalMode, `PRAGMA journal_mode`))
	assert.Equal(t, "delete", journalMode)

	var ledgerTables int
	require.NoError(t, db.Get(&ledgerTables, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'schema_migrations'`))
	assert.Zero(t, ledgerTables)
}

func TestMigrateCommand_SetupFailure(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(config.DefaultYAML(filepath.Join(blocker, "data"))), 0o644))

	_, err := runCommand(t, "--config", cfgPath, "migrate")
	require.Error(t, err)
	var setupErr *database.SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, database.StageCreateDirectory, setupErr.Stage)
}

func TestLogAddCommand(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	dbPath := filepath.Join(tmpDir, "data", config.DefaultFileName)

	tests := []struct {
		name      string
		args      []string
		wantErr   string
		wantCount int
	}{
		{
			name:      "adds a log",
			args:      []string{"--mode", "pomodoro", "--subject", "Math", "--topic", "Integrals", "--focus", "1500", "--break", "300", "--breaks", "1"},
			wantCount: 1,
		},
		{
			name:      "rejects missing subject",
			args:      []string{"--mode", "pomodoro"},
			wantErr:   "subject is a required field",
			wantCount: 1,
		},
		{
			name:      "rejects negative durations",
			args:      []string{"--mode", "pomodoro", "--subject", "Math", "--focus", "-1"},
			wantErr:   "focusDurationSeconds must be 0 or greater",
			wantCount: 1,
		},
		{
			name:      "allows duplicates",
			args:      []string{"--mode", "pomodoro", "--subject", "Math", "--topic", "Integrals", "--focus", "1500", "--break", "300", "--breaks", "1"},
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, append([]string{"--config", cfgPath, "log", "add"}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, command.KindInvalid, command.KindOf(err))
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Contains(t, out, "Saved study log for Math.")
			}
			assert.Equal(t, tt.wantCount, countStudyLogs(t, dbPath))
		})
	}
}

func TestLogAddCommand_Server(t *testing.T) {
	handle := testutil.InitializeStorage(t, 2)
	gate := bootstrap.ReadyGate(handle)
	addStudyLog, err := command.NewAddStudyLog(gate, 0)
	require.NoError(t, err)
	srv := httptest.NewServer(server.NewHTTPHandler(addStudyLog, gate, server.Options{}))
	defer srv.Close()

	out, err := runCommand(t, "log", "add", "--server", srv.URL, "--mode", "free", "--subject", "Math")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved study log for Math.")

	var count int
	require.NoError(t, handle.DB().Get(&count, `SELECT COUNT(*) FROM study_logs`))
	assert.Equal(t, 1, count)

	_, err = runCommand(t, "log", "add", "--server", srv.URL, "--mode", "free")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject is a required field")
}

func TestStatusCommand(t *testing.T) {
	gate := bootstrap.ReadyGate(database.NewHandle(nil))
	srv := httptest.NewServer(server.NewHTTPHandler(nil, gate, server.Options{Version: "0.1.0-test"}))
	defer srv.Close()

	out, err := runCommand(t, "status", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "state: ready\nversion: 0.1.0-test\n", out)

	out, err = runCommand(t, "status", "--server", srv.URL, "--wait", "--attempts", "2")
	require.NoError(t, err)
	assert.Equal(t, "state: ready\n", out)
}

func TestConfigInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "nested", "config.yml")
	dataDir := filepath.Join(tmpDir, "data")

	out, err := runCommand(t, "--config", cfgPath, "config", "init", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+cfgPath+"\n", out)

	loader, err := config.NewConfigLoader(cfgPath)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.Database.DataDirectory)

	_, err = runCommand(t, "--config", cfgPath, "config", "init", "--data-dir", dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCommand(t, "--config", cfgPath, "config", "init", "--data-dir", dataDir, "--force")
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
}
