package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studyflow/schemas"
)

const createLedgerQuery = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

// Migration is one irreversible schema change script.
type Migration struct {
	Version     int
	Description string
	Script      string
	Checksum    string
}

// NewMigration builds a migration and computes its checksum.
func NewMigration(version int, description, script string) Migration {
	sum := sha256.Sum256([]byte(script))
	return Migration{
		Version:     version,
		Description: description,
		Script:      script,
		Checksum:    hex.EncodeToString(sum[:]),
	}
}

// MigrationStatus describes one known migration against the ledger.
type MigrationStatus struct {
	Version     int    `yaml:"version"`
	Description string `yaml:"description"`
	Applied     bool   `yaml:"applied"`
	AppliedAt   string `yaml:"applied_at,omitempty"`
}

type ledgerRow struct {
	Version     int    `db:"version"`
	Description string `db:"description"`
	Checksum    string `db:"checksum"`
	AppliedAt   string `db:"applied_at"`
}

// DefaultMigrations loads the scripts embedded in the schemas package.
func DefaultMigrations() ([]Migration, error) {
	return LoadMigrations(schemas.Migrations, "migrations")
}

// LoadMigrations reads dir/NNNN_description.sql files from fsys in
// ascending version order.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("fs.Glob(%s) > %w", dir, err)
	}

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		version, description, err := parseMigrationName(path.Base(name))
		if err != nil {
			return nil, err
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("fs.ReadFile(%s) > %w", name, err)
		}
		migrations = append(migrations, NewMigration(version, description, string(content)))
	}

	ordered, err := orderMigrations(migrations)
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

func parseMigrationName(name string) (int, string, error) {
	base := strings.TrimSuffix(name, ".sql")
	prefix, rest, ok := strings.Cut(base, "_")
	if !ok || rest == "" {
		return 0, "", fmt.Errorf("%w: %s: want NNNN_description.sql", ErrInvalidMigration, name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s: version %q is not a number", ErrInvalidMigration, name, prefix)
	}
	if version <= 0 {
		return 0, "", fmt.Errorf("%w: %s: version must be positive", ErrInvalidMigration, name)
	}
	return version, strings.ReplaceAll(rest, "_", " "), nil
}

// orderMigrations returns a sorted copy and rejects duplicate or
// non-positive versions.
func orderMigrations(migrations []Migration) ([]Migration, error) {
	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	for i, m := range ordered {
		if m.Version <= 0 {
			return nil, fmt.Errorf("%w: version %d must be positive", ErrInvalidMigration, m.Version)
		}
		if i > 0 && ordered[i-1].Version == m.Version {
			return nil, fmt.Errorf("%w: duplicate version %d", ErrInvalidMigration, m.Version)
		}
	}
	return ordered, nil
}

// Migrate applies every migration missing from the ledger in ascending
// order on a single connection. Each script runs in its own transaction
// together with its ledger row. It returns the versions this call applied.
func Migrate(ctx context.Context, conn *sqlx.Conn, migrations []Migration) ([]int, error) {
	ordered, err := orderMigrations(migrations)
	if err != nil {
		return nil, err
	}

	if _, err := conn.ExecContext(ctx, createLedgerQuery); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := readLedger(ctx, conn)
	if err != nil {
		return nil, err
	}
	if err := verifyLedger(ordered, applied); err != nil {
		return nil, err
	}

	var done []int
	for _, m := range ordered {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		ran, err := applyMigration(ctx, conn, m)
		if err != nil {
			return done, err
		}
		if ran {
			done = append(done, m.Version)
		}
	}
	return done, nil
}

func applyMigration(ctx context.Context, conn *sqlx.Conn, m Migration) (bool, error) {
	ran := false
	err := RunInTx(ctx, conn, func(ctx context.Context, tx *sqlx.Tx) error {
		// Another process may have applied it after the ledger was read.
		var checksum string
		err := tx.GetContext(ctx, &checksum, `SELECT checksum FROM schema_migrations WHERE version = ?`, m.Version)
		if err == nil {
			if checksum != m.Checksum {
				return fmt.Errorf("%w: version %d", ErrChecksumMismatch, m.Version)
			}
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read schema_migrations v%d: %w", m.Version, err)
		}

		if _, err := tx.ExecContext(ctx, m.Script); err != nil {
			return fmt.Errorf("migration v%d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description, checksum, applied_at) VALUES (?, ?, ?, ?)`,
			m.Version, m.Description, m.Checksum, nowUTCString()); err != nil {
			return fmt.Errorf("record schema migration v%d: %w", m.Version, err)
		}
		ran = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return ran, nil
}

func readLedger(ctx context.Context, q sqlx.QueryerContext) (map[int]ledgerRow, error) {
	var rows []ledgerRow
	if err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT version, description, checksum, applied_at FROM schema_migrations ORDER BY version`); err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	applied := make(map[int]ledgerRow, len(rows))
	for _, row := range rows {
		applied[row.Version] = row
	}
	return applied, nil
}

func verifyLedger(ordered []Migration, applied map[int]ledgerRow) error {
	known := make(map[int]Migration, len(ordered))
	maxVersion := 0
	for _, m := range ordered {
		known[m.Version] = m
		if m.Version > maxVersion {
			maxVersion = m.Version
		}
	}

	for version, row := range applied {
		m, ok := known[version]
		switch {
		case !ok && version > maxVersion:
			return fmt.Errorf("%w: db=%d code=%d", ErrSchemaTooNew, version, maxVersion)
		case !ok:
			return fmt.Errorf("%w: version %d", ErrUnknownMigration, version)
		case row.Checksum != m.Checksum:
			return fmt.Errorf("%w: version %d", ErrChecksumMismatch, version)
		}
	}
	return nil
}

// MigrationStatuses reports which known migrations the ledger records.
// A database without a ledger reports every migration as pending.
func MigrationStatuses(ctx context.Context, q sqlx.QueryerContext, migrations []Migration) ([]MigrationStatus, error) {
	ordered, err := orderMigrations(migrations)
	if err != nil {
		return nil, err
	}

	var ledgerTables int
	if err := sqlx.GetContext(ctx, q, &ledgerTables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`); err != nil {
		return nil, fmt.Errorf("check schema_migrations table: %w", err)
	}

	applied := map[int]ledgerRow{}
	if ledgerTables > 0 {
		applied, err = readLedger(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	statuses := make([]MigrationStatus, 0, len(ordered))
	for _, m := range ordered {
		status := MigrationStatus{Version: m.Version, Description: m.Description}
		if row, ok := applied[m.Version]; ok {
			status.Applied = true
			status.AppliedAt = row.AppliedAt
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
