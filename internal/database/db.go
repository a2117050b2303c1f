// Package database manages the embedded SQLite store: opening the file,
// bounding the connection pool, and applying schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/at-ishikawa/studyflow/internal/config"
)

const (
	DriverName          = "sqlite"
	DefaultMaxOpenConns = 5
)

// Open opens a pool over the SQLite file described by cfg. The file is
// created on first connection if it does not exist.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, dataSourceName(cfg.Path(), cfg.BusyTimeoutMs))
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = DefaultMaxOpenConns
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	return db, nil
}

// OpenReadOnly opens an existing file for inspection. No pragma that
// writes to the file is applied and a missing file is not created.
func OpenReadOnly(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	query := url.Values{}
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeoutMs))
	query.Set("mode", "ro")

	db, err := sqlx.Open(DriverName, fileURI(cfg.Path(), query))
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// dataSourceName builds a modernc DSN. Pragmas are applied to every pooled
// connection; busy_timeout must come first so the WAL switch can wait.
func dataSourceName(path string, busyTimeoutMs int) string {
	query := url.Values{}
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMs))
	query.Add("_pragma", "journal_mode(WAL)")
	query.Add("_pragma", "foreign_keys(1)")
	query.Set("_txlock", "immediate")
	return fileURI(path, query)
}

// uriPathEscaper escapes the characters SQLite treats as URI syntax in the
// path part of a file: URI.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func fileURI(path string, query url.Values) string {
	return "file:" + uriPathEscaper.Replace(path) + "?" + query.Encode()
}

// TxBeginner is satisfied by both *sqlx.DB and *sqlx.Conn.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// RunInTx runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise, it is committed.
func RunInTx(ctx context.Context, db TxBeginner, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
