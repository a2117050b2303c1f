package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studyflow/internal/config"
)

// Handle owns the connection pool for the lifetime of the process.
// It is safe for concurrent use.
type Handle struct {
	db      *sqlx.DB
	path    string
	applied []int
}

// NewHandle wraps an already opened pool.
func NewHandle(db *sqlx.DB) *Handle {
	return &Handle{db: db}
}

// Initialize creates the data directory, opens the database file and brings
// its schema up to date before returning. Running it again, or from several
// processes at once, against the same file is safe.
func Initialize(ctx context.Context, cfg config.DatabaseConfig, migrations []Migration) (*Handle, error) {
	path := cfg.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, &SetupError{Stage: StageCreateDirectory, Path: path, Err: err}
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, &SetupError{Stage: StageOpen, Path: path, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &SetupError{Stage: StageOpen, Path: path, Err: err}
	}

	handle := &Handle{db: db, path: path}

	migrateCtx := ctx
	if cfg.MigrationTimeout > 0 {
		var cancel context.CancelFunc
		migrateCtx, cancel = context.WithTimeout(ctx, cfg.MigrationTimeout)
		defer cancel()
	}

	slog.Debug("running database migrations", "path", path, "known", len(migrations))
	if err := handle.WithConn(migrateCtx, func(ctx context.Context, conn *sqlx.Conn) error {
		applied, err := Migrate(ctx, conn, migrations)
		handle.applied = applied
		return err
	}); err != nil {
		_ = db.Close()
		return nil, &SetupError{Stage: StageMigrate, Path: path, Err: err}
	}

	slog.Info("database ready", "path", path, "applied", handle.applied)
	return handle, nil
}

// WithConn lends one pooled connection to fn. It blocks while the pool is
// exhausted, until a connection frees up or ctx is done. The connection
// goes back to the pool when fn returns or panics.
func (h *Handle) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sqlx.Conn) error) (err error) {
	conn, err := h.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("release connection: %w", closeErr)
		}
	}()

	return fn(ctx, conn)
}

// Applied lists the migration versions applied by Initialize.
func (h *Handle) Applied() []int {
	return h.applied
}

func (h *Handle) DB() *sqlx.DB {
	if h == nil {
		return nil
	}
	return h.db
}

func (h *Handle) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

func (h *Handle) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}
