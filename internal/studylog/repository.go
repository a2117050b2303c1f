package studylog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const insertQuery = `INSERT INTO study_logs (mode, subject, topic, focus_duration_seconds, break_duration_seconds, break_count)
	VALUES (?, ?, ?, ?, ?, ?)`

//go:generate mockgen -source=repository.go -destination=../mocks/studylog/mock_repository.go -package=mock_studylog

// Repository defines operations for storing study logs.
type Repository interface {
	Create(ctx context.Context, log *StudyLog) error
}

// ConnLender lends a pooled connection for the duration of fn.
// *database.Handle implements it.
type ConnLender interface {
	WithConn(ctx context.Context, fn func(ctx context.Context, conn *sqlx.Conn) error) error
}

// DBRepository implements Repository on the shared SQLite pool.
type DBRepository struct {
	lender ConnLender
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(lender ConnLender) *DBRepository {
	return &DBRepository{lender: lender}
}

// Create inserts a new study log and sets its ID.
// Values are only ever bound as parameters.
func (r *DBRepository) Create(ctx context.Context, log *StudyLog) error {
	return r.lender.WithConn(ctx, func(ctx context.Context, conn *sqlx.Conn) error {
		result, err := conn.ExecContext(ctx, insertQuery,
			log.Mode, log.Subject, log.Topic,
			log.FocusDurationSeconds, log.BreakDurationSeconds, log.BreakCount)
		if err != nil {
			return fmt.Errorf("conn.ExecContext(insert study_log) > %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("result.LastInsertId() > %w", err)
		}
		log.ID = id
		return nil
	})
}
