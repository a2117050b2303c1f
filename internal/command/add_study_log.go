// Package command implements the operations the desktop shell invokes.
// Every failure is reported as a *CommandError; no command crashes the
// process.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/at-ishikawa/studyflow/internal/bootstrap"
	"github.com/at-ishikawa/studyflow/internal/database"
	"github.com/at-ishikawa/studyflow/internal/studylog"
)

const (
	insertFailedMessage = "failed to insert log"
	unavailableMessage  = "storage is not available"
	timeoutMessage      = "timed out saving the study log"
	canceledMessage     = "request was canceled"
)

// AddStudyLogRequest is the payload of add_study_log.
type AddStudyLogRequest struct {
	Mode                 string `json:"mode" validate:"required"`
	Subject              string `json:"subject" validate:"required"`
	Topic                string `json:"topic"`
	FocusDurationSeconds int64  `json:"focusDurationSeconds" validate:"min=0"`
	BreakDurationSeconds int64  `json:"breakDurationSeconds" validate:"min=0"`
	BreakCount           int64  `json:"breakCount" validate:"min=0"`
}

func (r AddStudyLogRequest) normalized() AddStudyLogRequest {
	r.Mode = strings.TrimSpace(r.Mode)
	r.Subject = strings.TrimSpace(r.Subject)
	return r
}

// Gate yields the storage handle once setup has finished.
// *bootstrap.StorageGate implements it.
type Gate interface {
	Wait(ctx context.Context) (*database.Handle, error)
}

// AddStudyLog inserts one study log per call. It holds no state between
// calls and is safe for concurrent use.
type AddStudyLog struct {
	gate          Gate
	timeout       time.Duration
	validator     *requestValidator
	newRepository func(handle *database.Handle) studylog.Repository
}

// NewAddStudyLog creates the command. timeout bounds each call including
// the wait for storage; zero means no bound beyond the caller's context.
func NewAddStudyLog(gate Gate, timeout time.Duration) (*AddStudyLog, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	return &AddStudyLog{
		gate:      gate,
		timeout:   timeout,
		validator: v,
		newRepository: func(handle *database.Handle) studylog.Repository {
			return studylog.NewDBRepository(handle)
		},
	}, nil
}

// Execute validates req and inserts it as one row. It makes a single
// attempt; the returned error is always a *CommandError.
func (c *AddStudyLog) Execute(ctx context.Context, req AddStudyLogRequest) (err error) {
	req = req.normalized()
	if cmdErr := c.validator.check(req); cmdErr != nil {
		slog.Debug("rejected study log", "error", cmdErr.Message)
		return cmdErr
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			cause := recoveredError(r)
			slog.Error("add study log panicked", "error", cause)
			err = newCommandError(KindStorage, insertFailedMessage, cause)
		}
	}()

	handle, err := c.gate.Wait(ctx)
	if err != nil {
		return c.fail(ctx, "wait for storage", err)
	}

	log := &studylog.StudyLog{
		Mode:                 req.Mode,
		Subject:              req.Subject,
		Topic:                req.Topic,
		FocusDurationSeconds: req.FocusDurationSeconds,
		BreakDurationSeconds: req.BreakDurationSeconds,
		BreakCount:           req.BreakCount,
	}
	if err := c.newRepository(handle).Create(ctx, log); err != nil {
		return c.fail(ctx, "insert study log", err)
	}

	slog.Info("study log added", "id", log.ID, "mode", log.Mode, "subject", log.Subject)
	return nil
}

func (c *AddStudyLog) fail(ctx context.Context, step string, err error) *CommandError {
	cause := fmt.Errorf("%s > %w", step, err)
	var cmdErr *CommandError
	switch {
	case errors.Is(err, bootstrap.ErrStorageUnavailable):
		cmdErr = newCommandError(KindUnavailable, unavailableMessage, cause)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		cmdErr = newCommandError(KindTimeout, timeoutMessage, cause)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		cmdErr = newCommandError(KindUnavailable, canceledMessage, cause)
	default:
		cmdErr = newCommandError(KindStorage, insertFailedMessage, cause)
	}
	slog.Error("add study log failed", "kind", cmdErr.Kind, "error", cause)
	return cmdErr
}
