// Package server provides the Connect RPC command surface for the desktop
// shell and its health endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/studyflow/internal/command"
)

const (
	// StudyLogServiceName is the fully-qualified name of the service.
	StudyLogServiceName = "studyflow.v1.StudyLogService"
	// AddStudyLogProcedure is the route of add_study_log.
	AddStudyLogProcedure = "/" + StudyLogServiceName + "/AddStudyLog"
)

// AddStudyLogResponse is empty; success carries no data.
type AddStudyLogResponse struct{}

// StudyLogCommand executes add_study_log. *command.AddStudyLog implements it.
type StudyLogCommand interface {
	Execute(ctx context.Context, req command.AddStudyLogRequest) error
}

// StudyLogHandler implements StudyLogService.
type StudyLogHandler struct {
	addStudyLog StudyLogCommand
}

// NewStudyLogHandler creates a new StudyLogHandler.
func NewStudyLogHandler(addStudyLog StudyLogCommand) *StudyLogHandler {
	return &StudyLogHandler{addStudyLog: addStudyLog}
}

// AddStudyLog stores one study session.
func (h *StudyLogHandler) AddStudyLog(
	ctx context.Context,
	req *connect.Request[command.AddStudyLogRequest],
) (*connect.Response[AddStudyLogResponse], error) {
	if err := h.addStudyLog.Execute(ctx, *req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddStudyLogResponse{}), nil
}

// NewStudyLogServiceHandler builds an HTTP handler serving every procedure
// of StudyLogService and returns the path to mount it on.
func NewStudyLogServiceHandler(h *StudyLogHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	addStudyLog := connect.NewUnaryHandler(
		AddStudyLogProcedure,
		h.AddStudyLog,
		opts...,
	)
	return "/" + StudyLogServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AddStudyLogProcedure:
			addStudyLog.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func toConnectError(err error) *connect.Error {
	var cmdErr *command.CommandError
	if !errors.As(err, &cmdErr) {
		slog.Error("unexpected command error", "error", err)
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}

	connectErr := connect.NewError(codeFor(cmdErr.Kind), errors.New(cmdErr.Message))
	if len(cmdErr.Violations) > 0 {
		fieldViolations := make([]*errdetails.BadRequest_FieldViolation, 0, len(cmdErr.Violations))
		for _, v := range cmdErr.Violations {
			fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: v.Description,
			})
		}
		if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
			FieldViolations: fieldViolations,
		}); detailErr == nil {
			connectErr.AddDetail(detail)
		}
	}
	return connectErr
}

func codeFor(kind command.Kind) connect.Code {
	switch kind {
	case command.KindInvalid:
		return connect.CodeInvalidArgument
	case command.KindUnavailable:
		return connect.CodeUnavailable
	case command.KindTimeout:
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}
