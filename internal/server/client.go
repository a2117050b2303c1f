package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/studyflow/internal/command"
)

// StudyLogClient calls StudyLogService on a running server.
type StudyLogClient struct {
	addStudyLog *connect.Client[command.AddStudyLogRequest, AddStudyLogResponse]
}

// NewStudyLogClient creates a client for the server at baseURL,
// e.g. http://127.0.0.1:8730.
func NewStudyLogClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *StudyLogClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &StudyLogClient{
		addStudyLog: connect.NewClient[command.AddStudyLogRequest, AddStudyLogResponse](
			httpClient,
			baseURL+AddStudyLogProcedure,
			opts...,
		),
	}
}

// AddStudyLog calls StudyLogService.AddStudyLog.
func (c *StudyLogClient) AddStudyLog(ctx context.Context, req *command.AddStudyLogRequest) (*AddStudyLogResponse, error) {
	resp, err := c.addStudyLog.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
