package server

import (
	"net/http"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Options configures NewHTTPHandler.
type Options struct {
	AllowedOrigins []string
	Version        string
}

// NewHTTPHandler mounts the command surface and health endpoints behind
// the request id and CORS middleware, serving HTTP/2 without TLS.
func NewHTTPHandler(cmd StudyLogCommand, readiness Readiness, opts Options) http.Handler {
	path, studyLogHandler := NewStudyLogServiceHandler(
		NewStudyLogHandler(cmd),
		connect.WithInterceptors(loggingInterceptor()),
	)

	mux := http.NewServeMux()
	mux.Handle(path, studyLogHandler)
	mux.Handle("GET /readyz", readyzHandler(readiness))
	mux.Handle("GET /status", statusHandler(readiness, opts.Version))

	return corsMiddleware(requestIDMiddleware(h2c.NewHandler(mux, &http2.Server{})), opts.AllowedOrigins)
}
