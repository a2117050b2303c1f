package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/at-ishikawa/studyflow/internal/bootstrap"
)

// Readiness reports the storage setup state.
// *bootstrap.StorageGate implements it.
type Readiness interface {
	State() bootstrap.State
	Err() error
}

// HealthResponse is the body of /readyz and /status.
type HealthResponse struct {
	State   bootstrap.State `json:"state"`
	Error   string          `json:"error,omitempty"`
	Version string          `json:"version,omitempty"`
}

func newHealthResponse(readiness Readiness) HealthResponse {
	resp := HealthResponse{State: readiness.State()}
	if err := readiness.Err(); err != nil && resp.State != bootstrap.StateReady {
		resp.Error = err.Error()
	}
	return resp
}

// readyzHandler answers 200 once storage is ready and 503 otherwise, so
// a failed setup stays visible while the process keeps running.
func readyzHandler(readiness Readiness) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := newHealthResponse(readiness)
		status := http.StatusOK
		if resp.State != bootstrap.StateReady {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	})
}

func statusHandler(readiness Readiness, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := newHealthResponse(readiness)
		resp.Version = version
		writeJSON(w, http.StatusOK, resp)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
