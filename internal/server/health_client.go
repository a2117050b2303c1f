package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/studyflow/internal/bootstrap"
)

// ErrNotReady is returned while the server reports storage as starting.
var ErrNotReady = errors.New("server not ready")

// HealthClient queries the health endpoints of a running server.
type HealthClient struct {
	httpClient *resty.Client
}

// NewHealthClient creates a client for the server at baseURL.
func NewHealthClient(baseURL string, timeout time.Duration) *HealthClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &HealthClient{httpClient: client}
}

func (c *HealthClient) Close() error {
	return c.httpClient.Close()
}

// Status fetches /status.
func (c *HealthClient) Status(ctx context.Context) (HealthResponse, error) {
	return c.get(ctx, "/status", http.StatusOK)
}

// Ready fetches /readyz. A starting server yields ErrNotReady; a failed
// one yields an error carrying the reported setup error.
func (c *HealthClient) Ready(ctx context.Context) (HealthResponse, error) {
	body, err := c.get(ctx, "/readyz", http.StatusOK, http.StatusServiceUnavailable)
	if err != nil {
		return body, err
	}
	switch body.State {
	case bootstrap.StateReady:
		return body, nil
	case bootstrap.StateStarting:
		return body, ErrNotReady
	default:
		return body, fmt.Errorf("storage %s: %s", body.State, body.Error)
	}
}

// WaitReady polls /readyz with backoff until the server is ready, the
// server reports a failed setup, or attempts run out.
func (c *HealthClient) WaitReady(ctx context.Context, attempts uint, delay time.Duration) (HealthResponse, error) {
	var last HealthResponse
	err := retry.Do(
		func() error {
			body, err := c.Ready(ctx)
			last = body
			if err == nil {
				return nil
			}
			if body.State == bootstrap.StateFailed || body.State == bootstrap.StateClosed {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
	return last, err
}

func (c *HealthClient) get(ctx context.Context, path string, accepted ...int) (HealthResponse, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("httpClient.Get(%s) > %w", path, err)
	}

	ok := false
	for _, status := range accepted {
		if response.StatusCode() == status {
			ok = true
			break
		}
	}
	if !ok {
		return HealthResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	var body HealthResponse
	if err := json.Unmarshal([]byte(response.String()), &body); err != nil {
		return HealthResponse{}, fmt.Errorf("json.Unmarshal(%s) > %w", path, err)
	}
	return body, nil
}
