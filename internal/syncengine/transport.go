package syncengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/keydrop/keydrop-core/internal/models"
)

// requestTimeout is the default per-call network timeout recommended
// for pull/push/command calls.
const requestTimeout = 30 * time.Second

// TokenSource supplies the current bearer access token. Implementations
// are expected to transparently refresh an expired token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Transport is the HTTP binding to the sync API endpoints.
type Transport struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// NewTransport builds a Transport against baseURL, authenticating every
// call with a token obtained from tokens. A nil httpClient gets a
// sensible default with the recommended timeout.
func NewTransport(baseURL string, tokens TokenSource, httpClient *http.Client) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Transport{httpClient: httpClient, baseURL: baseURL, tokens: tokens}
}

func (t *Transport) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := t.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("syncengine: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Pull fetches one page of records newer than sinceVersion.
func (t *Transport) Pull(ctx context.Context, sinceVersion int64) (models.PullResponse, error) {
	var resp models.PullResponse
	path := fmt.Sprintf("/sync/pull?since_version=%d", sinceVersion)
	err := withRetry(ctx, func(ctx context.Context) error {
		return t.do(ctx, http.MethodGet, path, nil, &resp)
	})
	return resp, err
}

// Push submits a batch of locally-pending records.
func (t *Transport) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	var resp models.PushResponse
	err := withRetry(ctx, func(ctx context.Context) error {
		return t.do(ctx, http.MethodPost, "/sync/push", req, &resp)
	})
	return resp, err
}

// GetCommands polls for commands pending delivery to this device.
func (t *Transport) GetCommands(ctx context.Context) ([]models.RemoteCommand, error) {
	var cmds []models.RemoteCommand
	err := withRetry(ctx, func(ctx context.Context) error {
		return t.do(ctx, http.MethodGet, "/devices/commands", nil, &cmds)
	})
	return cmds, err
}

// AckCommand acknowledges delivery of a command. Acking is idempotent
// server-side, so redelivery after a retried ack is harmless.
func (t *Transport) AckCommand(ctx context.Context, id string, success bool) error {
	body := struct {
		Success bool `json:"success"`
	}{Success: success}
	return withRetry(ctx, func(ctx context.Context) error {
		return t.do(ctx, http.MethodPost, "/devices/commands/"+id+"/ack", body, nil)
	})
}
