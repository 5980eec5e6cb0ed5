package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrUnauthorized marks an upstream 401: the bearer token is gone stale and
// the session that carried it must be torn down.
var ErrUnauthorized = errors.New("upstream rejected the bearer token")

// APIError is any non-2xx upstream answer besides 401. Message carries the
// server-supplied text when the body had one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// Envelope is the shape every upstream endpoint answers with. Data is decoded
// lazily because its layout varies per entity.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client issues authenticated REST calls against the disparabot backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// Transport-level failures on reads are retried this many extra times.
	readRetries int
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		readRetries: 2,
	}
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint, token string, payload interface{}) (*Envelope, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope Envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("failed to decode response envelope: %w", err)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("upstream error: %s %s status %d body %s", method, endpoint, resp.StatusCode, string(raw))
		return nil, &APIError{Status: resp.StatusCode, Message: envelope.Message}
	}

	return &envelope, nil
}

// Get reads endpoint and decodes the envelope's data field into out. Pure
// transport failures are retried a fixed number of times; HTTP errors are not.
func (c *Client) Get(ctx context.Context, token, endpoint string, out interface{}) error {
	var envelope *Envelope
	var err error
	for attempt := 0; attempt <= c.readRetries; attempt++ {
		envelope, err = c.makeRequest(ctx, http.MethodGet, endpoint, token, nil)
		if err == nil {
			break
		}
		var apiErr *APIError
		if errors.Is(err, ErrUnauthorized) || errors.As(err, &apiErr) || ctx.Err() != nil {
			return err
		}
		log.Printf("upstream GET %s attempt %d failed: %v", endpoint, attempt+1, err)
	}
	if err != nil {
		return err
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// Post issues a create-style call. The returned envelope is consumed loosely
// by callers, mutation shapes vary per entity.
func (c *Client) Post(ctx context.Context, token, endpoint string, payload interface{}) (*Envelope, error) {
	return c.makeRequest(ctx, http.MethodPost, endpoint, token, payload)
}

func (c *Client) Put(ctx context.Context, token, endpoint string, payload interface{}) (*Envelope, error) {
	return c.makeRequest(ctx, http.MethodPut, endpoint, token, payload)
}

func (c *Client) Delete(ctx context.Context, token, endpoint string) (*Envelope, error) {
	return c.makeRequest(ctx, http.MethodDelete, endpoint, token, nil)
}

// ErrorMessage digs the human-readable text out of an upstream failure,
// falling back to a generic one. Pages show this inside toasts.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnauthorized) {
		return "sessão expirada"
	}
	return "Erro desconhecido"
}
