package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:5000"

// Client provides programmatic access to a running helpdesk server.
type Client struct {
	baseURL   string
	sessionID string
	hc        *http.Client
}

// New creates a new Client with the given options.
func New(opts ...Option) *Client {
	cfg := &clientConfig{
		baseURL: defaultBaseURL,
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.baseURL, "/"),
		sessionID: cfg.sessionID,
		hc:        hc,
	}
}

// SessionID returns the conversation id the client is bound to. Empty
// until the first Chat call when none was configured.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Welcome fetches the greeting and binds the client to the session id
// the server issues with it.
func (c *Client) Welcome(ctx context.Context) (*ChatReply, error) {
	var reply ChatReply
	if err := c.do(ctx, http.MethodGet, "/api/welcome", nil, &reply); err != nil {
		return nil, fmt.Errorf("welcome: %w", err)
	}

	if reply.SessionID != "" {
		c.sessionID = reply.SessionID
	}
	return &reply, nil
}

// Chat sends one message and returns the agent's reply. The session id
// issued by the server is remembered, so subsequent calls continue the
// same conversation.
func (c *Client) Chat(ctx context.Context, message string) (*ChatReply, error) {
	payload := map[string]string{"message": message}

	var reply ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chat", payload, &reply); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	if reply.SessionID != "" {
		c.sessionID = reply.SessionID
	}
	return &reply, nil
}

// Status fetches the server health report.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return &status, nil
}

// RebuildKnowledge asks the server to re-index its knowledge base.
func (c *Client) RebuildKnowledge(ctx context.Context) (*RebuildResult, error) {
	var result RebuildResult
	if err := c.do(ctx, http.MethodPost, "/api/rebuild-knowledge", nil, &result); err != nil {
		return nil, fmt.Errorf("rebuild knowledge: %w", err)
	}
	return &result, nil
}

// Models lists the language models available on the server's backend.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var out struct {
		Models []string `json:"models"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &out); err != nil {
		return nil, fmt.Errorf("models: %w", err)
	}
	return out.Models, nil
}

type apiError struct {
	Message string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: c.sessionID})
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Message)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
