package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultOllamaURL       = "http://localhost:11434"
	DefaultOllamaModel     = "llama3.2"
	DefaultEmbeddingModel  = "nomic-embed-text"
	DefaultBackendTimeout  = 60 * time.Second
	connectionCheckTimeout = 5 * time.Second
)

var (
	_ Provider = (*OllamaClient)(nil)
	_ Embedder = (*OllamaClient)(nil)
)

// OllamaClient talks to a local Ollama instance over HTTP. It serves both
// as the completion Provider and the Embedder; every call is bounded by
// the configured timeout.
type OllamaClient struct {
	baseURL    string
	model      string
	embedModel string
	client     *http.Client

	mu        sync.Mutex
	dimension int
}

func NewOllamaClient(baseURL, model, embedModel string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if embedModel == "" {
		embedModel = DefaultEmbeddingModel
	}
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}

	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		embedModel: embedModel,
		client:     &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (c *OllamaClient) Complete(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	var out generateResponse
	req := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		System:  system,
		Stream:  false,
		Options: generateOptions{Temperature: temperature},
	}

	if err := c.post(ctx, "/api/generate", req, &out); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out.Response, nil
}

func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		var out embeddingResponse
		req := embeddingRequest{Model: c.embedModel, Prompt: text}

		if err := c.post(ctx, "/api/embeddings", req, &out); err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		if len(out.Embedding) == 0 {
			return nil, fmt.Errorf("embed: empty embedding from model %s", c.embedModel)
		}

		c.mu.Lock()
		if c.dimension == 0 {
			c.dimension = len(out.Embedding)
		} else if c.dimension != len(out.Embedding) {
			dim := c.dimension
			c.mu.Unlock()
			return nil, fmt.Errorf("embed: dimension changed from %d to %d", dim, len(out.Embedding))
		}
		c.mu.Unlock()

		vectors = append(vectors, out.Embedding)
	}

	return vectors, nil
}

func (c *OllamaClient) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// CheckConnection reports whether the Ollama API answers at all.
func (c *OllamaClient) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectionCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: status %d", resp.StatusCode)
	}

	var out tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse models list: %w", err)
	}

	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
