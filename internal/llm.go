package internal

import "context"

// Provider is a text-completion backend. Complete must return an error
// when the backend is unreachable or times out; callers decide whether to
// fall back to canned responses.
type Provider interface {
	Complete(ctx context.Context, system, prompt string, temperature float64) (string, error)
}

// Embedder turns text into fixed-dimension vectors. EmbedBatch returns an
// error on backend failure, never a partially-filled result.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
