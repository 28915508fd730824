package internal

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
)

// fakeEmbedder returns deterministic vectors. Texts registered in
// vectors win; everything else gets a hash-derived vector so round-trip
// tests stay stable.
type fakeEmbedder struct {
	dim     int
	vectors map[string][]float32
	err     error
	calls   int
}

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{dim: dim, vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out = append(out, v)
			continue
		}
		vec := make([]float32, f.dim)
		for i := range vec {
			h := fnv.New32a()
			h.Write([]byte(text))
			h.Write([]byte{byte(i)})
			vec[i] = float32(h.Sum32()%1000) / 1000
		}
		out = append(out, vec)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

// bagVector embeds text as word counts over a fixed vocabulary, which
// gives L2 distances that track word overlap.
func bagVector(vocab []string, text string) []float32 {
	counts := make(map[string]int)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		counts[w]++
	}

	vec := make([]float32, len(vocab))
	for i, w := range vocab {
		vec[i] = float32(counts[w])
	}
	return vec
}

var errBackendDown = errors.New("backend unavailable")

// fakeProvider replays scripted replies in order; an empty script means
// every call fails. Safe for concurrent use.
type fakeProvider struct {
	mu      sync.Mutex
	replies []string
	calls   []string
	temps   []float64
	err     error
}

func (f *fakeProvider) Complete(_ context.Context, _, prompt string, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, prompt)
	f.temps = append(f.temps, temperature)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errBackendDown
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}
