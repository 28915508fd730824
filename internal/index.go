package internal

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const (
	IndexFilename    = "index.vec"
	MetadataFilename = "metadata.json"
)

var (
	ErrIndexEmpty   = errors.New("cannot build index from zero vectors")
	ErrIndexMissing = errors.New("no persisted index")
	// ErrIndexCorrupt means the vector artifact and the chunk metadata
	// artifact disagree. Loading must fail loudly; the caller falls back
	// to Rebuild.
	ErrIndexCorrupt = errors.New("persisted index is corrupt")
)

// SearchResult is a chunk copy annotated with a similarity score derived
// from squared L2 distance as 1/(1+d). Scores are in (0,1], 1 meaning an
// exact match. Similarity is intentionally not cosine; magnitudes matter.
type SearchResult struct {
	Chunk
	Score float64 `json:"similarity_score"`
}

type IndexStats struct {
	TotalDocuments int    `json:"total_documents"`
	Dimension      int    `json:"dimension"`
	IndexExists    bool   `json:"index_exists"`
	StorePath      string `json:"store_path"`
}

// FlatIndex is an exact nearest-neighbour index: a vector slice plus a
// parallel chunk slice. The two are only ever mutated together under the
// write lock, so vector count == chunk count holds at all times.
type FlatIndex struct {
	mu       sync.RWMutex
	vectors  [][]float32
	chunks   []Chunk
	dim      int
	basePath string
	embedder Embedder
}

func NewFlatIndex(basePath string, embedder Embedder) (*FlatIndex, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	return &FlatIndex{
		basePath: basePath,
		embedder: embedder,
	}, nil
}

// Build initializes the index from a first batch of vector/chunk pairs.
func (x *FlatIndex) Build(vectors [][]float32, chunks []Chunk) error {
	if len(vectors) == 0 {
		return ErrIndexEmpty
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.dim = len(vectors[0])
	x.vectors = nil
	x.chunks = nil
	return x.appendLocked(vectors, chunks)
}

// Add embeds the given chunks and appends them to the index.
func (x *FlatIndex) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dim == 0 {
		x.dim = len(vectors[0])
	}
	return x.appendLocked(vectors, chunks)
}

func (x *FlatIndex) appendLocked(vectors [][]float32, chunks []Chunk) error {
	for _, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("dimension mismatch: expected %d, got %d", x.dim, len(v))
		}
	}
	x.vectors = append(x.vectors, vectors...)
	x.chunks = append(x.chunks, chunks...)
	return nil
}

// Search embeds the query and returns the k nearest chunks. An empty
// index yields an empty result, not an error.
func (x *FlatIndex) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	x.mu.RLock()
	empty := len(x.chunks) == 0
	x.mu.RUnlock()
	if empty {
		return nil, nil
	}

	vecs, err := x.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}

	return x.SearchVector(vecs[0], k)
}

// SearchVector returns the k nearest chunks by ascending squared L2
// distance. k is clamped to the number of stored chunks; ties keep
// insertion order.
func (x *FlatIndex) SearchVector(query []float32, k int) ([]SearchResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.chunks) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("dimension mismatch: expected %d, got %d", x.dim, len(query))
	}
	if k > len(x.chunks) {
		k = len(x.chunks)
	}
	if k <= 0 {
		return nil, nil
	}

	type candidate struct {
		pos  int
		dist float64
	}

	candidates := make([]candidate, len(x.vectors))
	for i, v := range x.vectors {
		candidates[i] = candidate{pos: i, dist: squaredL2(query, v)}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})

	results := make([]SearchResult, 0, k)
	for _, c := range candidates[:k] {
		results = append(results, SearchResult{
			Chunk: x.chunks[c.pos],
			Score: 1 / (1 + c.dist),
		})
	}
	return results, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

type indexMetadata struct {
	Documents []Chunk `json:"documents"`
	Dimension int     `json:"dimension"`
}

type vectorArtifact struct {
	Dimension int
	Vectors   [][]float32
}

// Save writes the vector artifact and the chunk metadata artifact as two
// companion files under the base path.
func (x *FlatIndex) Save() error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 {
		return ErrIndexEmpty
	}

	vecFile, err := os.Create(filepath.Join(x.basePath, IndexFilename))
	if err != nil {
		return fmt.Errorf("create vector artifact: %w", err)
	}
	defer vecFile.Close()

	if err := gob.NewEncoder(vecFile).Encode(vectorArtifact{
		Dimension: x.dim,
		Vectors:   x.vectors,
	}); err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}

	meta, err := json.MarshalIndent(indexMetadata{
		Documents: x.chunks,
		Dimension: x.dim,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	if err := os.WriteFile(filepath.Join(x.basePath, MetadataFilename), meta, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	return nil
}

// Load restores both artifacts. A vector artifact without its metadata
// companion, or a count mismatch between the two, is ErrIndexCorrupt.
func (x *FlatIndex) Load() error {
	vecPath := filepath.Join(x.basePath, IndexFilename)
	metaPath := filepath.Join(x.basePath, MetadataFilename)

	vecFile, err := os.Open(vecPath)
	if os.IsNotExist(err) {
		return ErrIndexMissing
	}
	if err != nil {
		return fmt.Errorf("open vector artifact: %w", err)
	}
	defer vecFile.Close()

	var art vectorArtifact
	if err := gob.NewDecoder(vecFile).Decode(&art); err != nil {
		return fmt.Errorf("%w: decode vectors: %v", ErrIndexCorrupt, err)
	}

	metaData, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: vector artifact present but %s missing", ErrIndexCorrupt, MetadataFilename)
	}
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}

	var meta indexMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return fmt.Errorf("%w: parse metadata: %v", ErrIndexCorrupt, err)
	}

	if len(art.Vectors) != len(meta.Documents) {
		return fmt.Errorf("%w: %d vectors but %d documents", ErrIndexCorrupt, len(art.Vectors), len(meta.Documents))
	}
	if art.Dimension != meta.Dimension {
		return fmt.Errorf("%w: dimension %d vs %d", ErrIndexCorrupt, art.Dimension, meta.Dimension)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors = art.Vectors
	x.chunks = meta.Documents
	x.dim = art.Dimension
	return nil
}

// Rebuild discards the index, re-chunks and re-embeds every file with
// the given extension under dir, and persists the result. The new state
// becomes visible all at once; a failed rebuild leaves the old index
// intact.
func (x *FlatIndex) Rebuild(ctx context.Context, dir, ext string, chunker *Chunker) error {
	docs, err := chunker.LoadDirectory(dir, ext)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no %s documents under %s", ext, dir)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(docs))
	}

	x.mu.Lock()
	x.vectors = vectors
	x.chunks = docs
	x.dim = len(vectors[0])
	x.mu.Unlock()

	if err := x.Save(); err != nil {
		return fmt.Errorf("persist rebuilt index: %w", err)
	}
	return nil
}

func (x *FlatIndex) Stats() IndexStats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return IndexStats{
		TotalDocuments: len(x.chunks),
		Dimension:      x.dim,
		IndexExists:    len(x.vectors) > 0,
		StorePath:      x.basePath,
	}
}
