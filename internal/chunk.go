package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadChunking = errors.New("chunk overlap must be smaller than chunk size")

// Chunk is a bounded slice of a source document. Chunks are owned by the
// index and identified by their position in its document list.
type Chunk struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	ChunkID     int    `json:"chunk_id"`
	TotalChunks int    `json:"total_chunks"`
}

type Chunker struct {
	Size    int
	Overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, ErrBadChunking
	}
	return &Chunker{Size: size, Overlap: overlap}, nil
}

// Split breaks text into overlapping word windows. Whitespace-only input
// yields no chunks.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + c.Size
		if end > len(words) {
			end = len(words)
		}

		chunk := strings.Join(words[start:end], " ")
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if start+c.Size >= len(words) {
			break
		}
		start += c.Size - c.Overlap
	}

	return chunks
}

// LoadDirectory walks dir recursively and chunks every file with the given
// extension. The chunk source is the file path relative to dir.
func (c *Chunker) LoadDirectory(dir, ext string) ([]Chunk, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat knowledge dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var docs []Chunk
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		content := string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		pieces := c.Split(content)
		for i, piece := range pieces {
			docs = append(docs, Chunk{
				Text:        piece,
				Source:      rel,
				ChunkID:     i,
				TotalChunks: len(pieces),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return docs, nil
}
