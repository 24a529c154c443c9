package text

import (
	"fmt"
	"strings"
)

// Chunker splits extracted prose into overlapping word windows. Each window
// holds up to Size words; successive windows start Size-Overlap words apart,
// so the trailing Overlap words of one window reappear at the head of the
// next. Output is deterministic for a given input and configuration.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	// stride = size - overlap must stay positive or the window never advances
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk returns the ordered window contents. Empty or whitespace-only input
// yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.size - c.overlap
	var chunks []string
	for i := 0; i < len(words); i += stride {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
