package query

import "errors"

// RetrievedChunk is one scored passage pulled back from the vector index.
type RetrievedChunk struct {
	Content     string
	SourceURL   string
	ChunkIndex  int
	TotalChunks int
	Distance    float32
}

// Answer is the response of the two-stage retrieve-then-generate pipeline.
type Answer struct {
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	NumSources int      `json:"numSources"`
}

var ErrNoResults = errors.New("no indexed content matched the query")
