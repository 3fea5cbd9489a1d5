package port

import (
	"context"
	"encoding/json"
)

// ChunkInput carries one numbered-line chunk to a structured extraction model.
type ChunkInput struct {
	Text  string
	Index int
	Total int
}

// ChunkOutput contains the raw structured JSON returned by the model.
type ChunkOutput struct {
	StructuredData json.RawMessage
	ModelUsed      string
}

// WineExtractor abstracts LLM-based wine-list extraction over one chunk.
type WineExtractor interface {
	ExtractChunk(ctx context.Context, input ChunkInput) (*ChunkOutput, error)
}
