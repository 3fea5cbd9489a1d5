package extractor

import (
	"context"
	"fmt"
	"log"

	"winelist/internal/domain"
	"winelist/internal/port"
	"winelist/internal/textnorm"
)

// Pipeline runs chunked structured extraction over numbered OCR lines.
//
// Extraction is an optional enhancement: Extract never returns an error.
// Any provider, decoding or schema failure is logged and yields an empty
// list so the caller can fall back to the rule parser.
type Pipeline struct {
	extractor port.WineExtractor
	maxChars  int
	overlap   int
}

// NewPipeline creates a Pipeline. A nil extractor disables extraction.
func NewPipeline(extractor port.WineExtractor, maxChars, overlap int) *Pipeline {
	return &Pipeline{extractor: extractor, maxChars: maxChars, overlap: overlap}
}

// Enabled reports whether an extraction provider is configured.
func (p *Pipeline) Enabled() bool {
	return p != nil && p.extractor != nil
}

// Extract returns the merged items, or nil on any failure.
func (p *Pipeline) Extract(ctx context.Context, lines []textnorm.Line) (items []domain.WineItem) {
	if !p.Enabled() || len(lines) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("extractor.Pipeline: recovered from panic: %v", r)
			items = nil
		}
	}()

	items, err := p.extract(ctx, lines)
	if err != nil {
		log.Printf("extractor.Pipeline: extraction failed, using rule parser output: %v", err)
		return nil
	}
	return items
}

func (p *Pipeline) extract(ctx context.Context, lines []textnorm.Line) ([]domain.WineItem, error) {
	chunks := textnorm.Split(lines, p.maxChars, p.overlap)
	batches := make([][]Wine, 0, len(chunks))
	for i, c := range chunks {
		out, err := p.extractor.ExtractChunk(ctx, port.ChunkInput{
			Text:  c.Text(),
			Index: i,
			Total: len(chunks),
		})
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		wines, err := Decode(out.StructuredData)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d (%s): %w", i+1, len(chunks), out.ModelUsed, err)
		}
		log.Printf("extractor.Pipeline: chunk %d/%d lines %d-%d -> %d items (%s)",
			i+1, len(chunks), c.Start+1, c.End, len(wines), out.ModelUsed)
		batches = append(batches, wines)
	}

	merged := Merge(batches, lines)
	items := make([]domain.WineItem, len(merged))
	for i := range merged {
		items[i] = ToWineItem(&merged[i])
	}
	return items, nil
}
