package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"winelist/internal/port"
)

// provider is one entry of the fallback chain with its rate-limit cooldown.
type provider struct {
	name string
	ex   port.WineExtractor

	mu            sync.Mutex
	cooldownUntil time.Time
}

func (p *provider) coolingDown(now time.Time) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cooldownUntil, now.Before(p.cooldownUntil)
}

func (p *provider) coolDown(until time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if until.After(p.cooldownUntil) {
		p.cooldownUntil = until
	}
}

// FallbackExtractor sends each chunk to the first provider that is not
// cooling down after a rate limit, moving on to the next one on failure.
// It implements port.WineExtractor.
type FallbackExtractor struct {
	providers []*provider
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// providers and their names.
func NewFallbackExtractor(extractors []port.WineExtractor, names []string) *FallbackExtractor {
	providers := make([]*provider, len(extractors))
	for i, ex := range extractors {
		name := fmt.Sprintf("provider-%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		providers[i] = &provider{name: name, ex: ex}
	}
	return &FallbackExtractor{providers: providers}
}

func (f *FallbackExtractor) ExtractChunk(ctx context.Context, input port.ChunkInput) (*port.ChunkOutput, error) {
	chunk := chunkLabel(input)
	now := time.Now()

	var (
		lastErr       error
		onlyLimited   = true
		earliestRetry time.Time
	)
	noteRetry := func(t time.Time) {
		if earliestRetry.IsZero() || t.Before(earliestRetry) {
			earliestRetry = t
		}
	}

	for _, p := range f.providers {
		if until, cooling := p.coolingDown(now); cooling {
			log.Printf("extractor.FallbackExtractor: %s: skipping %s, rate limited until %s",
				chunk, p.name, until.Format(time.RFC3339))
			noteRetry(until)
			continue
		}

		out, err := p.ex.ExtractChunk(ctx, input)
		if err == nil {
			if out != nil && out.ModelUsed == "" {
				out.ModelUsed = p.name
			}
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", chunk, ctx.Err())
		}

		log.Printf("extractor.FallbackExtractor: %s: %s failed: %v", chunk, p.name, err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			until := now.Add(rlErr.RetryAfter)
			p.coolDown(until)
			noteRetry(until)
		} else {
			onlyLimited = false
		}
	}

	if lastErr == nil || onlyLimited {
		retryAfter := time.Until(earliestRetry)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("%s: every extraction provider is rate limited", chunk), int(retryAfter.Seconds()))
	}
	return nil, fmt.Errorf("%s: all extraction providers failed: %w", chunk, lastErr)
}

func chunkLabel(input port.ChunkInput) string {
	if input.Total <= 0 {
		return "chunk"
	}
	return fmt.Sprintf("chunk %d/%d", input.Index+1, input.Total)
}
