package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"winelist/internal/config"
	"winelist/internal/extractor"
	"winelist/internal/port"
)

const (
	defaultModel = "claude-sonnet-4-5"
	maxTokens    = 8192
)

func init() {
	extractor.RegisterProvider("claude", func(cfg *config.LLMProviderConfig) (port.WineExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.WineExtractor using the Messages API. The schema
// travels in the system prompt and the output is validated locally.
type Extractor struct {
	client anthropic.Client
	model  string
}

// NewExtractor creates a Claude-backed extractor.
func NewExtractor(cfg *config.LLMProviderConfig) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Extractor{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (e *Extractor) ExtractChunk(ctx context.Context, input port.ChunkInput) (*port.ChunkOutput, error) {
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(e.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: extractor.BuildSchemaPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(extractor.BuildUserPrompt(input))),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			baseErr := fmt.Errorf("anthropic API error (status %d): %w", apiErr.StatusCode, err)
			if apiErr.StatusCode == http.StatusTooManyRequests {
				retryAfter := 0
				if apiErr.Response != nil {
					retryAfter = extractor.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
				}
				return nil, extractor.NewRateLimitError("claude", baseErr, retryAfter)
			}
			return nil, baseErr
		}
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}

	if msg.StopReason == anthropic.StopReasonMaxTokens {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens)")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from API: no text content")
	}

	return &port.ChunkOutput{
		StructuredData: json.RawMessage(text.String()),
		ModelUsed:      e.model,
	}, nil
}
