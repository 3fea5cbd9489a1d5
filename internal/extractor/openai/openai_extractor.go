package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"winelist/internal/config"
	"winelist/internal/extractor"
	"winelist/internal/port"
)

const defaultModel = "gpt-4o-mini"

func init() {
	extractor.RegisterProvider("openai", func(cfg *config.LLMProviderConfig) (port.WineExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.WineExtractor using Chat Completions with a
// strict JSON schema response format.
type Extractor struct {
	client openai.Client
	model  string
}

// NewExtractor creates an OpenAI-backed extractor. cfg.BaseURL overrides the
// API endpoint (used by tests and compatible gateways).
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
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (e *Extractor) ExtractChunk(ctx context.Context, input port.ChunkInput) (*port.ChunkOutput, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractor.SystemPrompt),
			openai.UserMessage(extractor.BuildUserPrompt(input)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   extractor.SchemaName,
					Schema: extractor.ItemSchema(true),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			baseErr := fmt.Errorf("openai API error (status %d): %w", apiErr.StatusCode, err)
			if apiErr.StatusCode == http.StatusTooManyRequests {
				retryAfter := 0
				if apiErr.Response != nil {
					retryAfter = extractor.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
				}
				return nil, extractor.NewRateLimitError("openai", baseErr, retryAfter)
			}
			return nil, baseErr
		}
		return nil, fmt.Errorf("calling openai API: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	choice := completion.Choices[0]
	if choice.FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length)")
	}
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", choice.Message.Refusal)
	}

	return &port.ChunkOutput{
		StructuredData: json.RawMessage(choice.Message.Content),
		ModelUsed:      e.model,
	}, nil
}
