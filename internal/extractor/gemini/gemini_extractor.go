package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"winelist/internal/config"
	"winelist/internal/extractor"
	"winelist/internal/port"
)

const defaultModel = "gemini-2.0-flash"

func init() {
	extractor.RegisterProvider("gemini", func(cfg *config.LLMProviderConfig) (port.WineExtractor, error) {
		return NewExtractor(context.Background(), cfg)
	})
}

// Extractor implements port.WineExtractor using GenerateContent with a JSON
// response schema.
type Extractor struct {
	client *genai.Client
	model  string
	schema *genai.Schema
}

// NewExtractor creates a Gemini-backed extractor.
func NewExtractor(ctx context.Context, cfg *config.LLMProviderConfig) (*Extractor, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
			Timeout: &timeout,
		},
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Extractor{
		client: client,
		model:  model,
		schema: toGeminiSchema(extractor.ItemSchema(false)),
	}, nil
}

func (e *Extractor) ExtractChunk(ctx context.Context, input port.ChunkInput) (*port.ChunkOutput, error) {
	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(extractor.BuildUserPrompt(input)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(extractor.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    e.schema,
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			baseErr := fmt.Errorf("gemini API error (status %d): %s", apiErr.Code, apiErr.Message)
			if apiErr.Code == http.StatusTooManyRequests {
				return nil, extractor.NewRateLimitError("gemini", baseErr, 0)
			}
			return nil, baseErr
		}
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return nil, fmt.Errorf("output truncated (finishReason: MAX_TOKENS)")
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from API: no text candidates")
	}

	return &port.ChunkOutput{
		StructuredData: json.RawMessage(text),
		ModelUsed:      e.model,
	}, nil
}

// toGeminiSchema converts the generic schema map. A ["T", "null"] type
// becomes a nullable T.
func toGeminiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	schema := &genai.Schema{}

	switch t := m["type"].(type) {
	case string:
		schema.Type = geminiType(t)
	case []string:
		for _, v := range t {
			if v == "null" {
				schema.Nullable = genai.Ptr(true)
				continue
			}
			schema.Type = geminiType(v)
		}
	}

	if props, ok := m["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for key, val := range props {
			if propMap, ok := val.(map[string]any); ok {
				schema.Properties[key] = toGeminiSchema(propMap)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		schema.Items = toGeminiSchema(items)
	}
	if required, ok := m["required"].([]string); ok {
		schema.Required = append(schema.Required, required...)
	}
	return schema
}

func geminiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
