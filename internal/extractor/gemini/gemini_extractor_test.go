package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelist/internal/config"
	"winelist/internal/extractor"
	"winelist/internal/extractor/gemini"
	"winelist/internal/port"
)

const itemsJSON = `{"items":[{"wine_name":"Barolo","bottle_price":65,"confidence":0.9,"source_lines":["L0001"]}]}`

func candidate(text, finish string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
	})
	return string(b)
}

func newServer(status int, body string, captured *map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestExtractChunk_Success(t *testing.T) {
	var req map[string]any
	srv := newServer(http.StatusOK, candidate(itemsJSON, "STOP"), &req)
	defer srv.Close()

	e, err := gemini.NewExtractor(context.Background(), &config.LLMProviderConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := e.ExtractChunk(context.Background(), port.ChunkInput{Text: "L0001: Barolo 65", Total: 1})
	require.NoError(t, err)
	assert.JSONEq(t, itemsJSON, string(out.StructuredData))
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)

	gc, ok := req["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", gc["responseMimeType"])
	assert.NotNil(t, gc["responseSchema"])
}

func TestExtractChunk_MaxTokens(t *testing.T) {
	srv := newServer(http.StatusOK, candidate(`{"items":[`, "MAX_TOKENS"), nil)
	defer srv.Close()

	e, err := gemini.NewExtractor(context.Background(), &config.LLMProviderConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = e.ExtractChunk(context.Background(), port.ChunkInput{Text: "x", Total: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestExtractChunk_RateLimited(t *testing.T) {
	srv := newServer(http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, nil)
	defer srv.Close()

	e, err := gemini.NewExtractor(context.Background(), &config.LLMProviderConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = e.ExtractChunk(context.Background(), port.ChunkInput{Text: "x", Total: 1})
	var rl *extractor.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "gemini", rl.Provider)
}

func TestRegistered(t *testing.T) {
	e, err := extractor.NewExtractor(&config.LLMProviderConfig{Provider: "gemini", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &gemini.Extractor{}, e)
}
