package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": validBase}}},
			}},
		})
	}))
	defer srv.Close()

	g, err := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	text, err := g.Generate(context.Background(), Request{System: "sys", User: "usr", Schema: PredictionSchema(false)})
	require.NoError(t, err)
	assert.Equal(t, validBase, text)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "k", gotKey)

	cfg := gotBody["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.NotNil(t, cfg["responseSchema"])
	assert.NotNil(t, gotBody["systemInstruction"])
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer srv.Close()

	g, err := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), Request{User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(GeminiConfig{})
	require.Error(t, err)
}

func TestOpenAIGenerate(t *testing.T) {
	var gotFormat map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotFormat, _ = body["response_format"].(map[string]any)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "x",
			"object":  "chat.completion",
			"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": validBase}}},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "test-model"})
	require.NoError(t, err)
	text, err := p.Generate(context.Background(), Request{System: "s", User: "u", Schema: PredictionSchema(false)})
	require.NoError(t, err)
	assert.Equal(t, validBase, text)
	require.NotNil(t, gotFormat)
	assert.Equal(t, "json_schema", gotFormat["type"])
}
