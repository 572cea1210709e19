package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepresearch-ai/deepresearch/model"
)

func TestGenerate(t *testing.T) {
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "hello"}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":     10,
				"candidatesTokenCount": 5,
				"totalTokenCount":      15,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test-key"
		o.BaseURL = server.URL
	})

	resp, err := m.Generate(context.Background(), model.Request{
		Instructions: "be brief",
		Messages:     []model.Message{model.UserMessage("hi")},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "be brief", captured.SystemInstruction.Parts[0].Text)
	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "user", captured.Contents[0].Role)
}

func TestGenerateToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{{
						"functionCall": map[string]any{
							"name": "search_web",
							"args": map[string]any{"query": "golang"},
						},
					}},
				},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	m := NewModel(func(o *Options) { o.BaseURL = server.URL })

	resp, err := m.Generate(context.Background(), model.Request{
		Messages: []model.Message{model.UserMessage("search for golang")},
		Tools: []model.ToolDefinition{{
			Name:        "search_web",
			Description: "search the web",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "search_web", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"golang"}`, resp.ToolCalls[0].Arguments)
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	m := NewModel(func(o *Options) { o.BaseURL = server.URL })
	_, err := m.Generate(context.Background(), model.Request{Messages: []model.Message{model.UserMessage("hi")}})
	assert.ErrorContains(t, err, "status 429")
}
