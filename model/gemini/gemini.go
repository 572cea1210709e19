// Package gemini provides a model wrapper for the Google Gemini
// generateContent API. Google ships no Go SDK dependency here; the adapter
// speaks the v1beta REST protocol directly over net/http.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deepresearch-ai/deepresearch/model"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Options configures the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
	HTTPClient  *http.Client
}

// Model wraps the Gemini generateContent endpoint behind the generic
// model.Model interface.
type Model struct {
	client  *http.Client
	baseURL string
	opts    Options
}

// NewModel creates a new Gemini model speaking the REST API directly.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.3,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Model{client: client, baseURL: strings.TrimRight(baseURL, "/"), opts: opts}
}

// Wire shapes for the v1beta generateContent protocol.
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations,omitempty"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int64   `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// Generate implements model.Model over the generateContent endpoint.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	body := geminiRequest{
		Contents: buildContents(req.Messages),
		Tools:    buildTools(req.Tools),
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     m.opts.Temperature,
			MaxOutputTokens: m.opts.MaxTokens,
		},
	}
	if req.Temperature > 0 {
		body.GenerationConfig.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		body.GenerationConfig.MaxOutputTokens = req.MaxTokens
	}
	if req.Instructions != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.Instructions}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini request encode: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", m.baseURL, m.opts.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini request build: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", m.opts.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("gemini api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("gemini response decode: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return nil, fmt.Errorf("gemini api error: no candidates returned")
	}

	cand := decoded.Candidates[0]
	out := &model.Response{FinishReason: strings.ToLower(cand.FinishReason)}
	if out.FinishReason == "" {
		out.FinishReason = "stop"
	}
	for i, part := range cand.Content.Parts {
		if part.Text != "" {
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				// Gemini function calls carry no ids; synthesize stable ones
				// so the tool loop can pair results.
				ID:        fmt.Sprintf("%s-%d", part.FunctionCall.Name, i),
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}
	if decoded.UsageMetadata != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     decoded.UsageMetadata.PromptTokenCount,
			CompletionTokens: decoded.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      decoded.UsageMetadata.TotalTokenCount,
		}
	}

	return out, nil
}

// buildContents converts normalized messages into Gemini contents. Gemini
// names the assistant role "model" and pairs function responses by name
// rather than by call id.
func buildContents(messages []model.Message) []geminiContent {
	var contents []geminiContent
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			content := geminiContent{Role: "model"}
			if msg.Text != "" {
				content.Parts = append(content.Parts, geminiPart{Text: msg.Text})
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					args = map[string]any{"input": tc.Arguments}
				}
				content.Parts = append(content.Parts, geminiPart{
					FunctionCall: &geminiFunctionCall{Name: tc.Name, Args: args},
				})
			}
			if len(content.Parts) > 0 {
				contents = append(contents, content)
			}
		case "tool":
			content := geminiContent{Role: "user"}
			for _, tr := range msg.ToolResults {
				name := tr.ID
				if idx := strings.LastIndex(name, "-"); idx > 0 {
					name = name[:idx]
				}
				var response map[string]any
				if err := json.Unmarshal([]byte(tr.Content), &response); err != nil {
					response = map[string]any{"result": tr.Content}
				}
				content.Parts = append(content.Parts, geminiPart{
					FunctionResponse: &geminiFunctionResponse{Name: name, Response: response},
				})
			}
			if len(content.Parts) > 0 {
				contents = append(contents, content)
			}
		default:
			if msg.Text != "" {
				contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Text}}})
			}
		}
	}
	return contents
}

// buildTools converts normalized tool definitions to Gemini declarations.
func buildTools(tools []model.ToolDefinition) []geminiTool {
	if len(tools) == 0 {
		return nil
	}
	declarations := make([]geminiFunctionDeclaration, len(tools))
	for i, t := range tools {
		declarations[i] = geminiFunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		}
	}
	return []geminiTool{{FunctionDeclarations: declarations}}
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "gemini",
		SupportsTools: true,
	}
}
