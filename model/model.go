package model

import (
	"context"
	"fmt"
	"sync"
)

// ToolCall represents a function call request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider
// branching.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string of arguments
}

// ToolResult carries the outcome of an executed tool call back to the model.
type ToolResult struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Message is one conversation turn in a Request. Exactly one of Text,
// ToolCalls or ToolResults is expected to be populated depending on Role.
type Message struct {
	Role        string       `json:"role"` // "user", "assistant" or "tool"
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// UserMessage builds a plain user turn.
func UserMessage(text string) Message {
	return Message{Role: "user", Text: text}
}

// AssistantMessage builds an assistant turn echoing prior model output,
// including any tool calls it issued.
func AssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: "assistant", Text: text, ToolCalls: calls}
}

// ToolMessage builds a turn carrying tool execution results.
func ToolMessage(results ...ToolResult) Message {
	return Message{Role: "tool", ToolResults: results}
}

// Request captures the normalized model input produced by the orchestration
// components. Instructions become the provider's system prompt.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []Message        `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Temperature  float64          `json:"temperature,omitempty"` // 0 = adapter default
	MaxTokens    int64            `json:"max_tokens,omitempty"`  // 0 = adapter default
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a completed generation. Non-JSON or schema-mismatched Text is
// an expected condition handled by callers, not by adapters.
type Response struct {
	Text         string      `json:"text"`
	ToolCalls    []ToolCall  `json:"tool_calls,omitempty"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "gemini", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the orchestration layers use to drive
// generation. Each logical step performs exactly one Generate call; there
// are no retries in the core, resilience comes from the callers' degraded
// paths.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It replays scripted responses in FIFO order and records every request it
// receives. Safe for concurrent use.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses []mockReply
	requests  []Request
}

type mockReply struct {
	resp Response
	err  error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel() *MockModel {
	return &MockModel{
		info: Info{Name: "mock", Provider: "mock", SupportsTools: true},
	}
}

// EnqueueText queues a plain text completion.
func (m *MockModel) EnqueueText(text string) {
	m.Enqueue(Response{Text: text, FinishReason: "stop"})
}

// Enqueue queues a full response.
func (m *MockModel) Enqueue(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockReply{resp: resp})
}

// EnqueueError queues a generation failure.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockReply{err: err})
}

// Requests returns a copy of all requests seen so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model by replaying the next scripted reply. An empty
// script yields a deterministic placeholder response.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.responses) == 0 {
		return &Response{Text: fmt.Sprintf("mock response %d", len(m.requests)), FinishReason: "stop"}, nil
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	resp := next.resp
	return &resp, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
