package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepresearch-ai/deepresearch/model"
)

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages(model.Request{
		Instructions: "you are a researcher",
		Messages: []model.Message{
			model.UserMessage("find the history of Go"),
			model.AssistantMessage("", model.ToolCall{ID: "call_1", Name: "search_web", Arguments: `{"query": "go history"}`}),
			model.ToolMessage(model.ToolResult{ID: "call_1", Content: "Go appeared in 2009"}),
		},
	})

	require.Len(t, msgs, 4)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[2].OfAssistant.ToolCalls[0].ID)
	assert.NotNil(t, msgs[3].OfTool)
}

func TestBuildMessagesNoInstructions(t *testing.T) {
	msgs := buildMessages(model.Request{
		Messages: []model.Message{model.UserMessage("hello")},
	})
	require.Len(t, msgs, 1)
	assert.NotNil(t, msgs[0].OfUser)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{
		Name:        "search_web",
		Description: "search the web",
		Parameters:  map[string]any{"type": "object"},
	}})

	require.Len(t, tools, 1)
	assert.Equal(t, "search_web", tools[0].Function.Name)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })

	info := m.Info()
	assert.Equal(t, "openai", info.Provider)
	assert.True(t, info.SupportsTools)
	assert.NotEmpty(t, info.Name)
}
