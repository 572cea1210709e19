// Package tool implements the function calling subsystem that lets research
// workers invoke structured capabilities (web search) with schema described
// arguments and consistent error handling. Tool failures are surfaced back to
// the model as result text and end up as finding-level gaps; they never abort
// a task batch.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the interface for extending worker capabilities with external
// functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be safe for concurrent use: one batch runs many workers at once
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the model to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with arguments parsed from the model's JSON.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message string) *ToolError {
	return &ToolError{Tool: tool, Message: message}
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

// intArg extracts an optional integer argument with a default. JSON numbers
// arrive as float64.
func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}
