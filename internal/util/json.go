// Package util contains small internal helpers shared across packages. The
// JSON helpers implement lenient recovery of structured payloads from model
// output: models frequently wrap JSON in markdown fences or surround it with
// prose, and the orchestrator treats such payloads as expected input rather
// than failures.
package util

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError is the typed failure returned when a model payload cannot be
// decoded into the expected shape. Callers branch on it to take their
// degraded path instead of propagating a fatal error.
type DecodeError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *DecodeError) Unwrap() error { return e.Cause }

// StripCodeFences removes a leading/trailing markdown code fence (``` or
// ```json) around the payload, if present.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the outermost {...} span of s, or s unchanged
// when no braces are found. Models often surround the object with prose.
func ExtractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// DecodeJSON leniently decodes a model payload into v: fences are stripped
// and the outermost JSON object extracted before unmarshalling. A nil return
// means v holds the decoded value; otherwise the error is a *DecodeError.
func DecodeJSON(raw string, v any) error {
	payload := ExtractJSONObject(StripCodeFences(raw))
	if strings.TrimSpace(payload) == "" {
		return &DecodeError{Reason: "empty response"}
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &DecodeError{Reason: "response is not valid JSON", Cause: err}
	}
	return nil
}
