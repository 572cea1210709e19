package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSONObject(`Here is the plan: {"a":1} hope it helps`))
	assert.Equal(t, "no braces here", ExtractJSONObject("no braces here"))
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Strategy string `json:"strategy"`
	}
	err := DecodeJSON("```json\n{\"strategy\": \"broad first\"}\n```", &out)
	assert.NoError(t, err)
	assert.Equal(t, "broad first", out.Strategy)
}

func TestDecodeJSONInvalid(t *testing.T) {
	var out map[string]any

	err := DecodeJSON("I could not produce a plan, sorry.", &out)
	assert.Error(t, err)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestDecodeJSONEmpty(t *testing.T) {
	var out map[string]any
	err := DecodeJSON("", &out)
	assert.Error(t, err)
}
