package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNormalizeSchemaForGemini(t *testing.T) {
	schema := map[string]any{
		"type":    "object",
		"$schema": "http://json-schema.org/draft-07/schema#",
		"properties": map[string]any{
			"path": map[string]any{"type": "string", "format": "uri", "minLength": 1.0},
			"n":    map[string]any{"type": "integer", "minimum": 0.0},
		},
	}

	normalized := normalizeSchemaForGemini(schema)

	assert.NotContains(t, normalized, "$schema")
	props := normalized["properties"].(map[string]any)
	assert.NotContains(t, props["path"], "format")
	assert.NotContains(t, props["path"], "minLength")
	assert.NotContains(t, props["n"], "minimum")

	required, ok := normalized["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"path", "n"}, required)

	// The input schema is left untouched.
	original := schema["properties"].(map[string]any)["path"].(map[string]any)
	assert.Contains(t, original, "format")
}

func TestSchemaToGenai(t *testing.T) {
	schema := map[string]any{
		"type":        "object",
		"description": "tool input",
		"required":    []any{"items"},
		"properties": map[string]any{
			"items": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
			"flag": map[string]any{"type": "boolean"},
		},
	}

	out := schemaToGenai(schema)
	require.NotNil(t, out)
	assert.Equal(t, genai.TypeObject, out.Type)
	assert.Equal(t, "tool input", out.Description)
	assert.Equal(t, []string{"items"}, out.Required)

	items := out.Properties["items"]
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeArray, items.Type)
	require.NotNil(t, items.Items)
	assert.Equal(t, genai.TypeInteger, items.Items.Type)
	assert.Equal(t, genai.TypeBoolean, out.Properties["flag"].Type)
}

func TestSchemaToGenaiNil(t *testing.T) {
	out := schemaToGenai(nil)
	require.NotNil(t, out)
	assert.Equal(t, genai.TypeObject, out.Type)
}
