package llm

import "google.golang.org/genai"

// normalizeSchemaForGemini strips JSON Schema keywords the Gemini API
// rejects and fills in the required list it insists on.
func normalizeSchemaForGemini(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	return normalizeGeminiSchema(deepCopySchema(schema))
}

var geminiUnsupportedKeywords = []string{
	"$schema",
	"format",
	"exclusiveMinimum",
	"exclusiveMaximum",
	"minimum",
	"maximum",
	"minLength",
	"maxLength",
	"minItems",
	"maxItems",
	"uniqueItems",
	"pattern",
	"default",
	"examples",
	"const",
	"additionalProperties",
	"title",
}

func normalizeGeminiSchema(schema map[string]any) map[string]any {
	for _, keyword := range geminiUnsupportedKeywords {
		delete(schema, keyword)
	}

	if props, ok := schema["properties"].(map[string]any); ok && len(props) > 0 {
		for key, val := range props {
			if prop, ok := val.(map[string]any); ok {
				props[key] = normalizeGeminiSchema(prop)
			}
		}
		// Gemini wants every property listed as required.
		required := make([]string, 0, len(props))
		for key := range props {
			required = append(required, key)
		}
		schema["required"] = required
	}

	if items, ok := schema["items"].(map[string]any); ok {
		schema["items"] = normalizeGeminiSchema(items)
	}

	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		if arr, ok := schema[key].([]any); ok {
			for i, item := range arr {
				if sub, ok := item.(map[string]any); ok {
					arr[i] = normalizeGeminiSchema(sub)
				}
			}
		}
	}

	return schema
}

func deepCopySchema(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = deepCopySchema(val)
		case []any:
			out[k] = deepCopySchemaSlice(val)
		default:
			out[k] = v
		}
	}
	return out
}

func deepCopySchemaSlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		switch val := v.(type) {
		case map[string]any:
			out[i] = deepCopySchema(val)
		case []any:
			out[i] = deepCopySchemaSlice(val)
		default:
			out[i] = v
		}
	}
	return out
}

func schemaToGenai(schema map[string]any) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	out := &genai.Schema{
		Type:        schemaTypeFromValue(schema),
		Description: schemaString(schema, "description"),
		Required:    schemaRequired(schema),
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if sub, ok := prop.(map[string]any); ok {
				out.Properties[name] = schemaToGenai(sub)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = schemaToGenai(items)
	}

	return out
}

func schemaTypeFromValue(schema map[string]any) genai.Type {
	switch schemaString(schema, "type") {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeString
}

func schemaString(schema map[string]any, key string) string {
	if v, ok := schema[key].(string); ok {
		return v
	}
	return ""
}
