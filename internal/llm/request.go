package llm

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// buildRequest turns resolved configuration plus conversation history
// into the backend-shaped request descriptor.
func buildRequest(caps Capabilities, cfg effectiveConfig, history []Message) Request {
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = caps.DefaultMaxTokens
	}

	budget := 0
	if cfg.ReasoningEnabled && caps.SupportsReasoning {
		budget = effectiveReasoningBudget(caps, cfg.ReasoningBudget, maxTokens)
	}

	req := Request{
		Model:           cfg.Model,
		System:          cfg.System,
		Messages:        history,
		Tools:           cfg.Tools,
		MaxOutputTokens: maxTokens,
		ReasoningBudget: budget,
		Stream:          cfg.Stream,
		Cacheable:       cfg.Cacheable,
		NativeEditor:    caps.SupportsNativeEditor && usesEditorEmulation(cfg.Tools),
	}

	// Backends reject temperature alongside extended reasoning, so it
	// is omitted rather than clamped.
	if cfg.Temperature != nil && budget == 0 {
		req.Temperature = *cfg.Temperature
		req.HasTemperature = true
	}
	return req
}

// effectiveReasoningBudget clamps a requested thinking budget into the
// backend's usable range. Returns 0 (reasoning disabled) when the total
// output budget cannot support a useful amount of reasoning.
func effectiveReasoningBudget(caps Capabilities, requested, maxOutputTokens int) int {
	ceiling := maxOutputTokens - caps.ReservedAnswerTokens
	if ceiling < caps.ReasoningFloor {
		return 0
	}
	if requested <= 0 {
		requested = caps.ReasoningFloor
	}
	if requested > ceiling {
		requested = ceiling
	}
	if requested < caps.ReasoningFloor {
		requested = caps.ReasoningFloor
	}
	return requested
}

// validateTools checks caller-supplied tool definitions: unique names
// and compilable input schemas. A failure here is caller misuse and
// degrades the call to plain-text mode rather than failing it.
func validateTools(tools []ToolSpec) error {
	seen := make(map[string]struct{}, len(tools))
	for _, tool := range tools {
		if tool.Name == "" {
			return fmt.Errorf("tool with empty name")
		}
		if _, ok := seen[tool.Name]; ok {
			return fmt.Errorf("duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = struct{}{}
		if tool.Schema == nil {
			continue
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.Schema)); err != nil {
			return fmt.Errorf("tool %q schema: %w", tool.Name, err)
		}
	}
	return nil
}
