package llm

// ReasoningOptions control extended-thinking output. Nested so a caller
// can override a single knob without erasing sibling defaults.
type ReasoningOptions struct {
	Enabled *bool
	// BudgetTokens is the requested thinking budget; the effective
	// value is clamped per backend before the request is built.
	BudgetTokens *int
}

// Options configure a single Ask call. Zero-valued fields fall back to
// session defaults, then to backend defaults.
type Options struct {
	Model           string
	Temperature     *float64
	MaxOutputTokens int
	Reasoning       *ReasoningOptions
	Stream          *bool
	Tools           []ToolSpec
}

// sticky holds per-session settings that persist across calls until
// explicitly replaced.
type sticky struct {
	system    string
	cacheable bool
}

// effectiveConfig is the fully resolved, per-call configuration. It is
// ephemeral: built for one request sequence and discarded.
type effectiveConfig struct {
	Model            string
	Temperature      *float64
	MaxOutputTokens  int
	ReasoningEnabled bool
	ReasoningBudget  int
	Stream           bool
	Tools            []ToolSpec
	System           string
	Cacheable        bool
}

// mergeOptions resolves defaults, session-sticky settings and per-call
// overrides field by field, per-call winning. Reasoning settings merge
// knob-by-knob rather than wholesale.
func mergeOptions(defaults Options, st sticky, call Options) effectiveConfig {
	cfg := effectiveConfig{
		Model:           defaults.Model,
		Temperature:     defaults.Temperature,
		MaxOutputTokens: defaults.MaxOutputTokens,
		Stream:          true,
		System:          st.system,
		Cacheable:       st.cacheable,
	}

	if call.Model != "" {
		cfg.Model = call.Model
	}
	if call.Temperature != nil {
		cfg.Temperature = call.Temperature
	}
	if call.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = call.MaxOutputTokens
	}
	if defaults.Stream != nil {
		cfg.Stream = *defaults.Stream
	}
	if call.Stream != nil {
		cfg.Stream = *call.Stream
	}

	reasoning := mergeReasoning(defaults.Reasoning, call.Reasoning)
	if reasoning.Enabled != nil {
		cfg.ReasoningEnabled = *reasoning.Enabled
	}
	if reasoning.BudgetTokens != nil {
		cfg.ReasoningBudget = *reasoning.BudgetTokens
		if reasoning.Enabled == nil && cfg.ReasoningBudget > 0 {
			cfg.ReasoningEnabled = true
		}
	}

	cfg.Tools = call.Tools
	if len(cfg.Tools) == 0 {
		cfg.Tools = defaults.Tools
	}
	return cfg
}

func mergeReasoning(base, override *ReasoningOptions) ReasoningOptions {
	var merged ReasoningOptions
	if base != nil {
		merged.Enabled = base.Enabled
		merged.BudgetTokens = base.BudgetTokens
	}
	if override != nil {
		if override.Enabled != nil {
			merged.Enabled = override.Enabled
		}
		if override.BudgetTokens != nil {
			merged.BudgetTokens = override.BudgetTokens
		}
	}
	return merged
}
