package llm

import "context"

// Provider streams normalized model output events for a request.
type Provider interface {
	Name() string
	Capabilities() Capabilities
	Stream(ctx context.Context, req Request) (Stream, error)
}

// InstructionRole names the wire-level placement a backend family uses
// for the pinned system instruction.
type InstructionRole string

const (
	// InstructionSystemParam: out-of-band system field (Anthropic).
	InstructionSystemParam InstructionRole = "system_param"
	// InstructionSystemMessage: leading system-role message (OpenAI family).
	InstructionSystemMessage InstructionRole = "system_message"
	// InstructionSystemConfig: systemInstruction config entry (Gemini).
	InstructionSystemConfig InstructionRole = "system_config"
)

// Capabilities describe a backend, fixed at construction. Request
// building branches on these fields rather than on model-name patterns.
type Capabilities struct {
	SupportsReasoning    bool
	SupportsNativeEditor bool
	InstructionRole      InstructionRole

	// Reasoning budget constants. A requested budget is clamped into
	// [ReasoningFloor, maxOutputTokens-ReservedAnswerTokens]; when the
	// ceiling falls below the floor, reasoning is disabled outright.
	ReasoningFloor       int
	ReservedAnswerTokens int

	DefaultMaxTokens int
}

// Request is the backend-shaped descriptor for a single model call.
// Messages hold conversational turns only; the pinned instruction
// travels separately so each adapter can place it per its wire format.
type Request struct {
	Model           string
	System          string
	Messages        []Message
	Tools           []ToolSpec
	MaxOutputTokens int
	// ReasoningBudget is the already-derived thinking token budget.
	// Zero means reasoning is off for this call.
	ReasoningBudget int
	// Temperature is applied only when HasTemperature is set; it is
	// never set while ReasoningBudget > 0.
	Temperature    float64
	HasTemperature bool
	Stream         bool
	Cacheable      bool
	// NativeEditor asks the adapter to substitute its bundled editor
	// tool for the caller's tool list. Only honored when the backend
	// supports one.
	NativeEditor bool
}
