package llm

import (
	"encoding/json"
	"strings"
)

// Role identifies a message role in conversation history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType identifies a message content part.
type PartType string

const (
	PartText       PartType = "text"
	PartReasoning  PartType = "reasoning"
	PartToolCall   PartType = "tool_call"
	PartToolResult PartType = "tool_result"
)

// Message holds a role with structured parts. History is append-only;
// assistant messages produced by a tool round carry the raw response
// blocks so follow-up requests replay them verbatim.
type Message struct {
	Role  Role
	Parts []Part
}

// Part represents a single content part.
type Part struct {
	Type PartType
	Text string
	// Signature is backend-opaque proof attached to reasoning parts;
	// some backends demand it when reasoning output is replayed.
	Signature  string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

// ToolSpec describes a callable tool supplied by the caller.
// Name must be unique within a call; the spec is immutable for the call.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ToolCall is a model-requested tool invocation in canonical form.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// InputJSON returns the call input as raw JSON for wire encoding.
func (c *ToolCall) InputJSON() json.RawMessage {
	if len(c.Input) == 0 {
		return json.RawMessage("{}")
	}
	data, err := json.Marshal(c.Input)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// ToolResult is the outcome of a tool call, fed back to the backend.
type ToolResult struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

// EventType describes canonical streaming events. Every backend response,
// streamed or not, is normalized to this event vocabulary.
type EventType string

const (
	EventReasoningDelta EventType = "reasoning_delta"
	EventTextDelta      EventType = "text_delta"
	EventToolCallStart  EventType = "tool_call_start"
	EventToolCallDelta  EventType = "tool_call_delta"
	EventToolCall       EventType = "tool_call"
	EventUsage          EventType = "usage"
	EventStop           EventType = "stop"
)

// StopReason explains why a backend response ended.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
)

// Event represents one normalized output update.
type Event struct {
	Type EventType
	Text string
	// Signature carries opaque reasoning proof on EventReasoningDelta.
	Signature string
	Tool      *ToolCall
	// For EventToolCallStart/Delta: identity of the call being assembled.
	ToolCallID string
	ToolName   string
	Use        *Usage
	Stop       StopReason
}

// Usage captures token accounting if the backend reports it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u *Usage) add(other *Usage) {
	if other == nil {
		return
	}
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

func UserText(text string) Message {
	return Message{
		Role:  RoleUser,
		Parts: []Part{{Type: PartText, Text: text}},
	}
}

func AssistantText(text string) Message {
	return Message{
		Role:  RoleAssistant,
		Parts: []Part{{Type: PartText, Text: text}},
	}
}

// ToolErrorMessage creates a user-role message carrying an error tool
// result. The error text goes back to the backend so it can correct
// itself instead of failing the call.
func ToolErrorMessage(id, name, errorText string) Message {
	return Message{
		Role: RoleUser,
		Parts: []Part{{
			Type: PartToolResult,
			ToolResult: &ToolResult{
				ID:      id,
				Name:    name,
				Content: errorText,
				IsError: true,
			},
		}},
	}
}

func collectTextParts(parts []Part) string {
	var b strings.Builder
	for _, part := range parts {
		if part.Type == PartText {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
