package llm

import "testing"

func TestToolCallInputJSON(t *testing.T) {
	call := &ToolCall{Input: map[string]any{"q": "x"}}
	if got := string(call.InputJSON()); got != `{"q":"x"}` {
		t.Errorf("got %s", got)
	}

	empty := &ToolCall{}
	if got := string(empty.InputJSON()); got != "{}" {
		t.Errorf("got %s", got)
	}
}

func TestCollectTextParts(t *testing.T) {
	msg := Message{Parts: []Part{
		{Type: PartReasoning, Text: "hmm"},
		{Type: PartText, Text: "Hello "},
		{Type: PartText, Text: "world"},
		{Type: PartToolCall, ToolCall: &ToolCall{Name: "x"}},
	}}
	if got := collectTextParts(msg.Parts); got != "Hello world" {
		t.Errorf("got %q", got)
	}
}

func TestUsageAdd(t *testing.T) {
	var total Usage
	total.add(&Usage{InputTokens: 10, OutputTokens: 5})
	total.add(&Usage{InputTokens: 3, OutputTokens: 2})
	total.add(nil)
	if total.InputTokens != 13 || total.OutputTokens != 7 {
		t.Errorf("total=%+v", total)
	}
}

func TestToolErrorMessage(t *testing.T) {
	msg := ToolErrorMessage("id1", "str_replace", "Error: no match")
	if msg.Role != RoleUser {
		t.Errorf("role=%v", msg.Role)
	}
	result := msg.Parts[0].ToolResult
	if result == nil || !result.IsError || result.ID != "id1" {
		t.Errorf("result=%+v", result)
	}
}
