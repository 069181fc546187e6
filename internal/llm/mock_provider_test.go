package llm

import (
	"context"
	"strings"
)

// scriptedProvider replays one event batch per Stream call and records
// every request it saw.
type scriptedProvider struct {
	name     string
	caps     Capabilities
	batches  [][]Event
	errs     []error
	requests []Request
}

func (p *scriptedProvider) Name() string {
	if p.name == "" {
		return "scripted"
	}
	return p.name
}

func (p *scriptedProvider) Capabilities() Capabilities { return p.caps }

func (p *scriptedProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	call := len(p.requests)
	p.requests = append(p.requests, req)
	if call < len(p.errs) && p.errs[call] != nil {
		return nil, p.errs[call]
	}
	if call >= len(p.batches) {
		return newBatchStream([]Event{{Type: EventStop, Stop: StopEndTurn}}), nil
	}
	return newBatchStream(p.batches[call]), nil
}

// recordingSink captures sink callbacks in arrival order.
type recordingSink struct {
	reasoning strings.Builder
	text      strings.Builder
	toolInput strings.Builder
	finishes  int
}

func (s *recordingSink) Reasoning(text string) { s.reasoning.WriteString(text) }
func (s *recordingSink) Text(text string)      { s.text.WriteString(text) }
func (s *recordingSink) ToolInput(text string) { s.toolInput.WriteString(text) }
func (s *recordingSink) Finish()               { s.finishes++ }

func anthropicLikeCaps() Capabilities {
	return Capabilities{
		SupportsReasoning:    true,
		SupportsNativeEditor: true,
		InstructionRole:      InstructionSystemParam,
		ReasoningFloor:       1024,
		ReservedAnswerTokens: 2048,
		DefaultMaxTokens:     4096,
	}
}

func editorTools() []ToolSpec {
	return []ToolSpec{
		{Name: ToolStrReplace, Description: "Replace text in a file", Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"old_str": map[string]any{"type": "string"},
				"new_str": map[string]any{"type": "string"},
			},
		}},
		{Name: ToolCreateFile, Description: "Create a file", Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":      map[string]any{"type": "string"},
				"file_text": map[string]any{"type": "string"},
			},
		}},
	}
}
