package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
)

// AnthropicProvider implements Provider using the Anthropic Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		client: &client,
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string {
	return fmt.Sprintf("Anthropic (%s)", p.model)
}

func (p *AnthropicProvider) Capabilities() Capabilities {
	return Capabilities{
		SupportsReasoning:    true,
		SupportsNativeEditor: true,
		InstructionRole:      InstructionSystemParam,
		ReasoningFloor:       1024,
		ReservedAnswerTokens: 2048,
		DefaultMaxTokens:     4096,
	}
}

func (p *AnthropicProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	params := p.buildParams(req)
	if !req.Stream {
		msg, err := p.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("anthropic request: %w", err)
		}
		return newBatchStream(anthropicMessageEvents(msg)), nil
	}

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		accumulator := newToolCallAccumulator()
		stop := StopEndTurn
		var lastUsage *Usage

		stream := p.client.Messages.NewStreaming(ctx, params)
		for stream.Next() {
			event := stream.Current()
			switch variant := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				switch block := variant.ContentBlock.AsAny().(type) {
				case anthropic.ThinkingBlock:
					emitReasoningDelta(events, block.Thinking, block.Signature)
				case anthropic.ToolUseBlock:
					accumulator.Start(variant.Index, ToolCall{
						ID:    block.ID,
						Name:  block.Name,
						Input: anyToInput(block.Input),
					})
					events <- Event{Type: EventToolCallStart, ToolCallID: block.ID, ToolName: block.Name}
				}
			case anthropic.ContentBlockDeltaEvent:
				switch delta := variant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if delta.Text != "" {
						events <- Event{Type: EventTextDelta, Text: delta.Text}
					}
				case anthropic.ThinkingDelta:
					emitReasoningDelta(events, delta.Thinking, "")
				case anthropic.SignatureDelta:
					emitReasoningDelta(events, "", delta.Signature)
				case anthropic.InputJSONDelta:
					if delta.PartialJSON != "" {
						accumulator.Append(variant.Index, delta.PartialJSON)
						events <- Event{Type: EventToolCallDelta, Text: delta.PartialJSON}
					}
				}
			case anthropic.ContentBlockStopEvent:
				if toolCall, ok := accumulator.Finish(variant.Index); ok {
					events <- Event{Type: EventToolCall, Tool: &toolCall}
				}
			case anthropic.MessageDeltaEvent:
				if variant.Delta.StopReason == "max_tokens" {
					stop = StopMaxTokens
				}
				if variant.Usage.OutputTokens > 0 {
					lastUsage = &Usage{
						InputTokens:  int(variant.Usage.InputTokens),
						OutputTokens: int(variant.Usage.OutputTokens),
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("anthropic streaming: %w", err)
		}
		if lastUsage != nil {
			events <- Event{Type: EventUsage, Use: lastUsage}
		}
		events <- Event{Type: EventStop, Stop: stop}
		return nil
	}), nil
}

func (p *AnthropicProvider) buildParams(req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(chooseModel(req.Model, p.model)),
		MaxTokens: int64(req.MaxOutputTokens),
		Messages:  buildAnthropicMessages(req.Messages),
	}

	if req.System != "" {
		system := anthropic.TextBlockParam{Text: req.System}
		if req.Cacheable {
			system.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		params.System = []anthropic.TextBlockParam{system}
	}

	if req.NativeEditor {
		params.Tools = []anthropic.ToolUnionParam{{
			OfTextEditor20250124: &anthropic.ToolTextEditor20250124Param{},
		}}
	} else if len(req.Tools) > 0 {
		params.Tools = buildAnthropicTools(req.Tools)
	}

	if req.ReasoningBudget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamUnion{
			OfEnabled: &anthropic.ThinkingConfigEnabledParam{
				BudgetTokens: int64(req.ReasoningBudget),
			},
		}
	}
	if req.HasTemperature {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	return params
}

// anthropicMessageEvents normalizes one complete message into the same
// event batch a stream would have produced.
func anthropicMessageEvents(msg *anthropic.Message) []Event {
	var events []Event
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.ThinkingBlock:
			events = append(events, Event{
				Type:      EventReasoningDelta,
				Text:      variant.Thinking,
				Signature: variant.Signature,
			})
		case anthropic.TextBlock:
			if variant.Text != "" {
				events = append(events, Event{Type: EventTextDelta, Text: variant.Text})
			}
		case anthropic.ToolUseBlock:
			events = append(events, Event{Type: EventToolCall, Tool: &ToolCall{
				ID:    variant.ID,
				Name:  variant.Name,
				Input: rawToInput(json.RawMessage(variant.JSON.Input.Raw())),
			}})
		}
	}
	if msg.Usage.OutputTokens > 0 {
		events = append(events, Event{Type: EventUsage, Use: &Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		}})
	}
	stop := StopEndTurn
	if msg.StopReason == "max_tokens" {
		stop = StopMaxTokens
	}
	events = append(events, Event{Type: EventStop, Stop: stop})
	return events
}

func buildAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			if blocks := buildAnthropicBlocks(msg.Parts, false); len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		case RoleAssistant:
			if blocks := buildAnthropicBlocks(msg.Parts, true); len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	return out
}

func buildAnthropicBlocks(parts []Part, assistant bool) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case PartReasoning:
			if assistant && part.Signature != "" {
				blocks = append(blocks, anthropic.NewThinkingBlock(part.Signature, part.Text))
			}
		case PartText:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case PartToolCall:
			if assistant && part.ToolCall != nil {
				blocks = append(blocks, anthropic.NewToolUseBlock(part.ToolCall.ID, part.ToolCall.InputJSON(), part.ToolCall.Name))
			}
		case PartToolResult:
			if part.ToolResult != nil {
				blocks = append(blocks, anthropic.NewToolResultBlock(part.ToolResult.ID, part.ToolResult.Content, part.ToolResult.IsError))
			}
		}
	}
	return blocks
}

func buildAnthropicTools(specs []ToolSpec) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type:       constant.Object("object"),
			Properties: spec.Schema["properties"],
			Required:   schemaRequired(spec.Schema),
		}
		tool := anthropic.ToolUnionParamOfTool(inputSchema, spec.Name)
		if spec.Description != "" {
			tool.OfTool.Description = anthropic.String(spec.Description)
		}
		tools = append(tools, tool)
	}
	return tools
}

func schemaRequired(schema map[string]any) []string {
	if schema == nil {
		return nil
	}
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []any:
		out := make([]string, 0, len(required))
		for _, entry := range required {
			if name, ok := entry.(string); ok {
				out = append(out, name)
			}
		}
		return out
	}
	return nil
}

func emitReasoningDelta(events chan<- Event, text, signature string) {
	if text == "" && signature == "" {
		return
	}
	events <- Event{Type: EventReasoningDelta, Text: text, Signature: signature}
}

func anyToInput(input any) map[string]any {
	switch v := input.(type) {
	case map[string]any:
		return v
	case json.RawMessage:
		return rawToInput(v)
	case []byte:
		return rawToInput(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return rawToInput(data)
	}
}

func rawToInput(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil
	}
	return input
}

func chooseModel(requested, fallback string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	return fallback
}

// toolCallAccumulator assembles tool calls from incremental input JSON
// frames, keyed by content block index.
type toolCallAccumulator struct {
	calls   map[int64]ToolCall
	partial map[int64]*strings.Builder
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{
		calls:   make(map[int64]ToolCall),
		partial: make(map[int64]*strings.Builder),
	}
}

func (a *toolCallAccumulator) Start(index int64, call ToolCall) {
	a.calls[index] = call
}

func (a *toolCallAccumulator) Append(index int64, partial string) {
	if partial == "" {
		return
	}
	builder := a.partial[index]
	if builder == nil {
		builder = &strings.Builder{}
		a.partial[index] = builder
	}
	builder.WriteString(partial)
}

func (a *toolCallAccumulator) Finish(index int64) (ToolCall, bool) {
	call, ok := a.calls[index]
	if !ok {
		return ToolCall{}, false
	}
	if builder := a.partial[index]; builder != nil && builder.Len() > 0 {
		call.Input = rawToInput(json.RawMessage(builder.String()))
	}
	delete(a.calls, index)
	delete(a.partial, index)
	return call, true
}
