package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions
// API. The API has no bundled editor tool and no thinking-token stream,
// so requests built for it never carry a reasoning budget.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("OpenAI (%s)", p.model)
}

func (p *OpenAIProvider) Capabilities() Capabilities {
	return Capabilities{
		SupportsReasoning:    false,
		SupportsNativeEditor: false,
		InstructionRole:      InstructionSystemMessage,
		DefaultMaxTokens:     4096,
	}
}

func (p *OpenAIProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	params := p.buildParams(req)

	if !req.Stream {
		resp, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("openai request: %w", err)
		}
		return newBatchStream(openAICompletionEvents(resp)), nil
	}

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		params.StreamOptions = openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		}
		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		acc := openai.ChatCompletionAccumulator{}
		stop := StopEndTurn
		var lastUsage *Usage

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if chunk.Usage.TotalTokens > 0 {
				lastUsage = &Usage{
					InputTokens:  int(chunk.Usage.PromptTokens),
					OutputTokens: int(chunk.Usage.CompletionTokens),
				}
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			if choice.FinishReason == "length" {
				stop = StopMaxTokens
			}
			// Compatible servers expose thinking output as an extra
			// delta field rather than a first-class content kind.
			if raw, ok := choice.Delta.JSON.ExtraFields["reasoning_content"]; ok {
				var reasoning string
				if err := json.Unmarshal([]byte(raw.Raw()), &reasoning); err == nil && reasoning != "" {
					events <- Event{Type: EventReasoningDelta, Text: reasoning}
				}
			}
			if choice.Delta.Content != "" {
				events <- Event{Type: EventTextDelta, Text: choice.Delta.Content}
			}
			for _, tc := range choice.Delta.ToolCalls {
				if tc.Function.Name != "" {
					events <- Event{Type: EventToolCallStart, ToolCallID: tc.ID, ToolName: tc.Function.Name}
				}
				if tc.Function.Arguments != "" {
					events <- Event{Type: EventToolCallDelta, ToolCallID: tc.ID, Text: tc.Function.Arguments}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("openai streaming: %w", err)
		}

		if len(acc.Choices) > 0 {
			for _, tc := range acc.Choices[0].Message.ToolCalls {
				events <- Event{Type: EventToolCall, Tool: &ToolCall{
					ID:    tc.ID,
					Name:  tc.Function.Name,
					Input: rawToInput(json.RawMessage(tc.Function.Arguments)),
				}}
			}
		}
		if lastUsage != nil {
			events <- Event{Type: EventUsage, Use: lastUsage}
		}
		events <- Event{Type: EventStop, Stop: stop}
		return nil
	}), nil
}

func (p *OpenAIProvider) buildParams(req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(chooseModel(req.Model, p.model)),
		Messages: buildOpenAIMessages(req.System, req.Messages),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if req.HasTemperature {
		params.Temperature = openai.Float(req.Temperature)
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools))
		for _, spec := range req.Tools {
			tools = append(tools, openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        spec.Name,
					Description: openai.String(spec.Description),
					Parameters:  openai.FunctionParameters(spec.Schema),
				},
			})
		}
		params.Tools = tools
	}
	return params
}

func buildOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			for _, part := range msg.Parts {
				switch part.Type {
				case PartText:
					if part.Text != "" {
						out = append(out, openai.UserMessage(part.Text))
					}
				case PartToolResult:
					if part.ToolResult != nil {
						out = append(out, openai.ToolMessage(part.ToolResult.ID, part.ToolResult.Content))
					}
				}
			}
		case RoleAssistant:
			text := collectTextParts(msg.Parts)
			var toolCalls []openai.ChatCompletionMessageToolCall
			for _, part := range msg.Parts {
				if part.Type == PartToolCall && part.ToolCall != nil {
					toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCall{
						ID:   part.ToolCall.ID,
						Type: "function",
						Function: openai.ChatCompletionMessageToolCallFunction{
							Name:      part.ToolCall.Name,
							Arguments: string(part.ToolCall.InputJSON()),
						},
					})
				}
			}
			if len(toolCalls) > 0 {
				assistantMsg := openai.ChatCompletionMessage{
					Role:      "assistant",
					Content:   text,
					ToolCalls: toolCalls,
				}
				out = append(out, assistantMsg.ToParam())
			} else if text != "" {
				out = append(out, openai.AssistantMessage(text))
			}
		}
	}
	return out
}

// openAICompletionEvents normalizes one complete chat completion into
// the canonical event batch.
func openAICompletionEvents(resp *openai.ChatCompletion) []Event {
	var events []Event
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		if choice.Message.Content != "" {
			events = append(events, Event{Type: EventTextDelta, Text: choice.Message.Content})
		}
		for _, tc := range choice.Message.ToolCalls {
			events = append(events, Event{Type: EventToolCall, Tool: &ToolCall{
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Input: rawToInput(json.RawMessage(tc.Function.Arguments)),
			}})
		}
		if resp.Usage.TotalTokens > 0 {
			events = append(events, Event{Type: EventUsage, Use: &Usage{
				InputTokens:  int(resp.Usage.PromptTokens),
				OutputTokens: int(resp.Usage.CompletionTokens),
			}})
		}
		stop := StopEndTurn
		if choice.FinishReason == "length" {
			stop = StopMaxTokens
		}
		events = append(events, Event{Type: EventStop, Stop: stop})
		return events
	}
	return append(events, Event{Type: EventStop, Stop: StopEndTurn})
}
