package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the Google Gemini API.
// Thinking is controlled per request through ThinkingConfig; thought
// parts stream back interleaved with answer text.
type GeminiProvider struct {
	apiKey string
	model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
	}
}

func (p *GeminiProvider) Name() string {
	return fmt.Sprintf("Gemini (%s)", p.model)
}

func (p *GeminiProvider) Capabilities() Capabilities {
	return Capabilities{
		SupportsReasoning:    true,
		SupportsNativeEditor: false,
		InstructionRole:      InstructionSystemConfig,
		ReasoningFloor:       128,
		ReservedAnswerTokens: 1024,
		DefaultMaxTokens:     4096,
	}
}

func (p *GeminiProvider) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
}

func (p *GeminiProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	contents := buildGeminiContents(req.Messages)
	config := p.buildConfig(req)
	model := chooseModel(req.Model, p.model)

	if !req.Stream {
		client, err := p.newClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		resp, err := client.Models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini request: %w", err)
		}
		return newBatchStream(geminiResponseEvents(resp, true)), nil
	}

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		client, err := p.newClient(ctx)
		if err != nil {
			return fmt.Errorf("gemini client: %w", err)
		}

		var lastResp *genai.GenerateContentResponse
		for resp, err := range client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				return fmt.Errorf("gemini streaming: %w", err)
			}
			lastResp = resp
			for _, event := range geminiResponseEvents(resp, false) {
				events <- event
			}
		}
		if lastResp != nil {
			emitGeminiUsage(events, lastResp)
			events <- Event{Type: EventStop, Stop: geminiStopReason(lastResp)}
		} else {
			events <- Event{Type: EventStop, Stop: StopEndTurn}
		}
		return nil
	}), nil
}

func (p *GeminiProvider) buildConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if req.ReasoningBudget > 0 {
		budget := int32(req.ReasoningBudget)
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget:  &budget,
			IncludeThoughts: true,
		}
	}
	if req.HasTemperature {
		temperature := float32(req.Temperature)
		config.Temperature = &temperature
	}
	if len(req.Tools) > 0 {
		config.Tools = buildGeminiTools(req.Tools)
	}
	return config
}

// geminiResponseEvents walks one response's candidate parts and emits
// the canonical events. Usage and stop are appended only for terminal
// responses; streamed chunks defer them to the last chunk.
func geminiResponseEvents(resp *genai.GenerateContentResponse, terminal bool) []Event {
	var events []Event
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Thought {
				if part.Text != "" || len(part.ThoughtSignature) > 0 {
					events = append(events, Event{
						Type:      EventReasoningDelta,
						Text:      part.Text,
						Signature: base64.StdEncoding.EncodeToString(part.ThoughtSignature),
					})
				}
				continue
			}
			if part.Text != "" {
				events = append(events, Event{Type: EventTextDelta, Text: part.Text})
			}
			if part.FunctionCall != nil {
				events = append(events, Event{Type: EventToolCall, Tool: &ToolCall{
					ID:    part.FunctionCall.ID,
					Name:  part.FunctionCall.Name,
					Input: part.FunctionCall.Args,
				}})
			}
		}
	}
	if terminal {
		var tail []Event
		emit := func(event Event) { tail = append(tail, event) }
		emitGeminiUsageFunc(emit, resp)
		emit(Event{Type: EventStop, Stop: geminiStopReason(resp)})
		events = append(events, tail...)
	}
	return events
}

func geminiStopReason(resp *genai.GenerateContentResponse) StopReason {
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return StopMaxTokens
	}
	return StopEndTurn
}

func emitGeminiUsage(events chan<- Event, resp *genai.GenerateContentResponse) {
	emitGeminiUsageFunc(func(event Event) { events <- event }, resp)
}

func emitGeminiUsageFunc(emit func(Event), resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	if resp.UsageMetadata.TotalTokenCount > 0 {
		emit(Event{Type: EventUsage, Use: &Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}})
	}
}

func buildGeminiTools(specs []ToolSpec) []*genai.Tool {
	tools := make([]*genai.Tool, 0, len(specs))
	for _, spec := range specs {
		schema := normalizeSchemaForGemini(spec.Schema)
		tools = append(tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  schemaToGenai(schema),
			}},
		})
	}
	return tools
}

func buildGeminiContents(messages []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		if content := buildGeminiContent(role, msg.Parts); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

func buildGeminiContent(role string, parts []Part) *genai.Content {
	content := &genai.Content{Role: role}
	for _, part := range parts {
		switch part.Type {
		case PartText:
			if part.Text != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: part.Text})
			}
		case PartReasoning:
			if role == genai.RoleModel && part.Text != "" {
				content.Parts = append(content.Parts, &genai.Part{
					Text:             part.Text,
					Thought:          true,
					ThoughtSignature: decodeThoughtSignature(part.Signature),
				})
			}
		case PartToolCall:
			if role == genai.RoleModel && part.ToolCall != nil {
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   part.ToolCall.ID,
						Name: part.ToolCall.Name,
						Args: part.ToolCall.Input,
					},
				})
			}
		case PartToolResult:
			if part.ToolResult != nil {
				content.Parts = append(content.Parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       part.ToolResult.ID,
						Name:     part.ToolResult.Name,
						Response: map[string]any{"output": part.ToolResult.Content},
					},
				})
			}
		}
	}
	if len(content.Parts) == 0 {
		return nil
	}
	return content
}

func decodeThoughtSignature(signature string) []byte {
	if signature == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return nil
	}
	return data
}
