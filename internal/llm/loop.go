package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// maxAskRounds bounds backend requests per Ask call. Reaching it is not
// an error: the call returns its best-effort partial result.
const maxAskRounds = 4

// Result is the canonical outcome of one Ask call.
type Result struct {
	Text string
	// ToolCalls are the externally reportable calls. The session never
	// executes tools itself; the caller re-enters with a new Ask after
	// running them.
	ToolCalls []ToolCall
	// Truncated reports that the backend stopped on its own output
	// token limit. Non-fatal; Text may be incomplete.
	Truncated bool
	// RoundsExhausted distinguishes a best-effort result returned after
	// the round budget ran out from a model that simply said nothing.
	RoundsExhausted bool
	Rounds          int
	Usage           Usage
}

// roundOutcome is what one backend response contributed.
type roundOutcome struct {
	text         string
	reasoning    string
	reasoningSig string
	rawCalls     []ToolCall
	stop         StopReason
	usage        Usage
}

// Ask sends a user message and runs the bounded request/response loop.
// It returns when the backend produces a reportable tool call, finishes
// with plain text, or the round budget is exhausted. Only transport
// failures surface as errors; every other condition degrades into a
// well-formed partial result.
func (s *Session) Ask(ctx context.Context, text string, opts Options) (*Result, error) {
	cfg := mergeOptions(s.defaults, s.st, opts)

	if len(cfg.Tools) > 0 {
		if err := validateTools(cfg.Tools); err != nil {
			s.emitWarning(fmt.Sprintf("invalid tool definitions, falling back to plain text: %v", err))
			cfg.Tools = nil
		}
	}

	s.AppendUser(text)

	caps := s.provider.Capabilities()
	emulation := usesEditorEmulation(cfg.Tools)

	result := &Result{}
	var totalText strings.Builder

	for round := 1; round <= maxAskRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Rounds = round

		req := buildRequest(caps, cfg, s.history)
		s.logger.Debug().
			Str("provider", s.provider.Name()).
			Int("round", round).
			Int("reasoning_budget", req.ReasoningBudget).
			Bool("native_editor", req.NativeEditor).
			Msg("sending request")

		outcome, err := s.consumeResponse(ctx, req)
		if err != nil {
			return nil, err
		}

		totalText.WriteString(outcome.text)
		result.Usage.add(&outcome.usage)
		if outcome.stop == StopMaxTokens {
			result.Truncated = true
			s.emitWarning("response truncated: backend output token limit reached")
		}

		reportable, failures := s.classifyToolCalls(outcome.rawCalls, emulation)

		// A reportable tool call ends the loop immediately; remaining
		// unclassified blocks from the same response are discarded.
		if len(reportable) > 0 {
			result.Text = totalText.String()
			result.ToolCalls = reportable
			s.history = append(s.history, assistantTurn(outcome, reportable))
			return result, nil
		}

		// All-error emulation rounds feed the errors back and retry.
		if len(failures) > 0 {
			s.history = append(s.history, assistantTurn(outcome, nil))
			s.history = append(s.history, toolFailureTurn(failures))
			if round == maxAskRounds {
				result.Text = totalText.String()
				result.RoundsExhausted = true
				s.logger.Debug().Int("rounds", round).Msg("round budget exhausted")
				return result, nil
			}
			continue
		}

		// No tool use at all, or nothing classifiable: plain completion.
		result.Text = totalText.String()
		s.history = append(s.history, AssistantText(outcome.text))
		return result, nil
	}

	result.Text = totalText.String()
	result.RoundsExhausted = true
	return result, nil
}

// consumeResponse drains one backend response, forwarding fragments to
// the render sink and collecting tool-use payloads. The stream is read
// exactly once; rendering and collection happen in lockstep.
func (s *Session) consumeResponse(ctx context.Context, req Request) (roundOutcome, error) {
	stream, err := s.provider.Stream(ctx, req)
	if err != nil {
		return roundOutcome{}, fmt.Errorf("%s: %w", s.provider.Name(), err)
	}
	defer stream.Close()

	var outcome roundOutcome
	var textBuilder, reasoningBuilder strings.Builder
	outcome.stop = StopEndTurn

	for {
		event, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return roundOutcome{}, fmt.Errorf("%s: %w", s.provider.Name(), err)
		}

		switch event.Type {
		case EventReasoningDelta:
			reasoningBuilder.WriteString(event.Text)
			outcome.reasoningSig += event.Signature
			if s.sink != nil && event.Text != "" {
				s.sink.Reasoning(event.Text)
			}
		case EventTextDelta:
			textBuilder.WriteString(event.Text)
			if s.sink != nil {
				s.sink.Text(event.Text)
			}
		case EventToolCallDelta:
			if s.sink != nil {
				s.sink.ToolInput(event.Text)
			}
		case EventToolCall:
			if event.Tool != nil {
				outcome.rawCalls = append(outcome.rawCalls, *event.Tool)
			}
		case EventUsage:
			outcome.usage.add(event.Use)
		case EventStop:
			if event.Stop != "" {
				outcome.stop = event.Stop
			}
		}
	}

	if s.sink != nil {
		s.sink.Finish()
	}

	outcome.text = textBuilder.String()
	outcome.reasoning = reasoningBuilder.String()
	outcome.rawCalls = ensureToolCallIDs(outcome.rawCalls)
	return outcome, nil
}

// toolFailure pairs a failed tool-use block with its normalization
// error, for the synthetic result turn.
type toolFailure struct {
	id   string
	name string
	err  error
}

// classifyToolCalls splits raw tool-use payloads into externally
// reportable calls and emulation failures. Payloads that are neither
// (e.g. nameless blocks) are dropped.
func (s *Session) classifyToolCalls(rawCalls []ToolCall, emulation bool) ([]ToolCall, []toolFailure) {
	var reportable []ToolCall
	var failures []toolFailure
	for _, raw := range rawCalls {
		isEmulated := emulation && raw.Name == EditorToolName
		normalized, err := normalizeToolCall(raw, emulation)
		if err == nil {
			reportable = append(reportable, normalized)
			continue
		}
		if isEmulated {
			s.logger.Debug().Str("id", raw.ID).Err(err).Msg("editor tool use rejected")
			failures = append(failures, toolFailure{id: raw.ID, name: raw.Name, err: err})
			continue
		}
		s.logger.Debug().Str("name", raw.Name).Err(err).Msg("discarding unclassifiable tool use")
	}
	return reportable, failures
}

// assistantTurn rebuilds the response as an assistant message. For
// continuation rounds it must carry the raw blocks, reasoning included,
// so the backend sees its own output replayed verbatim.
func assistantTurn(outcome roundOutcome, reportable []ToolCall) Message {
	var parts []Part
	if outcome.reasoning != "" {
		parts = append(parts, Part{Type: PartReasoning, Text: outcome.reasoning, Signature: outcome.reasoningSig})
	}
	if outcome.text != "" {
		parts = append(parts, Part{Type: PartText, Text: outcome.text})
	}
	calls := outcome.rawCalls
	if reportable != nil {
		calls = reportable
	}
	for i := range calls {
		call := calls[i]
		parts = append(parts, Part{Type: PartToolCall, ToolCall: &call})
	}
	if len(parts) == 0 {
		parts = []Part{{Type: PartText}}
	}
	return Message{Role: RoleAssistant, Parts: parts}
}

// toolFailureTurn synthesizes the user turn carrying error tool results
// for every failed block of the previous response.
func toolFailureTurn(failures []toolFailure) Message {
	parts := make([]Part, 0, len(failures))
	for _, failure := range failures {
		parts = append(parts, Part{
			Type: PartToolResult,
			ToolResult: &ToolResult{
				ID:      failure.id,
				Name:    failure.name,
				Content: "Error: " + failure.err.Error(),
				IsError: true,
			},
		})
	}
	return Message{Role: RoleUser, Parts: parts}
}

func ensureToolCallIDs(calls []ToolCall) []ToolCall {
	for i := range calls {
		if strings.TrimSpace(calls[i].ID) == "" {
			calls[i].ID = "toolcall-" + uuid.NewString()
		}
	}
	return calls
}
