package llm

import (
	"github.com/rs/zerolog"
)

// Sink receives rendered output fragments. Implementations apply display
// conventions only; they never affect control flow or returned values.
type Sink interface {
	Reasoning(text string)
	Text(text string)
	ToolInput(text string)
	Finish()
}

// WarnFunc receives non-fatal warnings, e.g. backend output truncation.
type WarnFunc func(message string)

// Session owns an ordered conversation history bound to one backend.
// History is shared mutable state with a single-writer discipline: at
// most one Ask call may be in flight per session; no internal lock is
// taken.
type Session struct {
	provider Provider
	history  []Message
	st       sticky
	defaults Options
	sink     Sink
	warn     WarnFunc
	logger   zerolog.Logger
}

// SessionOption configures a session at construction.
type SessionOption func(*Session)

// WithDefaults sets session-level default call options.
func WithDefaults(defaults Options) SessionOption {
	return func(s *Session) { s.defaults = defaults }
}

// WithSink sets the rendering destination for streamed output.
func WithSink(sink Sink) SessionOption {
	return func(s *Session) { s.sink = sink }
}

// WithWarnFunc sets the destination for non-fatal warnings.
func WithWarnFunc(warn WarnFunc) SessionOption {
	return func(s *Session) { s.warn = warn }
}

// WithLogger sets the debug logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// NewSession binds a conversation to a backend provider. The session
// lives for the caller's lifetime; there is no explicit teardown.
func NewSession(provider Provider, opts ...SessionOption) *Session {
	s := &Session{
		provider: provider,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendUser appends a user turn to history.
func (s *Session) AppendUser(text string) {
	s.history = append(s.history, UserText(text))
}

// AppendAssistant appends an assistant turn to history.
func (s *Session) AppendAssistant(msg Message) {
	msg.Role = RoleAssistant
	s.history = append(s.history, msg)
}

// History returns a snapshot of the turn sequence.
func (s *Session) History() []Message {
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// SetSystem pins the system instruction. Last write wins; the value
// persists across calls until replaced. It is held apart from the turn
// sequence so tool-result splices never disturb it.
func (s *Session) SetSystem(text string) {
	s.st.system = text
}

// SetCacheable marks the pinned instruction as cacheable on backends
// that support prompt caching. Sticky like the instruction itself.
func (s *Session) SetCacheable(cacheable bool) {
	s.st.cacheable = cacheable
}

func (s *Session) emitWarning(message string) {
	if s.warn != nil {
		s.warn(message)
	}
	s.logger.Warn().Msg(message)
}
