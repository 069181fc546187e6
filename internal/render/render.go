// Package render writes streamed model output to a terminal. Reasoning
// and tool-input fragments are dimmed so the answer text stands out.
package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	reasoningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	toolInputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type fragmentKind int

const (
	kindNone fragmentKind = iota
	kindReasoning
	kindText
	kindToolInput
)

// Renderer prints output fragments in arrival order, inserting a line
// break whenever the fragment kind changes mid-line. It keeps no
// transcript; display is fire-and-forget.
type Renderer struct {
	w        io.Writer
	last     fragmentKind
	lastByte byte
	wrote    bool
}

func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) Reasoning(text string) {
	r.write(kindReasoning, styleLines(reasoningStyle, text), text)
}

func (r *Renderer) Text(text string) {
	r.write(kindText, text, text)
}

func (r *Renderer) ToolInput(text string) {
	r.write(kindToolInput, styleLines(toolInputStyle, text), text)
}

// Finish terminates the response with a newline unless the last visible
// byte already was one.
func (r *Renderer) Finish() {
	if r.wrote && r.lastByte != '\n' {
		io.WriteString(r.w, "\n")
	}
	r.last = kindNone
	r.lastByte = 0
	r.wrote = false
}

// styleLines styles each line separately, leaving the newlines between
// them unstyled. Styling a multi-line string wholesale would pad every
// line to the block width with trailing spaces.
func styleLines(style lipgloss.Style, text string) string {
	if !strings.Contains(text, "\n") {
		return style.Render(text)
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) write(kind fragmentKind, styled, plain string) {
	if plain == "" {
		return
	}
	if r.last != kindNone && r.last != kind && r.lastByte != '\n' {
		io.WriteString(r.w, "\n")
	}
	io.WriteString(r.w, styled)
	r.last = kind
	r.lastByte = plain[len(plain)-1]
	r.wrote = true
}
