package render

import (
	"strings"
	"testing"
)

// Tests run without a TTY, so lipgloss renders without escape codes and
// the assertions can compare plain text.

func TestReasoningThenText(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.Reasoning("thinking...")
	r.Text("Hi ")
	r.Text("there")
	r.Finish()

	if got := buf.String(); got != "thinking...\nHi there\n" {
		t.Errorf("output=%q", got)
	}
}

func TestNoDoubleNewlineAtBoundary(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.Reasoning("done thinking\n")
	r.Text("answer")
	r.Finish()

	if got := buf.String(); got != "done thinking\nanswer\n" {
		t.Errorf("output=%q", got)
	}
}

func TestMultiLineFragmentsNotPadded(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	// Lines of differing width must come through verbatim; styling a
	// multi-line string as one block would pad short lines with spaces.
	r.Reasoning("line one\nx")
	r.Text("answer")
	r.Finish()

	if got := buf.String(); got != "line one\nx\nanswer\n" {
		t.Errorf("output=%q", got)
	}
}

func TestMultiLineToolInputNotPadded(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.ToolInput("{\n  \"city\": \"Paris\"\n}")
	r.Finish()

	if got := buf.String(); got != "{\n  \"city\": \"Paris\"\n}\n" {
		t.Errorf("output=%q", got)
	}
}

func TestSameKindNotSeparated(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.Reasoning("part one ")
	r.Reasoning("part two")
	r.Finish()

	if got := buf.String(); got != "part one part two\n" {
		t.Errorf("output=%q", got)
	}
}

func TestToolInputBoundary(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.Text("Calling the tool")
	r.ToolInput(`{"city":`)
	r.ToolInput(`"Paris"}`)
	r.Finish()

	if got := buf.String(); got != "Calling the tool\n{\"city\":\"Paris\"}\n" {
		t.Errorf("output=%q", got)
	}
}

func TestFinishOnTrailingNewline(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.Text("answer\n")
	r.Finish()

	if got := buf.String(); got != "answer\n" {
		t.Errorf("output=%q", got)
	}
}

func TestFinishWithNoOutput(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)
	r.Finish()

	if got := buf.String(); got != "" {
		t.Errorf("output=%q", got)
	}
}

func TestEmptyFragmentsIgnored(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.Reasoning("")
	r.Text("answer")
	r.Text("")
	r.Finish()

	if got := buf.String(); got != "answer\n" {
		t.Errorf("output=%q", got)
	}
}

func TestFinishResetsForNextResponse(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)

	r.Text("first")
	r.Finish()
	r.Text("second")
	r.Finish()

	if got := buf.String(); got != "first\nsecond\n" {
		t.Errorf("output=%q", got)
	}
}
