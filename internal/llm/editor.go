package llm

import "fmt"

// Reserved generic tool names. When a caller's tool set is exactly this
// pair, backends with a bundled editor tool use it instead and its
// commands are translated back to these names.
const (
	ToolStrReplace = "str_replace"
	ToolCreateFile = "create_file"
)

// EditorToolName is the wire name of the bundled backend editor tool.
const EditorToolName = "str_replace_editor"

// NormalizationError reports a tool-use payload that could not be
// converted into a caller-visible tool call. Disabled marks commands
// rejected by policy rather than malformed ones.
type NormalizationError struct {
	Message  string
	Disabled bool
}

func (e *NormalizationError) Error() string { return e.Message }

// usesEditorEmulation reports whether the caller's tool set is exactly
// the two reserved editing tools. Recomputed per call, never persisted.
func usesEditorEmulation(tools []ToolSpec) bool {
	if len(tools) != 2 {
		return false
	}
	var hasReplace, hasCreate bool
	for _, tool := range tools {
		switch tool.Name {
		case ToolStrReplace:
			hasReplace = true
		case ToolCreateFile:
			hasCreate = true
		}
	}
	return hasReplace && hasCreate
}

// normalizeToolCall converts a backend tool-use payload into a canonical
// ToolCall. On the generic path the payload passes through as long as
// the name is non-empty; when emulation is active, the bundled editor
// tool's commands are mapped onto the caller's two generic tools.
func normalizeToolCall(call ToolCall, emulation bool) (ToolCall, error) {
	if emulation && call.Name == EditorToolName {
		return normalizeEditorCall(call)
	}
	if call.Name == "" {
		return ToolCall{}, &NormalizationError{Message: "tool use without a name"}
	}
	return call, nil
}

func normalizeEditorCall(call ToolCall) (ToolCall, error) {
	command, _ := call.Input["command"].(string)
	switch command {
	case "str_replace":
		path, err := requireString(call.Input, "path")
		if err != nil {
			return ToolCall{}, err
		}
		oldStr, err := requireString(call.Input, "old_str")
		if err != nil {
			return ToolCall{}, err
		}
		newStr, err := requireString(call.Input, "new_str")
		if err != nil {
			return ToolCall{}, err
		}
		return ToolCall{
			ID:   call.ID,
			Name: ToolStrReplace,
			Input: map[string]any{
				"path":    path,
				"old_str": oldStr,
				"new_str": newStr,
			},
		}, nil

	case "create":
		path, err := requireString(call.Input, "path")
		if err != nil {
			return ToolCall{}, err
		}
		fileText, err := requireString(call.Input, "file_text")
		if err != nil {
			return ToolCall{}, err
		}
		return ToolCall{
			ID:   call.ID,
			Name: ToolCreateFile,
			Input: map[string]any{
				"path":      path,
				"file_text": fileText,
			},
		}, nil

	case "":
		return ToolCall{}, &NormalizationError{Message: "editor tool use without a command"}

	default:
		// Listing and viewing files is disallowed: the caller already
		// supplies full file context with the request.
		return ToolCall{}, &NormalizationError{
			Message:  fmt.Sprintf("editor command %q is disabled; use str_replace or create", command),
			Disabled: true,
		}
	}
}

func requireString(input map[string]any, key string) (string, error) {
	value, ok := input[key]
	if !ok {
		return "", &NormalizationError{Message: fmt.Sprintf("editor tool use missing %q", key)}
	}
	text, ok := value.(string)
	if !ok {
		return "", &NormalizationError{Message: fmt.Sprintf("editor tool use field %q is not a string", key)}
	}
	return text, nil
}
