package agent

import "maps"

var labelDescriptions = map[string]string{
	"question":      "the input is a question that needs an answer",
	"code":          "the input asks for source code to be written or changed",
	"text":          "the input asks for prose to be written or changed",
	"generate_code": "the input asks to create, write, build, implement or generate new code",
	"edit_code":     "the input asks to fix, refactor, edit, correct, improve or modify existing code",
	"generate_text": "the input asks to create, write, describe, build or generate new text",
	"edit_text":     "the input asks to fix, edit, improve, rewrite, or correct grammar or spelling of existing text",
}

// DefaultLabelDescriptions returns a copy of the built-in label guidance used
// in classification prompts.
func DefaultLabelDescriptions() map[string]string {
	return maps.Clone(labelDescriptions)
}
