package router

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/orchestrate/state"
)

// Handler sends the probed subject to the Generator and records the reply
// under Output. A missing subject is reported in the error key rather than
// failing the run.
type Handler struct {
	Name        string
	Output      string
	Probe       []string
	Instruction string
	Missing     string
	Generator   agent.Generator
}

func (h *Handler) Execute(ctx context.Context, s state.State) (state.Update, error) {
	subject := s.Subject(h.Probe...)
	if subject == "" {
		return state.Update{KeyError: h.Missing}, nil
	}

	reply, err := h.Generator.Generate(ctx, h.Instruction, subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.Name, err)
	}

	return state.Update{
		h.Output: reply,
		KeyQuery: subject,
	}, nil
}

func newHandler(name, output, instruction, missing string, generator agent.Generator) *Handler {
	return &Handler{
		Name:        name,
		Output:      output,
		Probe:       []string{KeyQuery, StageAnswer},
		Instruction: instruction,
		Missing:     missing,
		Generator:   generator,
	}
}

// NewQuestion answers questions. Its reply lands under "answer", which the
// pass-through answer stage then carries to the end of the run.
func NewQuestion(generator agent.Generator) *Handler {
	return newHandler(StageQuestion, StageAnswer, questionInstruction, "No question provided.", generator)
}

func NewGenerateCode(generator agent.Generator) *Handler {
	return newHandler(StageGenerateCode, StageGenerateCode, generateCodeInstruction, "No request to generating code provided.", generator)
}

func NewEditCode(generator agent.Generator) *Handler {
	return newHandler(StageEditCode, StageEditCode, editCodeInstruction, "No request to editing code provided.", generator)
}

func NewGenerateText(generator agent.Generator) *Handler {
	return newHandler(StageGenerateText, StageGenerateText, generateTextInstruction, "No request to generating text provided.", generator)
}

func NewEditText(generator agent.Generator) *Handler {
	return newHandler(StageEditText, StageEditText, editTextInstruction, "No request to editing text provided.", generator)
}
