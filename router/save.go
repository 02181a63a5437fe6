package router

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/artifact"
	"github.com/tailored-agentic-units/router/orchestrate/state"
)

const filenameHeader = "FILENAME: "

// SaveText writes the most refined text available to output.txt.
type SaveText struct {
	Store artifact.Store
}

var saveTextProbe = []string{StageEditText, StageGenerateText, StageAnswer, KeyQuery}

func (st *SaveText) Execute(ctx context.Context, s state.State) (state.Update, error) {
	subject := s.Subject(saveTextProbe...)
	if subject == "" {
		return state.Update{KeyError: "No request to saving text provided."}, nil
	}

	path, err := st.Store.Save(ctx, artifact.Artifact{
		RunID: s.RunID,
		Name:  TextFile,
		Data:  []byte(subject),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageSaveText, err)
	}

	return state.Update{StageSaveText: "Text saved to " + path}, nil
}

// SaveCode asks the Generator which file the code belongs in and writes it
// there.
type SaveCode struct {
	Generator agent.Generator
	Store     artifact.Store
}

var saveCodeProbe = []string{StageEditCode, StageGenerateCode, StageAnswer, KeyQuery}

func (sc *SaveCode) Execute(ctx context.Context, s state.State) (state.Update, error) {
	subject := s.Subject(saveCodeProbe...)
	if subject == "" {
		return state.Update{KeyError: "No request to saving code provided."}, nil
	}

	reply, err := sc.Generator.Generate(ctx, saveCodeInstruction, subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageSaveCode, err)
	}

	name, body := ParseFilename(reply)
	if body == "" && strings.HasPrefix(reply, filenameHeader) {
		body = subject
	}

	path, err := sc.Store.Save(ctx, artifact.Artifact{
		RunID: s.RunID,
		Name:  name,
		Data:  []byte(body),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageSaveCode, err)
	}

	return state.Update{StageSaveCode: "Code saved to " + path}, nil
}

// ParseFilename splits a save_code reply. A first line starting with
// "FILENAME: " names the file and is stripped from the body; names outside
// CodeFiles become DefaultCodeFile. Without the header the whole reply is the
// body.
func ParseFilename(reply string) (name, body string) {
	if !strings.HasPrefix(reply, filenameHeader) {
		return DefaultCodeFile, reply
	}

	header, body, _ := strings.Cut(reply, "\n")
	name = strings.TrimSpace(strings.TrimPrefix(header, filenameHeader))
	if !slices.Contains(CodeFiles, name) {
		name = DefaultCodeFile
	}
	return name, body
}
