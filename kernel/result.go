package kernel

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/tailored-agentic-units/router/orchestrate/state"
)

// Result is the outcome of one run. Known state keys are decoded into typed
// fields; State holds the complete final data.
type Result struct {
	RunID        string         `mapstructure:"-" json:"run_id"`
	Query        string         `mapstructure:"query" json:"query"`
	Answer       string         `mapstructure:"answer" json:"answer,omitempty"`
	GenerateCode string         `mapstructure:"generate_code" json:"generate_code,omitempty"`
	EditCode     string         `mapstructure:"edit_code" json:"edit_code,omitempty"`
	GenerateText string         `mapstructure:"generate_text" json:"generate_text,omitempty"`
	EditText     string         `mapstructure:"edit_text" json:"edit_text,omitempty"`
	SaveCode     string         `mapstructure:"save_code" json:"save_code,omitempty"`
	SaveText     string         `mapstructure:"save_text" json:"save_text,omitempty"`
	Error        string         `mapstructure:"error" json:"error,omitempty"`
	State        map[string]any `mapstructure:"-" json:"state"`
}

func newResult(final state.State) (*Result, error) {
	r := &Result{
		RunID: final.RunID,
		State: final.Snapshot(),
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           r,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(final.Data); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	return r, nil
}

// Output returns the most refined content the run produced: edited output
// over generated output over an answer.
func (r *Result) Output() string {
	for _, v := range []string{r.EditCode, r.GenerateCode, r.EditText, r.GenerateText, r.Answer} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Saved returns the save confirmation, if the run wrote a file.
func (r *Result) Saved() string {
	if r.SaveCode != "" {
		return r.SaveCode
	}
	return r.SaveText
}
