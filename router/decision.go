package router

import (
	"context"
	"slices"
	"strings"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/state"
)

const EventClassifyFailed observability.EventType = "router.classify.failed"

// Decision classifies the first non-blank probed value into one of Labels.
// It never fails. An empty subject or a classifier error yields Default; any
// other reply is returned trimmed and lowercased, and a label outside Labels
// is routed to Default by the graph's fallback.
type Decision struct {
	Name       string
	Probe      []string
	Labels     []string
	Default    string
	Classifier agent.Classifier
}

func (d *Decision) Decide(ctx context.Context, s state.State) (string, error) {
	subject := s.Subject(d.Probe...)
	if subject == "" {
		return d.Default, nil
	}

	reply, err := d.Classifier.Classify(ctx, subject, slices.Clone(d.Labels))
	if err != nil {
		observability.Emit(ctx, s.Observer, EventClassifyFailed, observability.LevelWarning, d.Name, map[string]any{
			"node":    d.Name,
			"default": d.Default,
			"run_id":  s.RunID,
			"error":   err,
		})
		return d.Default, nil
	}

	return strings.ToLower(strings.TrimSpace(reply)), nil
}

// Routes maps each label to the stage of the same name.
func (d *Decision) Routes() state.Routes {
	routes := make(state.Routes, len(d.Labels))
	for _, label := range d.Labels {
		routes[label] = label
	}
	return routes
}

// NewTopRouter classifies raw input as question, code or text.
func NewTopRouter(classifier agent.Classifier) *Decision {
	return &Decision{
		Name:       StageRouter,
		Probe:      []string{KeyQuery},
		Labels:     []string{StageQuestion, StageCode, StageText},
		Default:    StageText,
		Classifier: classifier,
	}
}

// NewCodeRouter separates code generation from code editing.
func NewCodeRouter(classifier agent.Classifier) *Decision {
	return &Decision{
		Name:       StageCodeRouter,
		Probe:      []string{KeyQuery, StageAnswer, StageGenerateCode, StageEditCode},
		Labels:     []string{StageGenerateCode, StageEditCode},
		Default:    StageGenerateCode,
		Classifier: classifier,
	}
}

// NewTextRouter separates text generation from text editing.
func NewTextRouter(classifier agent.Classifier) *Decision {
	return &Decision{
		Name:       StageTextRouter,
		Probe:      []string{KeyQuery, StageAnswer, StageGenerateText, StageEditText},
		Labels:     []string{StageGenerateText, StageEditText},
		Default:    StageGenerateText,
		Classifier: classifier,
	}
}
