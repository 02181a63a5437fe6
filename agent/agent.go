// Package agent defines the language model ports the router consumes and an
// Agent that implements them over a provider Completer.
//
// Classifier and Generator are the only capabilities stages depend on. Every
// call made through Agent is bounded by Config.Timeout, retried for transient
// provider failures, and reported as ErrPortUnavailable when it cannot
// complete.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/tailored-agentic-units/router/core/protocol"
	"github.com/tailored-agentic-units/router/observability"
)

// Classifier picks one label for a subject. The reply is raw model output;
// callers normalize and validate it.
type Classifier interface {
	Classify(ctx context.Context, subject string, labels []string) (string, error)
}

// Generator produces text for a subject following an instruction template.
type Generator interface {
	Generate(ctx context.Context, instruction, subject string) (string, error)
}

// Completer is a raw model call: messages in, text out.
type Completer interface {
	Complete(ctx context.Context, messages []protocol.Message) (string, error)
}

// Agent implements Classifier and Generator over a Completer.
type Agent struct {
	completer Completer
	cfg       Config
	observer  observability.Observer
	labels    map[string]string
	templates sync.Map
}

// Option customizes an Agent.
type Option func(*Agent)

// WithObserver receives retry and failure events.
func WithObserver(observer observability.Observer) Option {
	return func(a *Agent) {
		a.observer = observer
	}
}

// WithLabelDescription adds or replaces the description the classification
// prompt shows for label.
func WithLabelDescription(label, description string) Option {
	return func(a *Agent) {
		a.labels[label] = description
	}
}

// New wraps completer. Zero fields of cfg take their defaults.
func New(completer Completer, cfg Config, opts ...Option) (*Agent, error) {
	if completer == nil {
		return nil, fmt.Errorf("agent: completer cannot be nil")
	}

	merged := DefaultConfig()
	merged.Merge(&cfg)

	a := &Agent{
		completer: completer,
		cfg:       merged,
		observer:  observability.NoOpObserver{},
		labels:    DefaultLabelDescriptions(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Config returns the effective configuration.
func (a *Agent) Config() Config {
	return a.cfg
}

// Classify asks the model to choose one of labels for subject.
func (a *Agent) Classify(ctx context.Context, subject string, labels []string) (string, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("agent: no labels to classify into")
	}

	messages := protocol.Prompt(a.classificationPrompt(labels), "Input: "+subject)
	reply, err := a.call(ctx, "classify", messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (a *Agent) classificationPrompt(labels []string) string {
	var sb strings.Builder
	sb.WriteString("You decide how a user's request should be handled.\n\n")
	sb.WriteString("Choose exactly one label:\n")
	for _, label := range labels {
		if desc, ok := a.labels[label]; ok {
			fmt.Fprintf(&sb, "- %s: %s\n", label, desc)
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", label)
	}
	fmt.Fprintf(&sb, "\nRespond ONLY with one of: %s. No quotes, no explanations.", strings.Join(labels, ", "))
	return sb.String()
}

// Generate renders instruction as a text/template with {{.Subject}} bound to
// subject and sends the result to the model.
func (a *Agent) Generate(ctx context.Context, instruction, subject string) (string, error) {
	prompt, err := a.render(instruction, subject)
	if err != nil {
		return "", err
	}
	return a.call(ctx, "generate", protocol.Prompt("", prompt))
}

func (a *Agent) render(instruction, subject string) (string, error) {
	var tmpl *template.Template
	if cached, ok := a.templates.Load(instruction); ok {
		tmpl = cached.(*template.Template)
	} else {
		parsed, err := template.New("instruction").Option("missingkey=error").Parse(instruction)
		if err != nil {
			return "", fmt.Errorf("agent: invalid instruction template: %w", err)
		}
		a.templates.Store(instruction, parsed)
		tmpl = parsed
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Subject string }{Subject: subject}); err != nil {
		return "", fmt.Errorf("agent: render instruction: %w", err)
	}
	return buf.String(), nil
}
