// Package mock provides scripted Classifier, Generator and Completer doubles
// for tests and offline runs.
package mock

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/router/core/protocol"
)

// ClassifyCall records one Classify invocation.
type ClassifyCall struct {
	Subject string
	Labels  []string
}

// Classifier answers each call with the first preferred reply that appears in
// the offered labels. When none does it answers Unmatched.
type Classifier struct {
	mu        sync.Mutex
	preferred []string
	unmatched string
	err       error
	calls     []ClassifyCall
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithUnmatched sets the reply for calls where no preferred label is offered.
func WithUnmatched(reply string) ClassifierOption {
	return func(c *Classifier) {
		c.unmatched = reply
	}
}

// WithClassifyError makes every call fail with err.
func WithClassifyError(err error) ClassifierOption {
	return func(c *Classifier) {
		c.err = err
	}
}

// NewClassifier scripts replies across decisions. With preferred
// []string{"code", "edit_code"} it routes the top-level decision to code and the code decision to
// edit_code.
func NewClassifier(preferred []string, opts ...ClassifierOption) *Classifier {
	c := &Classifier{preferred: preferred}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Classify(ctx context.Context, subject string, labels []string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, ClassifyCall{Subject: subject, Labels: slices.Clone(labels)})

	if c.err != nil {
		return "", c.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, reply := range c.preferred {
		if slices.Contains(labels, strings.ToLower(strings.TrimSpace(reply))) {
			return reply, nil
		}
	}
	return c.unmatched, nil
}

// Calls returns a copy of the recorded calls.
func (c *Classifier) Calls() []ClassifyCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// GenerateCall records one Generate invocation.
type GenerateCall struct {
	Instruction string
	Subject     string
}

type rule struct {
	contains string
	reply    string
}

// Generator returns canned replies chosen by instruction content.
type Generator struct {
	mu    sync.Mutex
	rules []rule
	reply string
	echo  bool
	err   error
	calls []GenerateCall
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithReply sets the reply used when no rule matches.
func WithReply(reply string) GeneratorOption {
	return func(g *Generator) {
		g.reply = reply
	}
}

// WithReplyWhen answers reply for instructions containing substr. Rules are
// checked in registration order.
func WithReplyWhen(substr, reply string) GeneratorOption {
	return func(g *Generator) {
		g.rules = append(g.rules, rule{contains: substr, reply: reply})
	}
}

// WithEcho answers with the subject when no rule matches.
func WithEcho() GeneratorOption {
	return func(g *Generator) {
		g.echo = true
	}
}

// WithGenerateError makes every call fail with err.
func WithGenerateError(err error) GeneratorOption {
	return func(g *Generator) {
		g.err = err
	}
}

func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, instruction, subject string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, GenerateCall{Instruction: instruction, Subject: subject})

	if g.err != nil {
		return "", g.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, r := range g.rules {
		if strings.Contains(instruction, r.contains) {
			return r.reply, nil
		}
	}
	if g.echo {
		return subject, nil
	}
	return g.reply, nil
}

// Calls returns a copy of the recorded calls.
func (g *Generator) Calls() []GenerateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.calls)
}

// Completer replays a script of results. Each call consumes one step; the last
// step repeats once the script runs out.
type Completer struct {
	mu    sync.Mutex
	steps []Step
	calls [][]protocol.Message
	block bool
}

// Step is one scripted Complete result.
type Step struct {
	Reply string
	Err   error
}

// NewCompleter replays steps in order.
func NewCompleter(steps ...Step) *Completer {
	return &Completer{steps: steps}
}

// NewBlockingCompleter waits for the call context to end and returns its
// error.
func NewBlockingCompleter() *Completer {
	return &Completer{block: true}
}

func (c *Completer) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, slices.Clone(messages))
	index := len(c.calls) - 1
	block := c.block
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	if len(c.steps) == 0 {
		return "", nil
	}

	step := c.steps[min(index, len(c.steps)-1)]
	return step.Reply, step.Err
}

// Calls returns the messages of every call so far.
func (c *Completer) Calls() [][]protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}
