package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/agent/mock"
	"github.com/tailored-agentic-units/router/core/protocol"
	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/config"
)

type retryableErr struct{ retry bool }

func (e retryableErr) Error() string   { return "provider failure" }
func (e retryableErr) Retryable() bool { return e.retry }

type recorder struct {
	events []observability.Event
}

func (r *recorder) OnEvent(ctx context.Context, e observability.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) count(typ observability.EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func fastConfig(retries int) agent.Config {
	return agent.Config{
		Timeout:      config.Duration(time.Second),
		MaxRetries:   retries,
		RetryBackoff: config.Duration(time.Millisecond),
	}
}

func newAgent(t *testing.T, completer agent.Completer, cfg agent.Config, opts ...agent.Option) *agent.Agent {
	t.Helper()
	a, err := agent.New(completer, cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func TestNew_NilCompleter(t *testing.T) {
	if _, err := agent.New(nil, agent.Config{}); err == nil {
		t.Fatal("expected error for nil completer")
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	a := newAgent(t, mock.NewCompleter(), agent.Config{Model: "gemini-1.5-pro"})

	cfg := a.Config()
	if cfg.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Timeout.Std() != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
}

func TestClassify_PromptListsLabels(t *testing.T) {
	completer := mock.NewCompleter(mock.Step{Reply: "  Code \n"})
	a := newAgent(t, completer, fastConfig(0))

	got, err := a.Classify(context.Background(), "write a sort", []string{"question", "code", "text"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got != "Code" {
		t.Errorf("Classify = %q, want trimmed reply %q", got, "Code")
	}

	calls := completer.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}

	system, turns := protocol.Split(calls[0])
	for _, want := range []string{"- question:", "- code:", "- text:", "one of: question, code, text"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q:\n%s", want, system)
		}
	}
	if len(turns) != 1 || turns[0].Content != "Input: write a sort" {
		t.Errorf("unexpected turns: %+v", turns)
	}
}

func TestClassify_CustomLabelDescription(t *testing.T) {
	completer := mock.NewCompleter(mock.Step{Reply: "poem"})
	a := newAgent(t, completer, fastConfig(0),
		agent.WithLabelDescription("poem", "the input asks for verse"))

	if _, err := a.Classify(context.Background(), "x", []string{"poem", "other"}); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	system, _ := protocol.Split(completer.Calls()[0])
	if !strings.Contains(system, "- poem: the input asks for verse") {
		t.Errorf("custom description missing:\n%s", system)
	}
	if !strings.Contains(system, "- other\n") {
		t.Errorf("undescribed label missing:\n%s", system)
	}
}

func TestClassify_NoLabels(t *testing.T) {
	a := newAgent(t, mock.NewCompleter(), fastConfig(0))
	if _, err := a.Classify(context.Background(), "x", nil); err == nil {
		t.Fatal("expected error for empty label set")
	}
}

func TestGenerate_RendersSubject(t *testing.T) {
	completer := mock.NewCompleter(mock.Step{Reply: "fn main() {}"})
	a := newAgent(t, completer, fastConfig(0))

	got, err := a.Generate(context.Background(), "Write code for: {{.Subject}}", "a hello world in rust")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "fn main() {}" {
		t.Errorf("Generate = %q", got)
	}

	msgs := completer.Calls()[0]
	if len(msgs) != 1 || msgs[0].Role != protocol.RoleUser {
		t.Fatalf("expected a single user message, got %+v", msgs)
	}
	if msgs[0].Content != "Write code for: a hello world in rust" {
		t.Errorf("rendered prompt = %q", msgs[0].Content)
	}
}

func TestGenerate_SubjectIsNotReparsed(t *testing.T) {
	completer := mock.NewCompleter(mock.Step{Reply: "ok"})
	a := newAgent(t, completer, fastConfig(0))

	if _, err := a.Generate(context.Background(), "Q: {{.Subject}}", "{{.Other}}"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := completer.Calls()[0][0].Content; got != "Q: {{.Other}}" {
		t.Errorf("rendered prompt = %q", got)
	}
}

func TestGenerate_InvalidTemplate(t *testing.T) {
	completer := mock.NewCompleter()
	a := newAgent(t, completer, fastConfig(0))

	if _, err := a.Generate(context.Background(), "{{.Subject", "x"); err == nil {
		t.Fatal("expected template error")
	}
	if len(completer.Calls()) != 0 {
		t.Error("completer should not be called for an invalid template")
	}
}

func TestCall_RetriesRetryableErrors(t *testing.T) {
	completer := mock.NewCompleter(
		mock.Step{Err: retryableErr{retry: true}},
		mock.Step{Err: retryableErr{retry: true}},
		mock.Step{Reply: "recovered"},
	)
	rec := &recorder{}
	a := newAgent(t, completer, fastConfig(2), agent.WithObserver(rec))

	got, err := a.Generate(context.Background(), "{{.Subject}}", "x")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "recovered" {
		t.Errorf("Generate = %q", got)
	}
	if n := len(completer.Calls()); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
	if n := rec.count(agent.EventCallRetry); n != 2 {
		t.Errorf("expected 2 retry events, got %d", n)
	}
}

func TestCall_FailureIsPortUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		steps    []mock.Step
		retries  int
		attempts int
	}{
		{
			name:     "permanent error is not retried",
			steps:    []mock.Step{{Err: retryableErr{retry: false}}},
			retries:  3,
			attempts: 1,
		},
		{
			name:     "plain error is not retried",
			steps:    []mock.Step{{Err: errors.New("boom")}},
			retries:  3,
			attempts: 1,
		},
		{
			name:     "retries exhausted",
			steps:    []mock.Step{{Err: retryableErr{retry: true}}},
			retries:  2,
			attempts: 3,
		},
		{
			name:     "retries disabled",
			steps:    []mock.Step{{Err: retryableErr{retry: true}}},
			retries:  -1,
			attempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := mock.NewCompleter(tt.steps...)
			rec := &recorder{}
			a := newAgent(t, completer, fastConfig(tt.retries), agent.WithObserver(rec))

			_, err := a.Classify(context.Background(), "x", []string{"a"})
			if !errors.Is(err, agent.ErrPortUnavailable) {
				t.Fatalf("expected ErrPortUnavailable, got %v", err)
			}
			if n := len(completer.Calls()); n != tt.attempts {
				t.Errorf("attempts = %d, want %d", n, tt.attempts)
			}
			if n := rec.count(agent.EventCallFailure); n != 1 {
				t.Errorf("expected 1 failure event, got %d", n)
			}
		})
	}
}

func TestCall_TimeoutIsPortUnavailable(t *testing.T) {
	cfg := fastConfig(-1)
	cfg.Timeout = config.Duration(20 * time.Millisecond)
	a := newAgent(t, mock.NewBlockingCompleter(), cfg)

	start := time.Now()
	_, err := a.Generate(context.Background(), "{{.Subject}}", "x")
	if !errors.Is(err, agent.ErrPortUnavailable) {
		t.Fatalf("expected ErrPortUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestCall_TimeoutsAreRetried(t *testing.T) {
	cfg := fastConfig(1)
	cfg.Timeout = config.Duration(10 * time.Millisecond)
	completer := mock.NewBlockingCompleter()
	a := newAgent(t, completer, cfg)

	_, err := a.Generate(context.Background(), "{{.Subject}}", "x")
	if !errors.Is(err, agent.ErrPortUnavailable) {
		t.Fatalf("expected ErrPortUnavailable, got %v", err)
	}
	if n := len(completer.Calls()); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
}

func TestCall_CancelledContextStopsRetries(t *testing.T) {
	completer := mock.NewCompleter(mock.Step{Err: retryableErr{retry: true}})
	a := newAgent(t, completer, fastConfig(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Generate(ctx, "{{.Subject}}", "x")
	if !errors.Is(err, agent.ErrPortUnavailable) {
		t.Fatalf("expected ErrPortUnavailable, got %v", err)
	}
	if n := len(completer.Calls()); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestConfig_Merge(t *testing.T) {
	temp := 0.2
	cfg := agent.DefaultConfig()
	cfg.Merge(&agent.Config{
		Model:       "gemini-1.5-flash",
		APIKey:      "key",
		Timeout:     config.Duration(5 * time.Second),
		Temperature: &temp,
	})

	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Model != "gemini-1.5-flash" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.APIKey != "key" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Timeout.Std() != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want unchanged 2", cfg.MaxRetries)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"opt in", retryableErr{retry: true}, true},
		{"opt out", retryableErr{retry: false}, false},
		{"wrapped opt in", errors.Join(errors.New("ctx"), retryableErr{retry: true}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agent.Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable = %v, want %v", got, tt.want)
			}
		})
	}
}
