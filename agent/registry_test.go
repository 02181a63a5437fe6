package agent_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/agent/mock"
)

func TestRegisterProvider(t *testing.T) {
	completer := mock.NewCompleter(mock.Step{Reply: "ok"})
	var seen agent.Config

	err := agent.RegisterProvider("registry-test", func(cfg agent.Config) (agent.Completer, error) {
		seen = cfg
		return completer, nil
	})
	if err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}

	if !slices.Contains(agent.Providers(), "registry-test") {
		t.Errorf("Providers() = %v, missing registry-test", agent.Providers())
	}

	got, err := agent.NewCompleter(agent.Config{Provider: "registry-test"})
	if err != nil {
		t.Fatalf("NewCompleter failed: %v", err)
	}
	if got != completer {
		t.Error("NewCompleter returned a different completer")
	}
	if seen.Model != "gemini-2.0-flash" {
		t.Errorf("factory saw Model %q, want merged default", seen.Model)
	}

	a, err := agent.FromConfig(agent.Config{Provider: "registry-test"})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if a == nil {
		t.Fatal("FromConfig returned nil agent")
	}
}

func TestRegisterProvider_Errors(t *testing.T) {
	factory := func(cfg agent.Config) (agent.Completer, error) { return mock.NewCompleter(), nil }

	if err := agent.RegisterProvider("", factory); !errors.Is(err, agent.ErrEmptyProvider) {
		t.Errorf("expected ErrEmptyProvider, got %v", err)
	}
	if err := agent.RegisterProvider("nil-factory", nil); err == nil {
		t.Error("expected error for nil factory")
	}
	if err := agent.RegisterProvider("dup-test", factory); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := agent.RegisterProvider("dup-test", factory); !errors.Is(err, agent.ErrProviderExists) {
		t.Errorf("expected ErrProviderExists, got %v", err)
	}
}

func TestNewCompleter_Unknown(t *testing.T) {
	_, err := agent.NewCompleter(agent.Config{Provider: "does-not-exist"})
	if !errors.Is(err, agent.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewCompleter_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	if err := agent.RegisterProvider("failing-test", func(cfg agent.Config) (agent.Completer, error) {
		return nil, boom
	}); err != nil {
		t.Fatalf("RegisterProvider failed: %v", err)
	}

	if _, err := agent.NewCompleter(agent.Config{Provider: "failing-test"}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped factory error, got %v", err)
	}
}
