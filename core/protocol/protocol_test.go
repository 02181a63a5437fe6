package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/router/core/protocol"
)

func TestPrompt(t *testing.T) {
	tests := []struct {
		name   string
		system string
		want   []protocol.Message
	}{
		{
			name:   "with system",
			system: "classify",
			want: []protocol.Message{
				{Role: protocol.RoleSystem, Content: "classify"},
				{Role: protocol.RoleUser, Content: "hello"},
			},
		},
		{
			name:   "blank system omitted",
			system: "  ",
			want:   []protocol.Message{{Role: protocol.RoleUser, Content: "hello"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := protocol.Prompt(tt.system, "hello")
			if len(got) != len(tt.want) {
				t.Fatalf("got %d messages, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("message %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplit(t *testing.T) {
	messages := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "one"),
		protocol.NewMessage(protocol.RoleUser, "question"),
		protocol.NewMessage(protocol.RoleSystem, "two"),
		protocol.NewMessage(protocol.RoleAssistant, "answer"),
	}

	system, turns := protocol.Split(messages)
	if system != "one\n\ntwo" {
		t.Errorf("system = %q", system)
	}
	if len(turns) != 2 || turns[0].Role != protocol.RoleUser || turns[1].Role != protocol.RoleAssistant {
		t.Errorf("turns = %+v", turns)
	}
}

func TestValidate(t *testing.T) {
	if err := protocol.Validate(nil); err == nil {
		t.Error("expected error for empty prompt")
	}
	if err := protocol.Validate([]protocol.Message{{Role: "tool", Content: "x"}}); err == nil {
		t.Error("expected error for unknown role")
	}
	if err := protocol.Validate(protocol.Prompt("s", "u")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMessage_JSON(t *testing.T) {
	data, err := json.Marshal(protocol.NewMessage(protocol.RoleUser, "hi"))
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != `{"role":"user","content":"hi"}` {
		t.Errorf("json = %s", data)
	}
}
