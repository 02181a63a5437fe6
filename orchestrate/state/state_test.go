package state_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/router/orchestrate/state"
)

func TestNew(t *testing.T) {
	s := state.New(nil)

	if s.RunID == "" {
		t.Error("expected non-empty RunID")
	}
	if s.Observer == nil {
		t.Error("nil observer should be replaced with NoOpObserver")
	}
	if s.Timestamp.IsZero() {
		t.Error("expected non-zero Timestamp")
	}
	if len(s.Data) != 0 {
		t.Errorf("expected empty data, got %v", s.Data)
	}

	if other := state.New(nil); other.RunID == s.RunID {
		t.Error("each state should get its own RunID")
	}
}

func TestState_SetIsImmutable(t *testing.T) {
	s1 := state.New(nil)
	s2 := s1.Set("query", "hello")

	if _, exists := s1.Get("query"); exists {
		t.Error("Set modified the original state")
	}
	if got := s2.String("query"); got != "hello" {
		t.Errorf("String(query) = %q, want %q", got, "hello")
	}
	if s2.RunID != s1.RunID {
		t.Error("Set should preserve RunID")
	}
}

func TestState_Merge(t *testing.T) {
	base := state.New(nil).Set("query", "q").Set("answer", "a")

	merged := base.Merge(state.Update{"answer": "b", "save_text": "ok"})

	want := map[string]any{"query": "q", "answer": "b", "save_text": "ok"}
	if diff := cmp.Diff(want, merged.Data); diff != "" {
		t.Errorf("merged data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"query": "q", "answer": "a"}, base.Data); diff != "" {
		t.Errorf("Merge modified the original (-want +got):\n%s", diff)
	}

	if same := base.Merge(nil); len(same.Data) != 2 {
		t.Errorf("merging nil update changed data: %v", same.Data)
	}
}

func TestState_Subject(t *testing.T) {
	tests := []struct {
		name string
		data state.Update
		keys []string
		want string
	}{
		{name: "first key wins", data: state.Update{"query": "q", "answer": "a"}, keys: []string{"query", "answer"}, want: "q"},
		{name: "empty falls through", data: state.Update{"query": "", "answer": "a"}, keys: []string{"query", "answer"}, want: "a"},
		{name: "blank falls through", data: state.Update{"query": "  \n", "answer": "a"}, keys: []string{"query", "answer"}, want: "a"},
		{name: "non-string ignored", data: state.Update{"query": 42, "answer": "a"}, keys: []string{"query", "answer"}, want: "a"},
		{name: "missing keys", data: state.Update{}, keys: []string{"query"}, want: ""},
		{name: "no keys", data: state.Update{"query": "q"}, keys: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.New(nil).Merge(tt.data)
			if got := s.Subject(tt.keys...); got != tt.want {
				t.Errorf("Subject(%v) = %q, want %q", tt.keys, got, tt.want)
			}
		})
	}
}

func TestState_KeysAndSnapshot(t *testing.T) {
	s := state.New(nil).Merge(state.Update{"save_code": "x", "answer": "y", "query": "z"})

	if diff := cmp.Diff([]string{"answer", "query", "save_code"}, s.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	snap := s.Snapshot()
	snap["answer"] = "changed"
	if s.String("answer") != "y" {
		t.Error("Snapshot should be independent of the state")
	}
}

func TestState_SetCheckpointNode(t *testing.T) {
	s := state.New(nil)
	before := s.Timestamp

	time.Sleep(5 * time.Millisecond)
	s2 := s.SetCheckpointNode("question")

	if s2.CheckpointNode != "question" {
		t.Errorf("CheckpointNode = %q, want %q", s2.CheckpointNode, "question")
	}
	if s.CheckpointNode != "" {
		t.Error("SetCheckpointNode modified the original")
	}
	if !s2.Timestamp.After(before) {
		t.Error("expected Timestamp to advance")
	}
}
