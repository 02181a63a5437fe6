package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/agent/mock"
	"github.com/tailored-agentic-units/router/core/protocol"
)

var (
	_ agent.Classifier = (*mock.Classifier)(nil)
	_ agent.Generator  = (*mock.Generator)(nil)
	_ agent.Completer  = (*mock.Completer)(nil)
)

func TestClassifierPicksOfferedLabel(t *testing.T) {
	c := mock.NewClassifier([]string{"code", "edit_code"}, mock.WithUnmatched("maybe"))
	ctx := context.Background()

	got, err := c.Classify(ctx, "fix it", []string{"question", "code", "text"})
	require.NoError(t, err)
	assert.Equal(t, "code", got)

	got, err = c.Classify(ctx, "fix it", []string{"generate_code", "edit_code"})
	require.NoError(t, err)
	assert.Equal(t, "edit_code", got)

	got, err = c.Classify(ctx, "fix it", []string{"generate_text", "edit_text"})
	require.NoError(t, err)
	assert.Equal(t, "maybe", got)

	calls := c.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"generate_code", "edit_code"}, calls[1].Labels)
}

func TestClassifierError(t *testing.T) {
	boom := errors.New("boom")
	c := mock.NewClassifier(nil, mock.WithClassifyError(boom))

	_, err := c.Classify(context.Background(), "x", []string{"a"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, c.Calls(), 1)
}

func TestGeneratorRules(t *testing.T) {
	g := mock.NewGenerator(
		mock.WithReplyWhen("FILENAME", "FILENAME: output.rs\nfn main() {}"),
		mock.WithReply("default"),
	)
	ctx := context.Background()

	got, err := g.Generate(ctx, "reply with FILENAME: first", "x")
	require.NoError(t, err)
	assert.Equal(t, "FILENAME: output.rs\nfn main() {}", got)

	got, err = g.Generate(ctx, "answer this", "x")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	echo := mock.NewGenerator(mock.WithEcho())
	got, err = echo.Generate(ctx, "anything", "subject")
	require.NoError(t, err)
	assert.Equal(t, "subject", got)
}

func TestGeneratorHonoursContext(t *testing.T) {
	g := mock.NewGenerator(mock.WithReply("x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "i", "s")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompleterScript(t *testing.T) {
	boom := errors.New("boom")
	c := mock.NewCompleter(mock.Step{Err: boom}, mock.Step{Reply: "second"})
	ctx := context.Background()
	msgs := protocol.Prompt("", "hi")

	_, err := c.Complete(ctx, msgs)
	assert.ErrorIs(t, err, boom)

	for range 2 {
		got, err := c.Complete(ctx, msgs)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	}
	assert.Len(t, c.Calls(), 3)
}
