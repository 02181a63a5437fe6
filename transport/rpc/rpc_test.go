package rpc_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/agent/mock"
	"github.com/tailored-agentic-units/router/artifact"
	"github.com/tailored-agentic-units/router/kernel"
	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/transport/rpc"
)

type invokerFunc func(ctx context.Context, input string) (*kernel.Result, error)

func (f invokerFunc) Invoke(ctx context.Context, input string) (*kernel.Result, error) {
	return f(ctx, input)
}

func serve(t *testing.T, invoker kernel.Invoker) *rpc.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(rpc.NewHandler(invoker))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return rpc.NewClient(srv.Client(), srv.URL)
}

func TestInvoke_RoundTrip(t *testing.T) {
	store := artifact.NewMemoryStore(false)
	k, err := kernel.New(nil,
		kernel.WithClassifier(mock.NewClassifier([]string{"question"})),
		kernel.WithGenerator(mock.NewGenerator(mock.WithReply("4"))),
		kernel.WithArtifactStore(store),
		kernel.WithObserver(observability.NoOpObserver{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { k.Close() })

	client := serve(t, k)
	result, err := client.Invoke(context.Background(), "What is 2+2?")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "What is 2+2?", result.Query)
	assert.Equal(t, "4", result.Answer)
	assert.Empty(t, result.Error)
	assert.Equal(t, "4", result.State["answer"])
}

func TestInvoke_EmptyInput(t *testing.T) {
	called := false
	client := serve(t, invokerFunc(func(ctx context.Context, input string) (*kernel.Result, error) {
		called = true
		return &kernel.Result{}, nil
	}))

	for _, input := range []string{"", "   "} {
		_, err := client.Invoke(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	}
	assert.False(t, called)
}

func TestInvoke_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"port unavailable", fmt.Errorf("%w: generate after 3 attempt(s)", agent.ErrPortUnavailable), connect.CodeUnavailable},
		{"deadline", context.DeadlineExceeded, connect.CodeDeadlineExceeded},
		{"other", errors.New("boom"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := serve(t, invokerFunc(func(ctx context.Context, input string) (*kernel.Result, error) {
				return nil, tt.err
			}))

			_, err := client.Invoke(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tt.want, connect.CodeOf(err))
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, connect.CodeInvalidArgument, rpc.Code(kernel.ErrEmptyInput))
	assert.Equal(t, connect.CodeCanceled, rpc.Code(fmt.Errorf("run: %w", context.Canceled)))
	assert.Equal(t, connect.CodeUnavailable, rpc.Code(agent.ErrPortUnavailable))
}
