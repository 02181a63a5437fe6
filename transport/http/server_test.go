package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/agent/mock"
	"github.com/tailored-agentic-units/router/artifact"
	"github.com/tailored-agentic-units/router/kernel"
	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/state"
	transport "github.com/tailored-agentic-units/router/transport/http"
	"github.com/tailored-agentic-units/router/transport/rpc"
)

type invokerFunc func(ctx context.Context, input string) (*kernel.Result, error)

func (f invokerFunc) Invoke(ctx context.Context, input string) (*kernel.Result, error) {
	return f(ctx, input)
}

func newKernel(t *testing.T, store artifact.Store) *kernel.Kernel {
	t.Helper()
	k, err := kernel.New(nil,
		kernel.WithClassifier(mock.NewClassifier([]string{"code", "generate_code"})),
		kernel.WithGenerator(mock.NewGenerator(
			mock.WithReplyWhen("FILENAME", "FILENAME: output.go\npackage main"),
			mock.WithReply("package main"),
		)),
		kernel.WithArtifactStore(store),
		kernel.WithObserver(observability.NoOpObserver{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { k.Close() })
	return k
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/invoke", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInvoke(t *testing.T) {
	store := artifact.NewMemoryStore(false)
	k := newKernel(t, store)
	h := transport.NewHandler(k, k.Graph(), transport.WithGatherer(prometheus.NewRegistry()))

	w := post(t, h, `{"input": "Write a Go program"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result kernel.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "Write a Go program", result.Query)
	assert.Equal(t, "package main", result.GenerateCode)
	assert.Equal(t, "Code saved to output.go", result.SaveCode)
	assert.Empty(t, result.Error)

	data, err := store.Load(context.Background(), "output.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", string(data))
}

func TestInvoke_BadRequest(t *testing.T) {
	called := false
	h := transport.NewHandler(invokerFunc(func(ctx context.Context, input string) (*kernel.Result, error) {
		called = true
		return &kernel.Result{}, nil
	}), nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed", `{"input":`},
		{"missing input", `{}`},
		{"blank input", `{"input": "  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp transport.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
	assert.False(t, called)
}

func TestInvoke_ServerErrorsHideDetail(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			"port unavailable",
			&state.ExecutionError{
				NodeName: "generate_code",
				Err:      fmt.Errorf("%w: generate after 3 attempt(s): gemini: API key not valid", agent.ErrPortUnavailable),
			},
			http.StatusServiceUnavailable,
		},
		{"internal", errors.New("save_code: disk full at /srv/out"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := transport.NewHandler(invokerFunc(func(ctx context.Context, input string) (*kernel.Result, error) {
				return nil, tt.err
			}), nil)

			w := post(t, h, `{"input": "hello"}`)
			assert.Equal(t, tt.status, w.Code)

			var resp transport.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, http.StatusText(tt.status), resp.Error)
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{kernel.ErrEmptyInput, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", agent.ErrPortUnavailable), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, transport.Status(tt.err), tt.err.Error())
	}
}

func TestGraph(t *testing.T) {
	k := newKernel(t, artifact.NewMemoryStore(false))
	h := transport.NewHandler(k, k.Graph())

	req := httptest.NewRequest(http.MethodGet, "/v1/graph", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp transport.GraphResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "router", resp.Entry)
	assert.Len(t, resp.Stages, 13)
	assert.Equal(t, k.Graph().Edges(), resp.Edges)
	assert.True(t, strings.HasPrefix(resp.Mermaid, "graph TD\n"))
}

func TestGraph_Unavailable(t *testing.T) {
	h := transport.NewHandler(invokerFunc(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/graph", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetricsObserver(reg)
	require.NoError(t, err)

	h := transport.NewHandler(invokerFunc(nil), nil, transport.WithGatherer(reg))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConnectMount(t *testing.T) {
	k := newKernel(t, artifact.NewMemoryStore(false))
	srv := httptest.NewServer(transport.NewHandler(k, k.Graph()))
	t.Cleanup(srv.Close)

	client := rpc.NewClient(srv.Client(), srv.URL)
	result, err := client.Invoke(context.Background(), "Write a Go program")
	require.NoError(t, err)
	assert.Equal(t, "package main", result.GenerateCode)

	_, err = client.Invoke(context.Background(), "")
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}
