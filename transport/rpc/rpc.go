// Package rpc exposes the router as a connect unary RPC. Requests carry the
// raw input as a google.protobuf.StringValue and responses carry the Result
// as a google.protobuf.Struct, so no generated code is needed on either side.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/kernel"
)

const (
	ServiceName = "router.v1.RouterService"

	// InvokeProcedure is the full procedure path of the Invoke RPC.
	InvokeProcedure = "/" + ServiceName + "/Invoke"
)

// NewHandler returns the mount path and handler serving Invoke.
func NewHandler(invoker kernel.Invoker, opts ...connect.HandlerOption) (string, http.Handler) {
	h := connect.NewUnaryHandler(InvokeProcedure, invokeFunc(invoker), opts...)
	return "/" + ServiceName + "/", h
}

func invokeFunc(invoker kernel.Invoker) func(context.Context, *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
	return func(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
		input := req.Msg.GetValue()
		if strings.TrimSpace(input) == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, kernel.ErrEmptyInput)
		}

		result, err := invoker.Invoke(ctx, input)
		if err != nil {
			return nil, connect.NewError(Code(err), err)
		}

		msg, err := toStruct(result)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(msg), nil
	}
}

// Code maps a router error onto a connect status code.
func Code(err error) connect.Code {
	switch {
	case errors.Is(err, kernel.ErrEmptyInput):
		return connect.CodeInvalidArgument
	case errors.Is(err, agent.ErrPortUnavailable):
		return connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	default:
		return connect.CodeInternal
	}
}

func toStruct(result *kernel.Result) (*structpb.Struct, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return structpb.NewStruct(fields)
}

func fromStruct(msg *structpb.Struct) (*kernel.Result, error) {
	data, err := json.Marshal(msg.AsMap())
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	var result kernel.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}

// Client calls a remote router over connect. It satisfies kernel.Invoker.
type Client struct {
	invoke *connect.Client[wrapperspb.StringValue, structpb.Struct]
}

// NewClient creates a Client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		invoke: connect.NewClient[wrapperspb.StringValue, structpb.Struct](
			httpClient,
			strings.TrimRight(baseURL, "/")+InvokeProcedure,
			opts...,
		),
	}
}

// Invoke sends input to the remote router. Server errors come back as
// *connect.Error.
func (c *Client) Invoke(ctx context.Context, input string) (*kernel.Result, error) {
	resp, err := c.invoke.CallUnary(ctx, connect.NewRequest(wrapperspb.String(input)))
	if err != nil {
		return nil, err
	}
	return fromStruct(resp.Msg)
}
