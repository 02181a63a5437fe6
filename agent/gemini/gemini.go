// Package gemini is a Completer for the Gemini generateContent API. Importing
// it registers the "gemini" provider with the agent package.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/core/protocol"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

var (
	ErrMissingAPIKey = errors.New("gemini: GEMINI_API_KEY or GOOGLE_API_KEY is required")
	ErrEmptyResponse = errors.New("gemini returned no text")
)

func init() {
	if err := agent.RegisterProvider("gemini", func(cfg agent.Config) (agent.Completer, error) {
		return New(cfg)
	}); err != nil {
		panic(err)
	}
}

// Client calls generateContent for a single model.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature *float64
	http        *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New builds a Client from cfg. The API key falls back to GEMINI_API_KEY and
// then GOOGLE_API_KEY; the base URL to GEMINI_BASE_URL.
func New(cfg agent.Config, opts ...Option) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("GEMINI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = agent.DefaultConfig().Model
	}

	c := &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: cfg.Temperature,
		http:        newHTTPClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Model returns the model the client targets.
func (c *Client) Model() string {
	return c.model
}

// Complete sends messages and returns the concatenated text of the first
// candidate.
func (c *Client) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	if err := protocol.Validate(messages); err != nil {
		return "", err
	}

	body, err := json.Marshal(c.buildRequest(messages))
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errorFromResponse(resp)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}

	return decoded.text()
}

func (c *Client) buildRequest(messages []protocol.Message) generateRequest {
	system, turns := protocol.Split(messages)

	var req generateRequest
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	for _, msg := range turns {
		role := "user"
		if msg.Role == protocol.RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, content{
			Role:  role,
			Parts: []part{{Text: msg.Content}},
		})
	}

	if c.temperature != nil {
		req.GenerationConfig = &generationConfig{Temperature: c.temperature}
	}

	return req
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func (r generateResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: blocked (%s)", ErrEmptyResponse, r.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
