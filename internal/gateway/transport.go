// Package gateway implements component F, the planner LLM gateway: a
// narrow, stateless facade offering requirements refinement, summarisation,
// commit-message generation, and the Fresh-state-only discovery exchange.
// Its transport is a direct HTTP client against the configured provider's
// Messages-style API, modeled on fyrsmithlabs-contextd's
// extraction/llm.go anthropicSummarizer: a *http.Client, a
// golang.org/x/time/rate limiter, manual JSON marshal/unmarshal of request
// and response envelopes, and error classification into
// internal/errors.LLMError's Recoverable/NonRecoverable split. A
// provider-agnostic Client interface keeps the gateway itself decoupled
// from any one vendor's SDK, since providers are named "<type>.<name>" in
// configuration and resolved at runtime.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// Message is one turn of a Messages-style conversation.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is the provider-agnostic request envelope every Client
// implementation must accept.
type CompletionRequest struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// ToolNames restricts the tool set offered to the model. Empty means no
	// tools. The planner tool set (prompts.PlannerToolSet) always excludes
	// todo_write.
	ToolNames []string
}

// CompletionResponse is the provider-agnostic response envelope.
type CompletionResponse struct {
	Text string
	// ToolCalls holds any raw tool-call JSON blocks the model emitted, for
	// callers that need to inspect them (the UI writer's tool-call header
	// formatting, or feedback extraction for the coach/player loop).
	ToolCalls []ToolCall
}

// ToolCall is a single tool invocation the model requested.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Client is the provider-agnostic transport interface. Concrete
// implementations exist per provider type (currently "anthropic"); the
// Gateway holds one Client resolved from the configured "<type>.<name>"
// provider reference.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Default transport tuning, mirrored from fyrsmithlabs-contextd's
// extraction/llm.go summarizer client.
const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 4096
	// defaultRateLimit throttles outgoing gateway calls client-side, ahead
	// of the provider's own 429s, per SPEC_FULL.md §4.D.
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// AnthropicClient implements Client against Anthropic's Messages API.
type AnthropicClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// AnthropicClientOption configures an AnthropicClient.
type AnthropicClientOption func(*AnthropicClient)

// WithModel overrides the default model name.
func WithModel(model string) AnthropicClientOption {
	return func(c *AnthropicClient) { c.model = model }
}

// WithBaseURL overrides the default API base URL, for testing against a
// local httptest.Server.
func WithBaseURL(url string) AnthropicClientOption {
	return func(c *AnthropicClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default *http.Client.
func WithHTTPClient(hc *http.Client) AnthropicClientOption {
	return func(c *AnthropicClient) { c.httpClient = hc }
}

// NewAnthropicClient creates a Client for the given API key.
func NewAnthropicClient(apiKey string, opts ...AnthropicClientOption) *AnthropicClient {
	c := &AnthropicClient{
		model:      defaultModel,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name string `json:"name"`
}

type anthropicResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text,omitempty"`
		Name  string          `json:"name,omitempty"`
		Input json.RawMessage `json:"input,omitempty"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicErrorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends req to the Anthropic Messages API and returns the
// assembled text plus any tool calls the model made.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return CompletionResponse{}, plannererrors.NewLLMError("rate limiter wait", err).WithProvider("anthropic")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	payload := anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    make([]anthropicMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	for _, name := range req.ToolNames {
		payload.Tools = append(payload.Tools, anthropicTool{Name: name})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return CompletionResponse{}, plannererrors.NewLLMError("marshal request", err).WithProvider("anthropic")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, plannererrors.NewLLMError("build request", err).WithProvider("anthropic")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, plannererrors.NewLLMError("read response body", err).
			WithProvider("anthropic").WithKind(plannererrors.RecoverableNetworkError)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return CompletionResponse{}, rateLimitedError(resp, respBody)
	}
	if resp.StatusCode >= 500 {
		return CompletionResponse{}, plannererrors.NewLLMError(
			fmt.Sprintf("server error (%d)", resp.StatusCode), fmt.Errorf("%s", respBody)).
			WithProvider("anthropic").WithKind(plannererrors.RecoverableServerError)
	}
	if resp.StatusCode != http.StatusOK {
		var envelope anthropicErrorEnvelope
		message := string(respBody)
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		return CompletionResponse{}, plannererrors.NewLLMError(
			fmt.Sprintf("API error (%d): %s", resp.StatusCode, message), nil).WithProvider("anthropic")
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return CompletionResponse{}, plannererrors.NewLLMError("parse response", err).WithProvider("anthropic")
	}

	var out CompletionResponse
	var text strings.Builder
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: block.Name, Arguments: block.Input})
		}
	}
	out.Text = text.String()
	return out, nil
}

// classifyTransportError distinguishes a request timeout (Recoverable) from
// a generic network failure (also Recoverable, different variant), per
// SPEC_FULL.md §4.D's error-classification table.
func classifyTransportError(err error) error {
	kind := plannererrors.RecoverableNetworkError
	if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
		kind = plannererrors.RecoverableTimeout
	}
	return plannererrors.NewLLMError("transport failure", err).WithProvider("anthropic").WithKind(kind)
}

// rateLimitedError builds a RecoverableRateLimit LLMError, honoring a
// server-supplied Retry-After header when present per §4.D.
func rateLimitedError(resp *http.Response, body []byte) error {
	llmErr := plannererrors.NewLLMError("rate limited (429)", fmt.Errorf("%s", body)).
		WithProvider("anthropic").WithKind(plannererrors.RecoverableRateLimit)

	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			llmErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return llmErr
}
