package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

var ErrNotConfigured = errors.New("text generation api key not configured")

// Tool is a function the model may ask the caller to run.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Result holds either generated text or a requested tool call.
type Result struct {
	Text     string
	ToolCall *ToolCall
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type message struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type completionRequest struct {
	Model    string     `json:"model"`
	Messages []message  `json:"messages"`
	Tools    []toolSpec `json:"tools,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Generate returns the model's text answer to prompt given the system
// instruction and earlier turns.
func (c *Client) Generate(ctx context.Context, system, prompt string, history []domain.ChatMessage) (string, error) {
	res, err := c.GenerateWithTools(ctx, system, prompt, history, nil)
	if err != nil {
		return "", err
	}
	if res.Text == "" {
		return "", domain.ErrNoText
	}
	return res.Text, nil
}

func (c *Client) GenerateWithTools(ctx context.Context, system, prompt string, history []domain.ChatMessage, tools []Tool) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req := completionRequest{Model: c.model, Messages: buildMessages(system, prompt, history)}
	for _, t := range tools {
		req.Tools = append(req.Tools, toolSpec{
			Type:     "function",
			Function: functionSpec{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	t0 := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.ExternalDurationMs.WithLabelValues("genai").Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.ExternalFailTotal.WithLabelValues("genai").Inc()
		return nil, fmt.Errorf("call text generation api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ExternalFailTotal.WithLabelValues("genai").Inc()
		return nil, fmt.Errorf("text generation api error (status %d): %s", resp.StatusCode, string(raw))
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, domain.ErrNoText
	}

	msg := out.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		fn := msg.ToolCalls[0].Function
		return &Result{ToolCall: &ToolCall{Name: fn.Name, Arguments: json.RawMessage(fn.Arguments)}}, nil
	}
	if msg.Content == nil || *msg.Content == "" {
		return nil, domain.ErrNoText
	}
	return &Result{Text: *msg.Content}, nil
}

func buildMessages(system, prompt string, history []domain.ChatMessage) []message {
	msgs := make([]message, 0, len(history)+2)
	if system != "" {
		msgs = append(msgs, message{Role: "system", Content: strPtr(system)})
	}
	for _, h := range history {
		role := "user"
		if h.Role == domain.RoleModel {
			role = "assistant"
		}
		msgs = append(msgs, message{Role: role, Content: strPtr(h.Content)})
	}
	return append(msgs, message{Role: "user", Content: strPtr(prompt)})
}

func strPtr(s string) *string { return &s }
