package llm

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

	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "x-ai/grok-4.1-fast"

	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

// Options controls how the OpenRouter client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Referer    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Message is one chat turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls the OpenRouter chat-completions API in JSON mode. Providers
// stay thin HTTP facades; prompt construction belongs to the caller.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	referer    string
	httpClient *http.Client
	logger     *infra.Logger
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

// NewClient constructs an OpenRouter client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		model:      model,
		referer:    opts.Referer,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// CompleteJSON sends the messages with a JSON response format and returns the
// raw JSON document from the first choice. Markdown fences around the payload
// are tolerated; some models wrap JSON mode output anyway.
func (c *Client) CompleteJSON(ctx context.Context, messages []Message) ([]byte, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		content, retryable, err := c.complete(ctx, payload)
		if err == nil {
			return stripJSONFences(content), nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if c.logger != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("llm: transient completion failure")
		}
	}
	return nil, fmt.Errorf("llm: completion failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) complete(ctx context.Context, payload []byte) (content []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, true, fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("llm: status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, fmt.Errorf("llm: decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, false, fmt.Errorf("llm: provider error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, false, errors.New("llm: response has no choices")
	}
	return []byte(parsed.Choices[0].Message.Content), false, nil
}

// stripJSONFences removes a ```json ... ``` wrapper when present.
func stripJSONFences(content []byte) []byte {
	s := strings.TrimSpace(string(content))
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return []byte(strings.TrimSpace(s))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
