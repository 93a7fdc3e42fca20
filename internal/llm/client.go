// Package llm talks to an OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
)

// Client is a single-shot chat-completion client.
type Client interface {
	ChatCompletion(ctx context.Context, messages []Message, gen *GenerationParams) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams overrides the configured sampling settings for one call.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api status %d: %s", e.StatusCode, e.Message)
}

// ContextLengthExceeded reports whether the provider rejected the prompt as too long.
func (e *APIError) ContextLengthExceeded() bool {
	return e.Code == "context_length_exceeded" ||
		strings.Contains(strings.ToLower(e.Message), "maximum context length")
}

type openAIClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewClient returns a client for cfg.BaseURL. Timeouts come from the caller's context.
func NewClient(cfg config.LLMConfig) Client {
	return &openAIClient{cfg: cfg, client: &http.Client{}}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *openAIClient) ChatCompletion(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	reqBody := chatRequest{Model: c.cfg.Model, Messages: messages}
	if gen != nil {
		reqBody.Temperature = gen.Temperature
		reqBody.MaxTokens = gen.MaxTokens
	} else {
		t, m := c.cfg.Temperature, c.cfg.MaxTokens
		reqBody.Temperature = &t
		if m > 0 {
			reqBody.MaxTokens = &m
		}
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
			apiErr.Message = er.Error.Message
			apiErr.Type = er.Error.Type
			if er.Error.Code != nil {
				apiErr.Code = fmt.Sprint(er.Error.Code)
			}
		}
		return "", apiErr
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", nil
	}
	return cr.Choices[0].Message.Content, nil
}
