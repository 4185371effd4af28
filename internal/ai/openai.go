// Package ai provides the external text-generation client.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultModel balances quality and cost for text tools.
	DefaultModel = "gpt-4o-mini"

	// OpenAI API endpoint for chat completions
	chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

	// Default timeout for API requests
	defaultTimeout = 60 * time.Second

	// Fixed sampling parameters for all tools.
	temperature = 0.7
	maxTokens   = 2000

	systemPrompt = "You are a helpful assistant that processes text professionally. Provide clear, high-quality results."
)

var (
	// ErrAPIKeyRequired indicates the client was built without a credential.
	ErrAPIKeyRequired = errors.New("openai api key is required")
	// ErrEmptyCompletion indicates the provider returned no choices.
	ErrEmptyCompletion = errors.New("empty completion response")
)

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey string
	model  string
	client *http.Client
}

// Config configures the OpenAI client.
type Config struct {
	// APIKey is required for authentication with OpenAI
	APIKey string

	// Model specifies which chat model to use
	// Default: gpt-4o-mini
	Model string

	// HTTPClient allows custom HTTP client configuration
	// Default: http.Client with 60s timeout
	HTTPClient *http.Client
}

// NewClient creates a new OpenAI chat client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		apiKey: config.APIKey,
		model:  model,
		client: client,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the rendered instruction and returns the generated text.
func (c *Client) Complete(ctx context.Context, instruction string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: instruction},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatCompletionsURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("openai error: status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return parsed.Choices[0].Message.Content, nil
}
