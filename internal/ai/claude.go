// Package ai contains the language-model clients and the handling of their
// untrusted output.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/yeetorjeet/yeetorjeet/config"
)

const anthropicVersion = "2023-06-01"

// Chat is the minimal contract for a system+user prompt completion. Both the
// question formatter and the synthesizer depend on this rather than a concrete
// client.
type Chat interface {
	Ask(ctx context.Context, prompt, system string) (string, error)
}

// ClaudeClient handles Anthropic messages API operations
type ClaudeClient struct {
	client    *resty.Client
	apiKey    string
	model     string
	maxTokens int
}

// NewClaudeClient creates a new Anthropic client
func NewClaudeClient(cfg *config.Config) *ClaudeClient {
	client := resty.New()
	client.SetBaseURL(cfg.AnthropicBaseURL)
	client.SetTimeout(cfg.LLMTimeout)

	return &ClaudeClient{
		client:    client,
		apiKey:    cfg.AnthropicAPIKey,
		model:     cfg.ClaudeModel,
		maxTokens: cfg.MaxOutputTokens,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Ask sends one user message with an optional system prompt and returns the
// first text block of the reply.
func (c *ClaudeClient) Ask(ctx context.Context, prompt, system string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("Anthropic API key not configured")
	}

	body := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetBody(body).
		Post("/v1/messages")

	if err != nil {
		return "", fmt.Errorf("failed to call Claude: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var result anthropicResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse Claude response: %w", err)
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("empty response from Claude")
}
