package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"github.com/yeetorjeet/yeetorjeet/config"
)

// perplexitySystemPrompt keeps the research answers terse enough to embed in
// the synthesis prompt without blowing its token budget.
const perplexitySystemPrompt = "Be precise and concise. Format your response in a clear, structured way."

// PerplexityClient handles web-grounded research questions. Perplexity exposes
// an OpenAI-compatible chat API, so the client rides on the openai chat model
// component pointed at their base URL.
type PerplexityClient struct {
	model *openai.ChatModel
}

// NewPerplexityClient creates a new Perplexity client
func NewPerplexityClient(ctx context.Context, cfg *config.Config) (*PerplexityClient, error) {
	if cfg.PerplexityAPIKey == "" {
		return nil, fmt.Errorf("Perplexity API key not configured")
	}

	temperature := float32(0.2)
	topP := float32(0.9)
	frequencyPenalty := float32(1)
	presencePenalty := float32(0)
	maxTokens := cfg.MaxOutputTokens

	model, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:          cfg.PerplexityBaseURL,
		APIKey:           cfg.PerplexityAPIKey,
		Model:            cfg.PerplexityModel,
		Timeout:          cfg.LLMTimeout,
		MaxTokens:        &maxTokens,
		Temperature:      &temperature,
		TopP:             &topP,
		FrequencyPenalty: &frequencyPenalty,
		PresencePenalty:  &presencePenalty,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Perplexity model: %w", err)
	}

	return &PerplexityClient{model: model}, nil
}

// Ask sends a single stateless question. Each call is independent; no
// conversation state is carried between questions.
func (p *PerplexityClient) Ask(ctx context.Context, question string) (string, error) {
	msg, err := p.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(perplexitySystemPrompt),
		schema.UserMessage(question),
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Perplexity: %w", err)
	}

	if msg == nil || msg.Content == "" {
		return "", fmt.Errorf("empty response from Perplexity")
	}

	return msg.Content, nil
}
