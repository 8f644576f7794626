package service

import (
	"context"
	"errors"
	"strings"

	"finwiz/pkg/config"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient talks to any OpenAI-compatible chat completions API. Gemini
// is reached through its compatibility endpoint.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

func NewOpenAIClient(cfg *config.AIConfig, logger *zap.Logger) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	logger.Info("Using OpenAI-compatible model",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.String("base_url", clientConfig.BaseURL),
	)

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   logger,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &UpstreamCallError{Provider: c.provider, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamCallError{Provider: c.provider, Err: errors.New("no choices in response")}
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamCallError{Provider: c.provider, Err: errors.New("empty response text")}
	}

	return text, nil
}

func (c *OpenAIClient) Close() error { return nil }
