package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finwiz/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// temperature keeps replies close to the requested format.
const temperature = 0.3

// LLMClient is the text-in/text-out view of the upstream generative model.
// Implementations return *UpstreamCallError on failure.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// NewLLMClient builds the client for cfg.Provider. It is created once at
// startup and shared read-only by all requests.
func NewLLMClient(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	switch cfg.Provider {
	case config.ProviderGemini, config.ProviderOpenAI:
		return NewOpenAIClient(cfg, logger), nil
	case config.ProviderGigaChat:
		client, err := NewGigaChatClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// GigaChatClient talks to GigaChat through gigago.
type GigaChatClient struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatClient(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (*GigaChatClient, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.GigaChat.Scope),
	}

	if cfg.GigaChat.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.Temperature = temperature

	logger.Info("Using GigaChat model", zap.String("model", cfg.Model))

	return &GigaChatClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (c *GigaChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := c.model.Generate(ctx, messages)
	if err != nil {
		return "", &UpstreamCallError{Provider: config.ProviderGigaChat, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamCallError{Provider: config.ProviderGigaChat, Err: errors.New("no choices in response")}
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamCallError{Provider: config.ProviderGigaChat, Err: errors.New("empty response text")}
	}

	return text, nil
}

func (c *GigaChatClient) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
