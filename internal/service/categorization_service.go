package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finwiz/internal/models"

	"go.uber.org/zap"
)

type CategorizationService struct {
	llm     LLMClient
	timeout time.Duration
	logger  *zap.Logger
}

func NewCategorizationService(llm LLMClient, timeout time.Duration, logger *zap.Logger) *CategorizationService {
	return &CategorizationService{
		llm:     llm,
		timeout: timeout,
		logger:  logger,
	}
}

type categorizationReply struct {
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
}

type batchItemReply struct {
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// Categorize asks the model for one category and a confidence. Failures are
// returned as *UpstreamCallError or *ResponseParseError; no default label is
// ever substituted.
func (s *CategorizationService) Categorize(ctx context.Context, description string) (*models.Categorization, error) {
	reply, err := s.generate(ctx, buildCategorizationPrompt(description))
	if err != nil {
		return nil, err
	}

	payload, ok := ExtractJSON(reply)
	if !ok {
		return nil, &ResponseParseError{Reason: "no JSON payload in reply", Raw: reply}
	}

	var parsed categorizationReply
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &ResponseParseError{Reason: "invalid JSON", Raw: reply, Err: err}
	}

	if parsed.Category == nil || parsed.Confidence == nil {
		return nil, &ResponseParseError{Reason: "reply is missing category or confidence", Raw: reply}
	}

	category, ok := models.ParseCategory(*parsed.Category)
	if !ok {
		return nil, &ResponseParseError{Reason: fmt.Sprintf("unknown category %q", *parsed.Category), Raw: reply}
	}

	confidence := *parsed.Confidence
	if confidence < 0 || confidence > 1 {
		return nil, &ResponseParseError{Reason: fmt.Sprintf("confidence %v is outside [0, 1]", confidence), Raw: reply}
	}

	s.logger.Debug("Transaction categorized",
		zap.String("description", description),
		zap.String("category", category),
		zap.Float64("confidence", confidence),
	)

	return &models.Categorization{
		Description: description,
		Category:    category,
		Confidence:  confidence,
	}, nil
}

// CategorizeBatch labels many descriptions with a single model call. The
// result follows the model's ordering.
func (s *CategorizationService) CategorizeBatch(ctx context.Context, descriptions []string) ([]models.Categorization, error) {
	if len(descriptions) == 0 {
		return []models.Categorization{}, nil
	}

	reply, err := s.generate(ctx, buildBatchCategorizationPrompt(descriptions))
	if err != nil {
		return nil, err
	}

	payload, ok := ExtractJSON(reply)
	if !ok {
		return nil, &ResponseParseError{Reason: "no JSON payload in reply", Raw: reply}
	}

	var items []batchItemReply
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, &ResponseParseError{Reason: "expected a JSON array", Raw: reply, Err: err}
	}

	result := make([]models.Categorization, 0, len(items))
	for i, item := range items {
		if item.Description == nil || item.Category == nil {
			return nil, &ResponseParseError{Reason: fmt.Sprintf("item %d is missing description or category", i), Raw: reply}
		}

		category, ok := models.ParseCategory(*item.Category)
		if !ok {
			return nil, &ResponseParseError{Reason: fmt.Sprintf("item %d has unknown category %q", i, *item.Category), Raw: reply}
		}

		result = append(result, models.Categorization{
			Description: *item.Description,
			Category:    category,
		})
	}

	s.logger.Info("Batch categorization completed",
		zap.Int("requested", len(descriptions)),
		zap.Int("returned", len(result)),
	)

	return result, nil
}

func (s *CategorizationService) generate(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Model call failed", zap.Error(err))
		return "", err
	}

	return sanitizeUTF8(reply), nil
}
