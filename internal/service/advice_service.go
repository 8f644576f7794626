package service

import (
	"context"
	"strings"
	"time"

	"finwiz/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const uncategorizedLabel = "Uncategorized"

type AdviceService struct {
	llm            LLMClient
	timeout        time.Duration
	currencySymbol string
	logger         *zap.Logger
}

func NewAdviceService(llm LLMClient, timeout time.Duration, currencySymbol string, logger *zap.Logger) *AdviceService {
	return &AdviceService{
		llm:            llm,
		timeout:        timeout,
		currencySymbol: currencySymbol,
		logger:         logger,
	}
}

// Advise answers prompt in the context of transactions. It never fails: any
// upstream problem yields a fixed apology text.
func (s *AdviceService) Advise(ctx context.Context, transactions []models.Transaction, prompt string) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	fullPrompt := buildAdvicePrompt(s.Itemize(transactions), prompt)

	reply, err := s.llm.Generate(ctx, fullPrompt)
	if err != nil {
		s.logger.Error("Failed to generate advice, returning fallback",
			zap.Int("transactions", len(transactions)),
			zap.Error(err),
		)
		return adviceFallback
	}

	advice := strings.TrimSpace(sanitizeUTF8(reply))
	if advice == "" {
		s.logger.Warn("Model returned empty advice, returning fallback")
		return adviceFallback
	}

	return advice
}

// Itemize renders one line per transaction:
// "- 2024-01-02: AMAZON.COM ($-42.50) -> Shopping".
func (s *AdviceService) Itemize(transactions []models.Transaction) string {
	lines := make([]string, 0, len(transactions))
	for _, t := range transactions {
		category := uncategorizedLabel
		if t.Category != nil && *t.Category != "" {
			category = *t.Category
		}

		amount := decimal.NewFromFloat(t.Amount).StringFixed(2)

		lines = append(lines, "- "+t.Date.String()+": "+t.Description+
			" ("+s.currencySymbol+amount+") -> "+category)
	}
	return strings.Join(lines, "\n")
}
