package handlers

import (
	"context"

	"finwiz/internal/dto"
	"finwiz/internal/models"
	"finwiz/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Categorizer assigns categories to transaction descriptions.
type Categorizer interface {
	Categorize(ctx context.Context, description string) (*models.Categorization, error)
	CategorizeBatch(ctx context.Context, descriptions []string) ([]models.Categorization, error)
}

// Advisor produces free-text advice. It never fails.
type Advisor interface {
	Advise(ctx context.Context, transactions []models.Transaction, prompt string) string
}

type AIHandler struct {
	categorizer Categorizer
	advisor     Advisor
	logger      *zap.Logger
}

func NewAIHandler(categorizer Categorizer, advisor Advisor, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		categorizer: categorizer,
		advisor:     advisor,
		logger:      logger,
	}
}

// Categorize godoc
// @Summary Categorize a transaction
// @Description Ask the AI model to assign one category and a confidence to a description
// @Tags ai
// @Accept json
// @Produce json
// @Param request body dto.CategorizationRequest true "Description to categorize"
// @Success 200 {object} dto.CategorizationResult
// @Failure 422 {object} dto.ValidationErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /categorize [post]
func (h *AIHandler) Categorize(c *fiber.Ctx) error {
	var req dto.CategorizationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, "Invalid categorization request", err)
	}

	result, err := h.categorizer.Categorize(c.UserContext(), *req.Description)
	if err != nil {
		return respondError(c, h.logger, "Categorization failed", err)
	}

	return c.JSON(dto.CategorizationResult{
		Description: *req.Description,
		Category:    result.Category,
		Confidence:  result.Confidence,
	})
}

// CategorizeBatch godoc
// @Summary Categorize several transactions
// @Description Ask the AI model to categorize a list of descriptions in one call
// @Tags ai
// @Accept json
// @Produce json
// @Param request body dto.BatchCategorizationRequest true "Descriptions to categorize"
// @Success 200 {array} dto.BatchCategorizationItem
// @Failure 422 {object} dto.ValidationErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /categorize/batch [post]
func (h *AIHandler) CategorizeBatch(c *fiber.Ctx) error {
	var req dto.BatchCategorizationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, "Invalid batch categorization request", err)
	}

	results, err := h.categorizer.CategorizeBatch(c.UserContext(), req.Descriptions)
	if err != nil {
		return respondError(c, h.logger, "Batch categorization failed", err)
	}

	items := make([]dto.BatchCategorizationItem, 0, len(results))
	for _, r := range results {
		items = append(items, dto.BatchCategorizationItem{
			Description: r.Description,
			Category:    r.Category,
		})
	}

	return c.JSON(items)
}

// Advise godoc
// @Summary Get financial advice
// @Description Generate AI advice from all stored transactions and a user prompt
// @Tags ai
// @Accept json
// @Produce json
// @Param request body dto.AdviceRequest true "Question for the advisor"
// @Success 200 {object} dto.AdviceResult
// @Failure 422 {object} dto.ValidationErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /advice [post]
func (h *AIHandler) Advise(c *fiber.Ctx) error {
	var req dto.AdviceRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, "Invalid advice request", err)
	}

	session, ok := middleware.Session(c)
	if !ok {
		return respondError(c, h.logger, "Failed to load transactions", errNoSession)
	}

	txs, err := session.ListTransactions(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Failed to load transactions", err)
	}

	history := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		history = append(history, *tx)
	}

	advice := h.advisor.Advise(c.UserContext(), history, *req.Prompt)

	return c.JSON(dto.AdviceResult{Advice: advice})
}
