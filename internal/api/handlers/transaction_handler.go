package handlers

import (
	"errors"

	"finwiz/internal/dto"
	"finwiz/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var errNoSession = errors.New("no storage session attached to request")

type TransactionHandler struct {
	logger *zap.Logger
}

func NewTransactionHandler(logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		logger: logger,
	}
}

// ListTransactions godoc
// @Summary List transactions
// @Description Retrieve all financial transactions
// @Tags transactions
// @Produce json
// @Success 200 {array} dto.TransactionResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	session, ok := middleware.Session(c)
	if !ok {
		return respondError(c, h.logger, "Failed to list transactions", errNoSession)
	}

	txs, err := session.ListTransactions(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Failed to list transactions", err)
	}

	return c.JSON(dto.NewTransactionResponses(txs))
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Store a new financial transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.TransactionCreate true "Transaction"
// @Success 200 {object} dto.TransactionResponse
// @Failure 422 {object} dto.ValidationErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req dto.TransactionCreate
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, "Invalid transaction", err)
	}

	session, ok := middleware.Session(c)
	if !ok {
		return respondError(c, h.logger, "Failed to create transaction", errNoSession)
	}

	tx, err := session.CreateTransaction(c.UserContext(), req.ToModel())
	if err != nil {
		return respondError(c, h.logger, "Failed to create transaction", err)
	}

	h.logger.Info("Transaction created",
		zap.String("request_id", requestID(c)),
		zap.Int64("id", tx.ID),
	)

	return c.JSON(dto.NewTransactionResponse(tx))
}
