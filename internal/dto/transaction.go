package dto

import "finwiz/internal/models"

// TransactionCreate is the body of POST /transactions. Pointer fields let
// validation tell a missing field from a zero value.
type TransactionCreate struct {
	Date        *models.Date `json:"date" validate:"required" swaggertype:"string" example:"2024-01-05"`
	Description *string      `json:"description" validate:"required" example:"AMAZON.COM"`
	Amount      *float64     `json:"amount" validate:"required" example:"-42.5"`
	Category    *string      `json:"category" example:"Shopping"`
}

func (r *TransactionCreate) ToModel() models.NewTransaction {
	return models.NewTransaction{
		Date:        *r.Date,
		Description: *r.Description,
		Amount:      *r.Amount,
		Category:    r.Category,
	}
}

type TransactionResponse struct {
	ID          int64       `json:"id" example:"1"`
	Date        models.Date `json:"date" swaggertype:"string" example:"2024-01-05"`
	Description string      `json:"description" example:"AMAZON.COM"`
	Amount      float64     `json:"amount" example:"-42.5"`
	Category    *string     `json:"category" example:"Shopping"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Date:        tx.Date,
		Description: tx.Description,
		Amount:      tx.Amount,
		Category:    tx.Category,
	}
}

func NewTransactionResponses(txs []*models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionResponse(tx))
	}
	return out
}
