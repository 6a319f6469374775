package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/hearthledger/hearth/internal/transaction"
)

type transactionResponse struct {
	ID              uuid.UUID        `json:"id"`
	Amount          float64          `json:"amount"`
	Type            transaction.Type `json:"type"`
	Category        string           `json:"category"`
	SubCategory     string           `json:"sub_category,omitempty"`
	User            string           `json:"user,omitempty"`
	Priority        string           `json:"priority,omitempty"`
	Description     string           `json:"description"`
	Date            time.Time        `json:"date"`
	ImportTimestamp *int64           `json:"import_timestamp,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID,
		Amount:          tx.Amount.InexactFloat64(),
		Type:            tx.Type,
		Category:        tx.Category,
		SubCategory:     tx.SubCategory,
		User:            tx.User,
		Priority:        tx.Priority,
		Description:     tx.Description,
		Date:            tx.Date,
		ImportTimestamp: tx.ImportTimestamp,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
