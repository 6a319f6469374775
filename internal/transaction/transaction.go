package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction represents a persisted household transaction.
type Transaction struct {
	ID          uuid.UUID
	Amount      decimal.Decimal // Amount in currency units
	Type        Type
	Category    string
	SubCategory string
	User        string
	Priority    string
	Description string
	Date        time.Time
	// ImportTimestamp groups the rows persisted by one bulk import. Nil for
	// transactions created one at a time.
	ImportTimestamp *int64
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
}
