package candidate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hearthledger/hearth/internal/transaction"
)

// PriorityLow is assigned to every bulk-imported row.
const PriorityLow = "low"

// Raw is one transaction as extracted by a source: the recognition service,
// a pasted text line, a JSON file or a bank CSV export.
type Raw struct {
	Description string    `json:"description"`
	Amount      RawAmount `json:"amount"`
	Category    string    `json:"category"`
	SubCategory string    `json:"subCategory,omitempty"`
	Date        string    `json:"date,omitempty"`
	Time        string    `json:"time,omitempty"`
	Type        string    `json:"type,omitempty"`
	User        string    `json:"user,omitempty"`
}

// RawAmount accepts both JSON numbers and strings.
type RawAmount string

func (a *RawAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}

		*a = RawAmount(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	*a = RawAmount(n.String())

	return nil
}

// Candidate is an unsaved transaction pending user review.
type Candidate struct {
	ID                  string
	Description         string
	Amount              decimal.Decimal
	Category            string
	SubCategory         string
	User                string
	Type                transaction.Type
	Priority            string
	Date                time.Time
	NeedsCategoryReview bool
}

// ID builds the client-side id of the index-th candidate of a batch.
func ID(epoch int64, index int) string {
	return fmt.Sprintf("bulk-%d-%d", epoch, index)
}

// IDs returns the ids of cs in order.
func IDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}

	return ids
}

// DateRange returns the earliest and latest dates in cs. cs must not be empty.
func DateRange(cs []Candidate) (time.Time, time.Time) {
	minDate := cs[0].Date
	maxDate := cs[0].Date

	for _, c := range cs[1:] {
		if c.Date.Before(minDate) {
			minDate = c.Date
		}

		if c.Date.After(maxDate) {
			maxDate = c.Date
		}
	}

	return minDate, maxDate
}

// FromTransaction views a persisted transaction as a candidate so it can be
// compared against incoming rows.
func FromTransaction(tx *transaction.Transaction) Candidate {
	return Candidate{
		ID:          tx.ID.String(),
		Description: tx.Description,
		Amount:      tx.Amount,
		Category:    tx.Category,
		SubCategory: tx.SubCategory,
		User:        tx.User,
		Type:        tx.Type,
		Priority:    tx.Priority,
		Date:        tx.Date,
	}
}

// ToCreateParams converts reviewed candidates into persistence params.
func ToCreateParams(cs []Candidate) []transaction.CreateParams {
	params := make([]transaction.CreateParams, len(cs))
	for i, c := range cs {
		params[i] = transaction.CreateParams{
			Amount:      c.Amount,
			Type:        c.Type,
			Category:    c.Category,
			SubCategory: c.SubCategory,
			User:        c.User,
			Priority:    c.Priority,
			Description: c.Description,
			Date:        c.Date,
		}
	}

	return params
}
