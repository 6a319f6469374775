package candidate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hearthledger/hearth/internal/transaction"
)

// Payload is the JSON shape of a candidate exchanged between the operator
// client and the backend.
type Payload struct {
	ID                  string           `json:"id,omitempty"`
	Description         string           `json:"description"`
	Amount              float64          `json:"amount"`
	Category            string           `json:"category"`
	SubCategory         string           `json:"subCategory,omitempty"`
	User                string           `json:"user,omitempty"`
	Type                transaction.Type `json:"type"`
	Priority            string           `json:"priority,omitempty"`
	Date                time.Time        `json:"date"`
	NeedsCategoryReview bool             `json:"needsCategoryReview,omitempty"`
}

func (c Candidate) Payload() Payload {
	return Payload{
		ID:                  c.ID,
		Description:         c.Description,
		Amount:              c.Amount.InexactFloat64(),
		Category:            c.Category,
		SubCategory:         c.SubCategory,
		User:                c.User,
		Type:                c.Type,
		Priority:            c.Priority,
		Date:                c.Date,
		NeedsCategoryReview: c.NeedsCategoryReview,
	}
}

func (p Payload) Candidate() Candidate {
	return Candidate{
		ID:                  p.ID,
		Description:         p.Description,
		Amount:              decimal.NewFromFloat(p.Amount),
		Category:            p.Category,
		SubCategory:         p.SubCategory,
		User:                p.User,
		Type:                p.Type,
		Priority:            p.Priority,
		Date:                p.Date,
		NeedsCategoryReview: p.NeedsCategoryReview,
	}
}

// Payloads converts cs for the wire.
func Payloads(cs []Candidate) []Payload {
	out := make([]Payload, len(cs))
	for i, c := range cs {
		out[i] = c.Payload()
	}

	return out
}
