package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hearthledger/hearth/internal/candidate"
)

func TestFormatCategory(t *testing.T) {
	tests := []struct {
		name string
		c    candidate.Candidate
		want string
	}{
		{name: "Category only", c: candidate.Candidate{Category: "food"}, want: "food"},
		{name: "With subcategory", c: candidate.Candidate{Category: "food", SubCategory: "food-cafe"}, want: "food / food-cafe"},
		{name: "Needs review", c: candidate.Candidate{Category: "needs-review", NeedsCategoryReview: true}, want: "needs review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCategory(tt.c))
		})
	}
}

func TestFormatDropped(t *testing.T) {
	assert.Empty(t, FormatDropped(nil))

	got := FormatDropped([]candidate.Dropped{
		{Reason: candidate.DropNonPositive},
		{Reason: candidate.DropBonus},
		{Reason: candidate.DropNonPositive},
	})
	assert.Equal(t, "Dropped: 1 bonus, 2 non positive amount", got)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50000.00", FormatAmount(decimal.NewFromInt(50000)))
	assert.Equal(t, "5.50", FormatAmount(decimal.RequireFromString("5.5")))
}
