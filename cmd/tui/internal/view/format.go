package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hearthledger/hearth/internal/candidate"
)

const requestTimeout = 30 * time.Second

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate formats a time.Time into YYYY-MM-DD HH:MM.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// FormatCategory renders "category / subcategory", or a review marker.
func FormatCategory(c candidate.Candidate) string {
	if c.NeedsCategoryReview {
		return "needs review"
	}

	if c.SubCategory == "" {
		return c.Category
	}

	return c.Category + " / " + c.SubCategory
}

// FormatDropped summarises rows filtered out before review.
func FormatDropped(dropped []candidate.Dropped) string {
	if len(dropped) == 0 {
		return ""
	}

	counts := map[candidate.DropReason]int{}
	for _, d := range dropped {
		counts[d.Reason]++
	}

	parts := make([]string, 0, len(counts))
	for _, r := range []candidate.DropReason{candidate.DropBonus, candidate.DropNonPositive, candidate.DropNoDescription} {
		if n := counts[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ReplaceAll(string(r), "_", " ")))
		}
	}

	return "Dropped: " + strings.Join(parts, ", ")
}

// ReqCtx returns a context with a standard timeout for backend calls.
func ReqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
