package candidate

import (
	"regexp"
	"strings"
	"time"

	"github.com/hearthledger/hearth/internal/category"
	"github.com/hearthledger/hearth/internal/normalize"
	"github.com/hearthledger/hearth/internal/transaction"
)

// DropReason explains why a raw row never reached review.
type DropReason string

const (
	DropBonus         DropReason = "bonus"
	DropNonPositive   DropReason = "non_positive_amount"
	DropNoDescription DropReason = "no_description"
)

// Dropped is a raw row filtered out before review.
type Dropped struct {
	Raw    Raw
	Reason DropReason
}

// BuildContext carries the per-batch facts candidates are built against.
type BuildContext struct {
	// Epoch is the batch's client timestamp in unix milliseconds.
	Epoch int64
	// Offset is the index given to the first built candidate, so several
	// sources can feed one batch without id collisions.
	Offset     int
	Now        time.Time
	User       string
	YearPolicy normalize.YearPolicy
}

// BuildResult holds the reviewable candidates and everything filtered out.
type BuildResult struct {
	Candidates []Candidate
	Dropped    []Dropped
}

// Builder turns extracted rows into reviewable candidates.
type Builder struct {
	resolver *category.Resolver
}

func NewBuilder(resolver *category.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

var (
	clockPattern  = regexp.MustCompile(`\b\d{1,2}:\d{2}(:\d{2})?\b`)
	routeSplitter = regexp.MustCompile(`\s*(→|->|⟶|—>)\s*`)
	spaces        = regexp.MustCompile(`\s+`)
)

// CleanDescription strips embedded times of day and route suffixes
// ("Taxi Home → Office") from a recognized description.
func CleanDescription(s string) string {
	s = clockPattern.ReplaceAllString(s, " ")

	if loc := routeSplitter.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = s[:loc[0]]
	}

	s = spaces.ReplaceAllString(s, " ")

	return strings.Trim(s, " ,;-")
}

// Build converts raws into candidates. Bonus/cashback rows, rows without a
// description and rows whose amount is not positive are dropped.
func (b *Builder) Build(raws []Raw, bc BuildContext) BuildResult {
	var result BuildResult

	for _, r := range raws {
		desc := CleanDescription(r.Description)
		if desc == "" {
			result.Dropped = append(result.Dropped, Dropped{Raw: r, Reason: DropNoDescription})
			continue
		}

		if category.IsBonus(desc) {
			result.Dropped = append(result.Dropped, Dropped{Raw: r, Reason: DropBonus})
			continue
		}

		amount := normalize.Amount(string(r.Amount))
		if !normalize.Importable(amount) {
			result.Dropped = append(result.Dropped, Dropped{Raw: r, Reason: DropNonPositive})
			continue
		}

		res := b.resolver.Resolve(r.Category, r.SubCategory, desc)

		user := strings.TrimSpace(r.User)
		if user == "" {
			user = bc.User
		}

		result.Candidates = append(result.Candidates, Candidate{
			ID:                  ID(bc.Epoch, bc.Offset+len(result.Candidates)),
			Description:         desc,
			Amount:              amount,
			Category:            res.CategoryID(),
			SubCategory:         res.SubCategoryID(),
			User:                user,
			Type:                parseType(r.Type),
			Priority:            PriorityLow,
			Date:                normalize.Date(r.Date, r.Time, bc.Now, bc.YearPolicy),
			NeedsCategoryReview: !res.IsResolved(),
		})
	}

	return result
}

func parseType(s string) transaction.Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "доход", "ingreso":
		return transaction.TypeIncome
	default:
		return transaction.TypeExpense
	}
}
