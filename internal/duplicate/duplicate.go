// Package duplicate flags likely duplicate transactions in an import batch.
//
// Two passes with different strictness are kept as separate functions.
// Rows matched against already persisted records rarely carry a reliable
// time of day, so CrossBatch settles for amount and calendar day. Rows from
// the same extraction pass do carry consistent times, so WithinBatch also
// demands the same hour and minute.
package duplicate

import (
	"strings"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/normalize"
)

// Pair is one flagged pair. New is the incoming candidate; Other is either a
// persisted record or an earlier sibling from the same batch.
type Pair struct {
	New        candidate.Candidate
	Other      candidate.Candidate
	Similarity int
}

const (
	crossAmountScore   = 40
	crossDateScore     = 40
	crossCategoryScore = 10
	crossWordsScore    = 10

	withinAmountScore   = 30
	withinDateScore     = 30
	withinTimeScore     = 30
	withinCategoryScore = 5
	withinWordsScore    = 5

	maxScore = 100
)

// CrossBatch compares every incoming candidate with every existing record and
// flags pairs with the same rounded amount on the same calendar day,
// regardless of description.
func CrossBatch(newBatch, existing []candidate.Candidate) []Pair {
	var pairs []Pair

	for _, n := range newBatch {
		for _, e := range existing {
			if n.ID != "" && n.ID == e.ID {
				continue
			}

			if !sameAmount(n, e) || !normalize.SameDay(n.Date, e.Date) {
				continue
			}

			score := crossAmountScore + crossDateScore
			if n.Category == e.Category {
				score += crossCategoryScore
			}

			score += WordOverlap(n.Description, e.Description) * crossWordsScore / 100

			pairs = append(pairs, Pair{New: n, Other: e, Similarity: min(score, maxScore)})
		}
	}

	return pairs
}

// WithinBatch flags pairs inside one batch that share rounded amount,
// calendar day and hour:minute. The later candidate is the New side, so
// skipping duplicates keeps the first occurrence.
func WithinBatch(batch []candidate.Candidate) []Pair {
	var pairs []Pair

	for j := 1; j < len(batch); j++ {
		for i := 0; i < j; i++ {
			a, b := batch[i], batch[j]

			if !sameAmount(a, b) || !normalize.SameDay(a.Date, b.Date) || !normalize.SameMinute(a.Date, b.Date) {
				continue
			}

			score := withinAmountScore + withinDateScore + withinTimeScore
			if a.Category == b.Category {
				score += withinCategoryScore
			}

			score += WordOverlap(a.Description, b.Description) * withinWordsScore / 100

			pairs = append(pairs, Pair{New: b, Other: a, Similarity: min(score, maxScore)})
		}
	}

	return pairs
}

// Detect runs both passes for a batch about to be submitted: the batch
// against persisted records, every candidate against its earlier siblings
// using the cross-batch rule, and the within-batch pass. Pairs are not
// deduplicated across passes.
func Detect(batch, persisted []candidate.Candidate) []Pair {
	pairs := CrossBatch(batch, persisted)

	for i := 1; i < len(batch); i++ {
		pairs = append(pairs, CrossBatch(batch[i:i+1], batch[:i])...)
	}

	return append(pairs, WithinBatch(batch)...)
}

// WordOverlap is the Jaccard similarity of the lower-cased whitespace tokens
// of a and b, scaled to 0-100. An empty union scores 0.
func WordOverlap(a, b string) int {
	ta := tokens(a)
	tb := tokens(b)

	union := make(map[string]struct{}, len(ta)+len(tb))
	for t := range ta {
		union[t] = struct{}{}
	}

	for t := range tb {
		union[t] = struct{}{}
	}

	if len(union) == 0 {
		return 0
	}

	shared := 0

	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}

	return shared * 100 / len(union)
}

// NewSideIDs returns the distinct ids appearing on the New side of pairs.
func NewSideIDs(pairs []Pair) map[string]struct{} {
	ids := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		ids[p.New.ID] = struct{}{}
	}

	return ids
}

// IsExisting reports whether the Other side of p is a persisted record
// rather than a sibling from the same batch.
func IsExisting(p Pair, persistedIDs map[string]struct{}) bool {
	_, ok := persistedIDs[p.Other.ID]
	return ok
}

func sameAmount(a, b candidate.Candidate) bool {
	return normalize.RoundedUnits(a.Amount) == normalize.RoundedUnits(b.Amount)
}

func tokens(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))

	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}

	return set
}
