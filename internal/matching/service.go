// Package matching remembers how the family files recurring descriptions so
// imported rows the category mapper could not place are filed the same way
// next time.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/category"
)

var ErrInvalidRule = errors.New("rule needs a pattern and a category")

// Rule files any description containing Pattern, case-insensitively, under
// CategoryID and SubCategoryID.
type Rule struct {
	Pattern       string `json:"pattern"`
	CategoryID    string `json:"categoryId"`
	SubCategoryID string `json:"subCategoryId,omitempty"`
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the longest matching rule, or nil when none matches.
	FindMatch(ctx context.Context, description string) (*Rule, error)
	CreateRule(ctx context.Context, rule Rule) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the rule that applies to description, or nil.
func (s *Service) Suggest(ctx context.Context, description string) (*Rule, error) {
	return s.repo.FindMatch(ctx, description)
}

// Learn remembers a new rule.
func (s *Service) Learn(ctx context.Context, rule Rule) error {
	rule.Pattern = strings.TrimSpace(rule.Pattern)
	rule.CategoryID = strings.TrimSpace(rule.CategoryID)
	rule.SubCategoryID = strings.TrimSpace(rule.SubCategoryID)

	if rule.Pattern == "" || rule.CategoryID == "" || rule.CategoryID == category.NeedsReviewID {
		return ErrInvalidRule
	}

	return s.repo.CreateRule(ctx, rule)
}

// Apply files candidates flagged for category review using learned rules.
// Candidates the mapper already resolved are left alone.
func (s *Service) Apply(ctx context.Context, cs []candidate.Candidate) ([]candidate.Candidate, error) {
	out := make([]candidate.Candidate, len(cs))
	copy(out, cs)

	for i, c := range out {
		if !c.NeedsCategoryReview {
			continue
		}

		rule, err := s.repo.FindMatch(ctx, c.Description)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", c.Description, err)
		}

		if rule == nil {
			continue
		}

		out[i].Category = rule.CategoryID
		out[i].SubCategory = rule.SubCategoryID
		out[i].NeedsCategoryReview = false
	}

	return out, nil
}
