package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hearthledger/hearth/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, description string) (*matching.Rule, error) {
	query := `
		SELECT raw_pattern, category_id, COALESCE(subcategory_id, '')
		FROM category_rules
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var rule matching.Rule

	err := s.db.QueryRowContext(ctx, query, description).Scan(&rule.Pattern, &rule.CategoryID, &rule.SubCategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return &rule, nil
}

func (s *Store) CreateRule(ctx context.Context, rule matching.Rule) error {
	query := `
		INSERT INTO category_rules (raw_pattern, category_id, subcategory_id, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NOW())
	`

	_, err := s.db.ExecContext(ctx, query, rule.Pattern, rule.CategoryID, rule.SubCategoryID)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}
