package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hearthledger/hearth/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListCategories(ctx context.Context) ([]category.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []category.Category

	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return cats, nil
}

func (s *Store) ListSubCategories(ctx context.Context) ([]category.SubCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category_id, name FROM subcategories ORDER BY category_id, name`)
	if err != nil {
		return nil, fmt.Errorf("listing subcategories: %w", err)
	}
	defer rows.Close()

	var subs []category.SubCategory

	for rows.Next() {
		var sc category.SubCategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name); err != nil {
			return nil, fmt.Errorf("scanning subcategory: %w", err)
		}

		subs = append(subs, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subcategories: %w", err)
	}

	return subs, nil
}
