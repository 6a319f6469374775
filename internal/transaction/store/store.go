package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hearthledger/hearth/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner and returns a populated Transaction.
// Expected column order: id, amount, type, category, subcategory, user_id, priority, description,
// date, import_timestamp, created_at, updated_at, deleted_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	var subCategory, user, priority sql.NullString

	var importTS sql.NullInt64

	if err := s.Scan(
		&tx.ID, &tx.Amount, &typeStr, &tx.Category, &subCategory, &user, &priority, &tx.Description,
		&tx.Date, &importTS,
		&tx.CreatedAt, &tx.UpdatedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.SubCategory = subCategory.String
	tx.User = user.String
	tx.Priority = priority.String

	if importTS.Valid {
		tx.ImportTimestamp = &importTS.Int64
	}

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.amount, t.type, t.category, t.subcategory, t.user_id, t.priority, t.description,
	t.date, t.import_timestamp, t.created_at, t.updated_at, t.deleted_at
`

const insertTransaction = `
	INSERT INTO transactions (amount, type, category, subcategory, user_id, priority, description, date, import_timestamp, created_at, updated_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

func insertArgs(tx *transaction.Transaction) []any {
	return []any{
		tx.Amount,
		tx.Type,
		tx.Category,
		tx.SubCategory,
		tx.User,
		tx.Priority,
		tx.Description,
		tx.Date,
		tx.ImportTimestamp,
	}
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	err := s.db.QueryRowContext(ctx, insertTransaction, insertArgs(tx)...).
		Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND t.category = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.ImportTimestamp != nil {
		query += fmt.Sprintf(" AND t.import_timestamp = $%d", argIdx)

		args = append(args, *filter.ImportTimestamp)
		argIdx++
	}

	query += " ORDER BY t.date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $1, type = $2, category = $3, subcategory = NULLIF($4, ''), user_id = NULLIF($5, ''),
			priority = NULLIF($6, ''), description = $7, date = $8, updated_at = NOW()
		WHERE id = $9 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Amount,
		tx.Type,
		tx.Category,
		tx.SubCategory,
		tx.User,
		tx.Priority,
		tx.Description,
		tx.Date,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

// DeleteImport soft-deletes every live row of one bulk import.
func (s *Store) DeleteImport(ctx context.Context, importTimestamp int64) (int64, error) {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE import_timestamp = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, importTimestamp)
	if err != nil {
		return 0, fmt.Errorf("deleting import: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}

	return removed, nil
}

// importLockKey is the advisory lock every bulk import holds while it issues
// its timestamp and inserts its rows.
const importLockKey int64 = 0x6865617274680001

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding the import advisory lock, so bulk
// imports are serialized.
func (s *Store) BeginImport(ctx context.Context) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) LastImportTimestamp(ctx context.Context) (int64, error) {
	var last int64
	if err := itx.tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(import_timestamp), 0) FROM transactions").Scan(&last); err != nil {
		return 0, fmt.Errorf("reading last import timestamp: %w", err)
	}

	return last, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	stmt, err := itx.tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if err := stmt.QueryRowContext(ctx, insertArgs(tx)...).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}
