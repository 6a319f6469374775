package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context) (ImportTx, error)
	DeleteImport(ctx context.Context, importTimestamp int64) (int64, error)
}

// ImportTx is one bulk import in progress. Only one is open at a time.
type ImportTx interface {
	// LastImportTimestamp returns the highest import timestamp ever issued,
	// rolled back batches included, or 0 when there is none.
	LastImportTimestamp(ctx context.Context) (int64, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateParams struct {
	Amount      decimal.Decimal
	Type        Type
	Category    string
	SubCategory string
	User        string
	Priority    string
	Description string
	Date        time.Time
}

type ListFilter struct {
	Type            *Type
	Category        *string
	StartDate       *time.Time
	EndDate         *time.Time
	ImportTimestamp *int64
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := newTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	return s.repo.UpdateTransaction(ctx, tx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// BulkResult is the outcome of persisting one import batch.
type BulkResult struct {
	ImportTimestamp int64
	Transactions    []*Transaction
}

// BulkCreate persists params as one batch and tags every row with a freshly
// issued import timestamp, the handle later used by RollbackImport. The
// timestamp is the current unix millisecond, bumped past the last one issued
// so no two batches ever share it.
func (s *Service) BulkCreate(ctx context.Context, params []CreateParams) (*BulkResult, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("bulk create: no transactions")
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	last, err := itx.LastImportTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("last import timestamp: %w", err)
	}

	ts := max(s.now().UnixMilli(), last+1)

	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(p)
		txs[i].ImportTimestamp = &ts
	}

	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &BulkResult{ImportTimestamp: ts, Transactions: txs}, nil
}

// RollbackImport deletes every live row tagged with importTimestamp and
// reports how many were removed. An unknown or already rolled back timestamp
// removes nothing and is not an error.
func (s *Service) RollbackImport(ctx context.Context, importTimestamp int64) (int64, error) {
	removed, err := s.repo.DeleteImport(ctx, importTimestamp)
	if err != nil {
		return 0, fmt.Errorf("rollback import %d: %w", importTimestamp, err)
	}

	return removed, nil
}

func newTransaction(p CreateParams) *Transaction {
	return &Transaction{
		Amount:      p.Amount,
		Type:        p.Type,
		Category:    p.Category,
		SubCategory: p.SubCategory,
		User:        p.User,
		Priority:    p.Priority,
		Description: p.Description,
		Date:        p.Date,
	}
}
