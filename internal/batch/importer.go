// Package batch submits reviewed candidates to the ledger as one atomic
// batch and rolls the most recent batch back.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/duplicate"
	"github.com/hearthledger/hearth/internal/handle"
)

var (
	ErrAllDuplicates    = errors.New("every selected candidate is a duplicate")
	ErrNoPriorBatch     = errors.New("no previous import to roll back")
	ErrSessionClosed    = errors.New("batch session is closed")
	ErrNothingSelected  = errors.New("no candidates selected")
	ErrNotReviewing     = errors.New("batch has no pending duplicate review")
	ErrNotSubmitted     = errors.New("batch was not submitted")
	ErrUnknownCandidate = errors.New("unknown candidate")
)

// Decision is the user's answer to a duplicate warning.
type Decision int

const (
	DecisionCancel Decision = iota
	DecisionSkip
	DecisionForce
)

func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionForce:
		return "force"
	default:
		return "cancel"
	}
}

// Submission is the backend's acknowledgement of a persisted batch.
type Submission struct {
	ImportTimestamp int64
	Count           int
}

//go:generate mockgen -source=importer.go -destination=backend_mock.go -package=batch

// Backend is the ledger service a batch is submitted to.
type Backend interface {
	SubmitBulk(ctx context.Context, cs []candidate.Candidate) (*Submission, error)
	RollbackBulk(ctx context.Context, importTimestamp int64) (int64, error)
	ListExisting(ctx context.Context, from, to time.Time) ([]candidate.Candidate, error)
}

// SubmitResult reports the outcome of Submit or Resolve. When Submitted is
// false, Duplicates holds the pairs awaiting a Decision. HandleErr is set when
// the batch went through but its handle could not be stored: the batch can
// then only be rolled back from this session, not by RollbackLast.
type SubmitResult struct {
	Submitted       bool
	ImportTimestamp int64
	Count           int
	Skipped         int
	Duplicates      []duplicate.Pair
	HandleErr       error
}

type Importer struct {
	backend Backend
	handles handle.Store
	logger  *slog.Logger
}

func NewImporter(backend Backend, handles handle.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Importer{backend: backend, handles: handles, logger: logger}
}

// Submit checks the selected candidates for duplicates against persisted
// rows in the same date window and against each other. With no duplicates
// the batch is submitted; otherwise the session moves to reviewing and the
// pairs are returned.
func (i *Importer) Submit(ctx context.Context, s *Session) (*SubmitResult, error) {
	if err := s.mutable(); err != nil {
		return nil, err
	}

	selected := s.Selected()
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}

	minDate, maxDate := candidate.DateRange(selected)
	from := startOfDay(minDate)
	to := startOfDay(maxDate).AddDate(0, 0, 1)

	existing, err := i.backend.ListExisting(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list existing transactions: %w", err)
	}

	pairs := duplicate.Detect(selected, existing)
	if len(pairs) > 0 {
		s.state = StateReviewing
		s.duplicates = pairs

		i.logger.Info("duplicates found", "batch", s.epoch, "pairs", len(pairs), "selected", len(selected))

		return &SubmitResult{Duplicates: pairs}, nil
	}

	return i.submit(ctx, s, selected, 0)
}

// Resolve applies the user's decision to a batch in review.
func (i *Importer) Resolve(ctx context.Context, s *Session, d Decision) (*SubmitResult, error) {
	if err := s.mutable(); err != nil {
		return nil, err
	}

	if s.state != StateReviewing {
		return nil, ErrNotReviewing
	}

	selected := s.Selected()

	switch d {
	case DecisionSkip:
		drop := duplicate.NewSideIDs(s.duplicates)

		remaining := make([]candidate.Candidate, 0, len(selected))
		for _, c := range selected {
			if _, ok := drop[c.ID]; !ok {
				remaining = append(remaining, c)
			}
		}

		if len(remaining) == 0 {
			return nil, ErrAllDuplicates
		}

		s.state = StateSkipped

		return i.submit(ctx, s, remaining, len(selected)-len(remaining))
	case DecisionForce:
		if len(selected) == 0 {
			return nil, ErrNothingSelected
		}

		s.state = StateForced

		return i.submit(ctx, s, selected, 0)
	default:
		return &SubmitResult{Duplicates: s.duplicates}, nil
	}
}

func (i *Importer) submit(ctx context.Context, s *Session, cs []candidate.Candidate, skipped int) (*SubmitResult, error) {
	sub, err := i.backend.SubmitBulk(ctx, cs)
	if err != nil {
		s.state = StateReviewing
		return nil, fmt.Errorf("submit batch: %w", err)
	}

	s.state = StateSubmitted
	s.importTimestamp = sub.ImportTimestamp

	res := &SubmitResult{
		Submitted:       true,
		ImportTimestamp: sub.ImportTimestamp,
		Count:           sub.Count,
		Skipped:         skipped,
	}

	if err := i.handles.Set(handle.KeyLastImport, strconv.FormatInt(sub.ImportTimestamp, 10)); err != nil {
		i.logger.Error("failed to store import handle", "error", err, "import_timestamp", sub.ImportTimestamp)
		res.HandleErr = fmt.Errorf("store import handle: %w", err)
	}

	i.logger.Info("batch submitted", "batch", s.epoch, "import_timestamp", sub.ImportTimestamp, "count", sub.Count, "skipped", skipped)

	return res, nil
}

// LastImport returns the stored handle of the most recent batch. A missing
// or unparsable handle reports false.
func (i *Importer) LastImport() (int64, bool) {
	raw, ok := i.handles.Get(handle.KeyLastImport)
	if !ok {
		return 0, false
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ts <= 0 {
		i.logger.Warn("ignoring corrupt import handle", "value", raw)
		return 0, false
	}

	return ts, true
}

// Rollback removes every row of the batch identified by importTimestamp.
// Zero removed rows is a success. The stored handle is cleared only when it
// names this batch and the backend call succeeded.
func (i *Importer) Rollback(ctx context.Context, importTimestamp int64) (int64, error) {
	removed, err := i.backend.RollbackBulk(ctx, importTimestamp)
	if err != nil {
		return 0, fmt.Errorf("rollback import %d: %w", importTimestamp, err)
	}

	if last, ok := i.LastImport(); ok && last == importTimestamp {
		if err := i.handles.Remove(handle.KeyLastImport); err != nil {
			i.logger.Error("failed to clear import handle", "error", err)
		}
	}

	i.logger.Info("batch rolled back", "import_timestamp", importTimestamp, "removed", removed)

	return removed, nil
}

// RollbackLast rolls back the batch named by the stored handle.
func (i *Importer) RollbackLast(ctx context.Context) (int64, error) {
	ts, ok := i.LastImport()
	if !ok {
		return 0, ErrNoPriorBatch
	}

	return i.Rollback(ctx, ts)
}

// RollbackSession rolls back a submitted session.
func (i *Importer) RollbackSession(ctx context.Context, s *Session) (int64, error) {
	if s.state != StateSubmitted {
		return 0, fmt.Errorf("%w: %s", ErrNotSubmitted, s.state)
	}

	removed, err := i.Rollback(ctx, s.importTimestamp)
	if err != nil {
		return 0, err
	}

	s.state = StateRolledBack

	return removed, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
