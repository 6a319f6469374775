package batch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hearthledger/hearth/internal/batch"
	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/handle"
	"github.com/hearthledger/hearth/internal/transaction"
)

const epoch = int64(1760711700000)

func day(d, h, m int) time.Time {
	return time.Date(2026, 10, d, h, m, 0, 0, time.UTC)
}

func cand(i int, desc, amount, cat string, date time.Time) candidate.Candidate {
	return candidate.Candidate{
		ID:          candidate.ID(epoch, i),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Category:    cat,
		Type:        transaction.TypeExpense,
		Priority:    candidate.PriorityLow,
		Date:        date,
	}
}

func newSession(t *testing.T, cs ...candidate.Candidate) *batch.Session {
	t.Helper()

	s := batch.NewSession(epoch, "user-1")
	require.NoError(t, s.Add(cs...))

	return s
}

func TestImporter_Submit_NoDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := batch.NewMockBackend(ctrl)
	handles := handle.NewMemoryStore()
	imp := batch.NewImporter(backend, handles, nil)

	s := newSession(t,
		cand(0, "Coffee", "5.50", "food", day(3, 9, 0)),
		cand(1, "Taxi", "12", "transport", day(5, 18, 0)),
	)

	backend.EXPECT().ListExisting(gomock.Any(), day(3, 0, 0), day(6, 0, 0)).Return(nil, nil)
	backend.EXPECT().SubmitBulk(gomock.Any(), gomock.Len(2)).Return(&batch.Submission{ImportTimestamp: 1760711800000, Count: 2}, nil)

	res, err := imp.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Submitted)
	assert.Equal(t, 2, res.Count)
	assert.NoError(t, res.HandleErr)
	assert.Equal(t, batch.StateSubmitted, s.State())
	assert.Equal(t, int64(1760711800000), s.ImportTimestamp())

	v, ok := handles.Get(handle.KeyLastImport)
	require.True(t, ok)
	assert.Equal(t, "1760711800000", v)

	assert.ErrorIs(t, s.Add(cand(2, "Late", "1", "food", day(3, 9, 0))), batch.ErrSessionClosed)
	_, err = imp.Submit(context.Background(), s)
	assert.ErrorIs(t, err, batch.ErrSessionClosed)
}

func TestImporter_Submit_OnlySelected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := batch.NewMockBackend(ctrl)
	imp := batch.NewImporter(backend, handle.NewMemoryStore(), nil)

	s := newSession(t,
		cand(0, "Coffee", "5", "food", day(3, 9, 0)),
		cand(1, "Taxi", "12", "transport", day(3, 18, 0)),
	)
	require.NoError(t, s.Deselect(candidate.ID(epoch, 1)))

	backend.EXPECT().ListExisting(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	backend.EXPECT().SubmitBulk(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cs []candidate.Candidate) (*batch.Submission, error) {
			require.Len(t, cs, 1)
			assert.Equal(t, "Coffee", cs[0].Description)

			return &batch.Submission{ImportTimestamp: 1, Count: 1}, nil
		})

	_, err := imp.Submit(context.Background(), s)
	require.NoError(t, err)
}

func TestImporter_Submit_NothingSelected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	imp := batch.NewImporter(batch.NewMockBackend(ctrl), handle.NewMemoryStore(), nil)

	_, err := imp.Submit(context.Background(), batch.NewSession(epoch, "user-1"))
	assert.ErrorIs(t, err, batch.ErrNothingSelected)
}

func TestImporter_Resolve(t *testing.T) {
	type testCase struct {
		name          string
		decision      batch.Decision
		setupMock     func(m *batch.MockBackend)
		wantErr       error
		wantState     batch.State
		wantSkipped   int
		wantSubmitted bool
	}

	persisted := []candidate.Candidate{
		{ID: "db-1", Description: "Coffee", Amount: decimal.NewFromInt(5), Category: "food", Date: day(3, 7, 0)},
	}

	tests := []testCase{
		{
			name:     "Skip drops new-side candidates",
			decision: batch.DecisionSkip,
			setupMock: func(m *batch.MockBackend) {
				m.EXPECT().SubmitBulk(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, cs []candidate.Candidate) (*batch.Submission, error) {
						return &batch.Submission{ImportTimestamp: 99, Count: len(cs)}, nil
					})
			},
			wantState:     batch.StateSubmitted,
			wantSkipped:   1,
			wantSubmitted: true,
		},
		{
			name:     "Force submits everything",
			decision: batch.DecisionForce,
			setupMock: func(m *batch.MockBackend) {
				m.EXPECT().SubmitBulk(gomock.Any(), gomock.Len(3)).Return(&batch.Submission{ImportTimestamp: 99, Count: 3}, nil)
			},
			wantState:     batch.StateSubmitted,
			wantSubmitted: true,
		},
		{
			name:      "Cancel keeps reviewing",
			decision:  batch.DecisionCancel,
			wantState: batch.StateReviewing,
		},
		{
			name:     "Submit failure keeps reviewing",
			decision: batch.DecisionForce,
			setupMock: func(m *batch.MockBackend) {
				m.EXPECT().SubmitBulk(gomock.Any(), gomock.Any()).Return(nil, errors.New("502 bad gateway"))
			},
			wantErr:   errors.New("502 bad gateway"),
			wantState: batch.StateReviewing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			backend := batch.NewMockBackend(ctrl)
			handles := handle.NewMemoryStore()
			imp := batch.NewImporter(backend, handles, nil)

			s := newSession(t,
				cand(0, "Coffee", "5", "food", day(3, 9, 0)),
				cand(1, "Bread", "2", "food", day(3, 10, 0)),
				cand(2, "Milk", "1", "food", day(3, 11, 0)),
			)

			backend.EXPECT().ListExisting(gomock.Any(), gomock.Any(), gomock.Any()).Return(persisted, nil)

			res, err := imp.Submit(context.Background(), s)
			require.NoError(t, err)
			require.False(t, res.Submitted)
			require.Len(t, res.Duplicates, 1)
			assert.Equal(t, batch.StateReviewing, s.State())

			if tt.setupMock != nil {
				tt.setupMock(backend)
			}

			res, err = imp.Resolve(context.Background(), s, tt.decision)
			assert.Equal(t, tt.wantState, s.State())

			if tt.wantErr != nil {
				assert.ErrorContains(t, err, tt.wantErr.Error())

				_, ok := handles.Get(handle.KeyLastImport)
				assert.False(t, ok)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSubmitted, res.Submitted)
			assert.Equal(t, tt.wantSkipped, res.Skipped)

			if tt.wantSubmitted {
				assert.Equal(t, 3-tt.wantSkipped, res.Count)
			}
		})
	}
}

func TestImporter_Resolve_AllDuplicatesNeverCallsBackend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := batch.NewMockBackend(ctrl)
	imp := batch.NewImporter(backend, handle.NewMemoryStore(), nil)

	s := newSession(t,
		cand(0, "Such", "50000", "food", day(9, 13, 0)),
	)

	backend.EXPECT().ListExisting(gomock.Any(), gomock.Any(), gomock.Any()).Return([]candidate.Candidate{
		{ID: "db-7", Description: "Plov", Amount: decimal.NewFromInt(50000), Category: "food", Date: day(9, 20, 0)},
	}, nil)

	_, err := imp.Submit(context.Background(), s)
	require.NoError(t, err)

	_, err = imp.Resolve(context.Background(), s, batch.DecisionSkip)
	assert.ErrorIs(t, err, batch.ErrAllDuplicates)
	assert.Equal(t, batch.StateReviewing, s.State())
}

func TestImporter_Resolve_NotReviewing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	imp := batch.NewImporter(batch.NewMockBackend(ctrl), handle.NewMemoryStore(), nil)
	s := newSession(t, cand(0, "Coffee", "5", "food", day(3, 9, 0)))

	_, err := imp.Resolve(context.Background(), s, batch.DecisionForce)
	assert.ErrorIs(t, err, batch.ErrNotReviewing)
}

func TestImporter_RollbackLast(t *testing.T) {
	type testCase struct {
		name        string
		handle      string
		setupMock   func(m *batch.MockBackend)
		wantRemoved int64
		wantErr     error
		wantHandle  bool
	}

	tests := []testCase{
		{
			name:   "Removes rows and clears handle",
			handle: "1760711800000",
			setupMock: func(m *batch.MockBackend) {
				m.EXPECT().RollbackBulk(gomock.Any(), int64(1760711800000)).Return(int64(4), nil)
			},
			wantRemoved: 4,
		},
		{
			name:   "Zero removed is success",
			handle: "1760711800000",
			setupMock: func(m *batch.MockBackend) {
				m.EXPECT().RollbackBulk(gomock.Any(), int64(1760711800000)).Return(int64(0), nil)
			},
			wantRemoved: 0,
		},
		{
			name:   "Backend failure keeps handle",
			handle: "1760711800000",
			setupMock: func(m *batch.MockBackend) {
				m.EXPECT().RollbackBulk(gomock.Any(), int64(1760711800000)).Return(int64(0), errors.New("timeout"))
			},
			wantErr:    errors.New("timeout"),
			wantHandle: true,
		},
		{
			name:       "Corrupt handle",
			handle:     "not-a-number",
			wantErr:    batch.ErrNoPriorBatch,
			wantHandle: true,
		},
		{
			name:    "No handle",
			wantErr: batch.ErrNoPriorBatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			backend := batch.NewMockBackend(ctrl)
			handles := handle.NewMemoryStore()

			if tt.handle != "" {
				require.NoError(t, handles.Set(handle.KeyLastImport, tt.handle))
			}

			if tt.setupMock != nil {
				tt.setupMock(backend)
			}

			removed, err := batch.NewImporter(backend, handles, nil).RollbackLast(context.Background())

			_, ok := handles.Get(handle.KeyLastImport)
			assert.Equal(t, tt.wantHandle, ok)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, batch.ErrNoPriorBatch) {
					assert.ErrorIs(t, err, batch.ErrNoPriorBatch)
				} else {
					assert.ErrorContains(t, err, tt.wantErr.Error())
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestImporter_RollbackSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := batch.NewMockBackend(ctrl)
	imp := batch.NewImporter(backend, handle.NewMemoryStore(), nil)
	s := newSession(t, cand(0, "Coffee", "5", "food", day(3, 9, 0)))

	_, err := imp.RollbackSession(context.Background(), s)
	assert.ErrorIs(t, err, batch.ErrNotSubmitted)

	backend.EXPECT().ListExisting(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	backend.EXPECT().SubmitBulk(gomock.Any(), gomock.Any()).Return(&batch.Submission{ImportTimestamp: 7, Count: 1}, nil)
	backend.EXPECT().RollbackBulk(gomock.Any(), int64(7)).Return(int64(1), nil)

	assert.True(t, s.Open())

	_, err = imp.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, s.Open())
	assert.ErrorIs(t, s.Add(cand(1, "Taxi", "12", "transport", day(3, 18, 0))), batch.ErrSessionClosed)

	removed, err := imp.RollbackSession(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, batch.StateRolledBack, s.State())
}

// readOnlyStore refuses every write.
type readOnlyStore struct {
	*handle.MemoryStore
}

func (readOnlyStore) Set(string, string) error {
	return errors.New("read-only file system")
}

func TestImporter_Submit_HandleNotStored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := batch.NewMockBackend(ctrl)
	imp := batch.NewImporter(backend, readOnlyStore{handle.NewMemoryStore()}, nil)
	s := newSession(t, cand(0, "Coffee", "5", "food", day(3, 9, 0)))

	backend.EXPECT().ListExisting(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	backend.EXPECT().SubmitBulk(gomock.Any(), gomock.Any()).Return(&batch.Submission{ImportTimestamp: 9, Count: 1}, nil)
	backend.EXPECT().RollbackBulk(gomock.Any(), int64(9)).Return(int64(1), nil)

	res, err := imp.Submit(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Submitted)
	assert.ErrorContains(t, res.HandleErr, "read-only file system")
	assert.Equal(t, batch.StateSubmitted, s.State())

	_, ok := imp.LastImport()
	assert.False(t, ok)

	removed, err := imp.RollbackSession(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSession_Mutation(t *testing.T) {
	s := newSession(t,
		cand(0, "Coffee", "5", "food", day(3, 9, 0)),
		cand(1, "Taxi", "12", "transport", day(3, 18, 0)),
	)

	assert.Equal(t, 2, s.NextIndex())
	assert.Error(t, s.Add(cand(0, "Dup", "1", "food", day(3, 9, 0))))

	on, err := s.Toggle(candidate.ID(epoch, 0))
	require.NoError(t, err)
	assert.False(t, on)
	assert.Len(t, s.Selected(), 1)

	require.NoError(t, s.Remove(candidate.ID(epoch, 1)))
	assert.Len(t, s.Candidates(), 1)
	assert.Empty(t, s.Selected())

	assert.ErrorIs(t, s.Select("bulk-0-0"), batch.ErrUnknownCandidate)
}
