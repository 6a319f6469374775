package bulk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hearthledger/hearth/internal/http/auth"
	"github.com/hearthledger/hearth/internal/http/bulk"
	"github.com/hearthledger/hearth/internal/transaction"
)

func newRouter(repo transaction.Repository) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), "user-1")))
		})
	})
	r.Route("/family/transactions/bulk", bulk.NewHandler(transaction.NewService(repo)).Routes)

	return r
}

func TestHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
	itx.EXPECT().LastImportTimestamp(gomock.Any()).Return(int64(0), nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			require.Len(t, txs, 2)
			assert.Equal(t, "user-1", txs[0].User)
			assert.Equal(t, "user-2", txs[1].User)
			assert.Equal(t, "low", txs[0].Priority)
			assert.Equal(t, transaction.TypeExpense, txs[0].Type)
			assert.Equal(t, "5.5", txs[0].Amount.String())

			for _, tx := range txs {
				tx.ID = uuid.New()
			}

			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	body := `{"transactions":[
		{"id":"bulk-1-0","description":"Кофе","amount":5.5,"category":"food","date":"2026-11-20T14:35:00Z"},
		{"id":"bulk-1-1","description":"Salary","amount":3000,"category":"salary","type":"income","user":"user-2","date":"2026-10-01T09:00:00Z"}
	]}`

	rec := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/family/transactions/bulk/", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Success         bool  `json:"success"`
		ImportTimestamp int64 `json:"importTimestamp"`
		Count           int   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Positive(t, resp.ImportTimestamp)
}

func TestHandler_Create_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Empty", body: `{"transactions":[]}`},
		{name: "Zero amount", body: `{"transactions":[{"description":"x","amount":0,"date":"2026-01-01T00:00:00Z"}]}`},
		{name: "Bad type", body: `{"transactions":[{"description":"x","amount":1,"type":"refund","date":"2026-01-01T00:00:00Z"}]}`},
		{name: "No date", body: `{"transactions":[{"description":"x","amount":1}]}`},
		{name: "Malformed", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rec := httptest.NewRecorder()
			newRouter(transaction.NewMockRepository(ctrl)).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/family/transactions/bulk/", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_Rollback(t *testing.T) {
	type testCase struct {
		name        string
		path        string
		setupMock   func(m *transaction.MockRepository)
		wantStatus  int
		wantRemoved int64
	}

	tests := []testCase{
		{
			name: "Removes rows",
			path: "/family/transactions/bulk/1760711800000",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().DeleteImport(gomock.Any(), int64(1760711800000)).Return(int64(3), nil)
			},
			wantStatus:  http.StatusOK,
			wantRemoved: 3,
		},
		{
			name: "Repeat rollback removes nothing",
			path: "/family/transactions/bulk/1760711800000",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().DeleteImport(gomock.Any(), int64(1760711800000)).Return(int64(0), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Invalid timestamp",
			path:       "/family/transactions/bulk/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Store failure",
			path: "/family/transactions/bulk/42",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().DeleteImport(gomock.Any(), int64(42)).Return(int64(0), errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Success bool  `json:"success"`
				Removed int64 `json:"removed"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantRemoved, resp.Removed)
		})
	}
}
